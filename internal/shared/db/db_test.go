package db

import (
	"regexp"
	"strings"
	"testing"
)

// extrai o bloco CREATE TABLE de uma tabela do DDL
func tableDDL(t *testing.T, name string) string {
	t.Helper()
	re := regexp.MustCompile(`CREATE TABLE IF NOT EXISTS ` + name + ` \(([^;]+)\);`)
	m := re.FindStringSubmatch(Schema)
	if m == nil {
		t.Fatalf("tabela %q ausente do schema", name)
	}
	return m[1]
}

// A conclusão de um saque marca a tarefa done e apaga o item na mesma
// transação; uma FK em item_id faria esse delete violar a referência da
// própria tarefa recém-fechada e reverteria a transação inteira.
func TestCompletedTaskOutlivesItsItem(t *testing.T) {
	ddl := tableDDL(t, "withdrawal_tasks")
	for _, line := range strings.Split(ddl, "\n") {
		if strings.Contains(line, "item_id") && strings.Contains(line, "REFERENCES") {
			t.Fatalf("item_id não pode referenciar inventory_items: %s", strings.TrimSpace(line))
		}
	}
	if !strings.Contains(ddl, "item_id") {
		t.Fatal("withdrawal_tasks sem coluna item_id")
	}
}

// Um item só pode ter uma tarefa de saque aberta por vez; o índice parcial é
// o backstop do banco contra enqueue duplicado concorrente.
func TestOneOpenTaskPerItem(t *testing.T) {
	if !strings.Contains(Schema, "ON withdrawal_tasks(item_id) WHERE status <> 'done'") {
		t.Fatal("índice único parcial de tarefas abertas ausente")
	}
	if !strings.Contains(Schema, "CREATE UNIQUE INDEX IF NOT EXISTS idx_withdrawal_tasks_open_item") {
		t.Fatal("índice idx_withdrawal_tasks_open_item ausente")
	}
}

func TestBalanceNeverNegative(t *testing.T) {
	ddl := tableDDL(t, "accounts")
	if !strings.Contains(ddl, "CHECK (balance_cents >= 0)") {
		t.Fatal("CHECK de saldo não-negativo ausente")
	}
}
