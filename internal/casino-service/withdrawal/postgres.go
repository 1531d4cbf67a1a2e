package withdrawal

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrItemNotFound    = errors.New("inventory item not found")
	ErrNotWithdrawable = errors.New("item is not withdrawable")
	ErrTaskNotFound    = errors.New("withdrawal task not found")
	ErrAlreadyQueued   = errors.New("item already has an open withdrawal task")
)

// Postgres implementa a fila durável de saques sobre withdrawal_tasks.
// A fila vive no banco compartilhado: enqueue e drain funcionam entre réplicas.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Enqueue valida o item (existe, pertence ao chamador, é sacável) e registra a
// tarefa. O item NÃO é apagado nem marcado: ele segue no inventário até o
// callback de conclusão.
func (p *Postgres) Enqueue(ctx context.Context, accountID int64, itemID string) (Task, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Task{}, err
	}
	defer tx.Rollback()

	var prizeName string
	var withdrawable bool
	err = tx.QueryRowContext(ctx, `
		SELECT prize_name, withdrawable FROM inventory_items
		WHERE id=$1 AND account_id=$2`, itemID, accountID).Scan(&prizeName, &withdrawable)
	if err == sql.ErrNoRows {
		return Task{}, ErrItemNotFound
	}
	if err != nil {
		return Task{}, err
	}
	if !withdrawable {
		return Task{}, ErrNotWithdrawable
	}

	// um item só pode ter uma tarefa aberta: duas tarefas pendentes para o
	// mesmo item fariam o worker transferir o presente duas vezes
	var open int
	if err = tx.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM withdrawal_tasks
		WHERE item_id=$1 AND status <> $2`, itemID, StatusDone).Scan(&open); err != nil {
		return Task{}, err
	}
	if open > 0 {
		return Task{}, ErrAlreadyQueued
	}

	t := Task{
		ID:        uuid.NewString(),
		AccountID: accountID,
		ItemID:    itemID,
		PrizeName: prizeName,
		Status:    StatusPending,
	}
	if err = tx.QueryRowContext(ctx, `
		INSERT INTO withdrawal_tasks (id, account_id, item_id, prize_name, status)
		VALUES ($1,$2,$3,$4,$5) RETURNING created_at`,
		t.ID, t.AccountID, t.ItemID, t.PrizeName, t.Status).Scan(&t.CreatedAt); err != nil {
		// corrida entre dois enqueues: o índice único parcial pega o segundo
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return Task{}, ErrAlreadyQueued
		}
		return Task{}, err
	}

	if err = tx.Commit(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Drain reivindica atomicamente todas as tarefas pendentes, marcando-as
// in_flight. Cada tarefa é entregue a no máximo um puller; a conclusão chega
// depois pelo callback Complete.
func (p *Postgres) Drain(ctx context.Context) ([]Task, error) {
	rows, err := p.db.QueryContext(ctx, `
		UPDATE withdrawal_tasks
		SET status=$1, claimed_at=now()
		WHERE status=$2
		RETURNING id, account_id, item_id, prize_name, status, created_at, claimed_at`,
		StatusInFlight, StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.AccountID, &t.ItemID, &t.PrizeName,
			&t.Status, &t.CreatedAt, &t.ClaimedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Complete fecha o ciclo: marca a tarefa done e apaga o item de inventário
// referenciado, na mesma transação.
func (p *Postgres) Complete(ctx context.Context, taskID string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var itemID string
	err = tx.QueryRowContext(ctx, `
		UPDATE withdrawal_tasks SET status=$1, completed_at=now()
		WHERE id=$2 AND status=$3
		RETURNING item_id`, StatusDone, taskID, StatusInFlight).Scan(&itemID)
	if err == sql.ErrNoRows {
		return ErrTaskNotFound
	}
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM inventory_items WHERE id=$1`, itemID); err != nil {
		return err
	}

	return tx.Commit()
}
