package withdrawal

import "time"

// Ciclo de vida de uma tarefa de saque:
// pending -> in_flight (drenada pelo worker) -> done (callback de conclusão).
// O item de inventário referenciado só é apagado no done; um worker que morre
// depois do drain não perde o prêmio do jogador.
const (
	StatusPending  = "pending"
	StatusInFlight = "in_flight"
	StatusDone     = "done"
)

// Task é um item de trabalho para o colaborador externo de fulfillment.
type Task struct {
	ID          string     `json:"id"`
	AccountID   int64      `json:"account_id"`
	ItemID      string     `json:"item_id"`
	PrizeName   string     `json:"prize_name"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
