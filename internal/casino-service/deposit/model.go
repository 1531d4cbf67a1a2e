package deposit

import "time"

// Status do intent de depósito. pending é o único estado não-terminal;
// completed e expired são terminais e nunca transicionam de novo.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusExpired   = "expired"
)

// Intent correlaciona um pedido de depósito com uma transferência externa.
// O token vai no campo de comentário da transferência TON.
type Intent struct {
	Token          string    `json:"token"`
	AccountID      int64     `json:"account_id"`
	RequestedCents int64     `json:"requested_cents"`
	CreditedCents  int64     `json:"credited_cents"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Resultado de uma chamada de verificação, na forma reportada ao jogador.
const (
	VerifyNotFound = "not_found"
	VerifyPending  = "pending"
	VerifyExpired  = "expired"
	VerifySuccess  = "success"
)

// VerifyResult devolve o desfecho da verificação mais o crédito aplicado.
type VerifyResult struct {
	Status          string `json:"status"`
	CreditedCents   int64  `json:"credited_cents,omitempty"`
	NewBalanceCents int64  `json:"new_balance_cents,omitempty"`
}
