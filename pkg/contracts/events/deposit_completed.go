package events

import "time"

// Evento emitido pelo casino-service após creditar um depósito externo.
type DepositCompleted struct {
	AccountID     int64     `json:"account_id"`
	Token         string    `json:"token"`
	CreditedCents int64     `json:"credited_cents"`
	Currency      string    `json:"currency"` // "TON"
	Ts            time.Time `json:"ts"`
}
