package ledger

import "time"

// Account é o modelo persistido na tabela accounts.
// O saldo só muda dentro das transações deste pacote.
type Account struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username,omitempty"`
	FirstName       string     `json:"first_name,omitempty"`
	BalanceCents    int64      `json:"balance_cents"`
	LastFreeWagerAt *time.Time `json:"last_free_wager_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Settlement é o resultado da liquidação atômica de uma aposta.
type Settlement struct {
	WagerID         string
	ItemID          string
	NewBalanceCents int64
}
