package inventory

import "time"

// Item é um prêmio que a conta segura, pendente de conversão ou saque.
// ValueCents é o valor capturado NO MOMENTO da vitória; mudanças posteriores
// do catálogo de preços não o afetam.
type Item struct {
	ID           string    `json:"id"`
	AccountID    int64     `json:"account_id"`
	PrizeName    string    `json:"prize_name"`
	ValueCents   int64     `json:"value_cents"`
	ImageURL     string    `json:"image_url,omitempty"`
	Withdrawable bool      `json:"withdrawable"`
	CreatedAt    time.Time `json:"created_at"`
}

// PayoutCents calcula o crédito da conversão em aritmética de ponto fixo:
// valor capturado × multiplicador em basis points (12000 = 1.20x).
func PayoutCents(valueCents, bonusBps int64) int64 {
	return valueCents * bonusBps / 10000
}
