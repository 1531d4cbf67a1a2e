package catalog

import "time"

// Entry é uma linha do catálogo de preços de presentes.
// O valor é o preço de mercado corrente em centavos internos; o valor capturado
// por um item de inventário no momento da vitória NÃO muda quando o catálogo muda.
type Entry struct {
	Name       string    `json:"name"`
	ValueCents int64     `json:"value_cents"`
	ImageURL   string    `json:"image_url,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}
