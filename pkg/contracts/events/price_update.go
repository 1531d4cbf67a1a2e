package events

import "time"

// Evento publicado no tópico "gift_price_updates"
type PriceUpdate struct {
	Name       string    `json:"name"`        // nome do presente, ex: "Jelly Bunny"
	ValueCents int64     `json:"value_cents"` // valor de mercado em centavos internos
	ImageURL   string    `json:"image_url,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
	Source     string    `json:"source"`  // "price-feed-simulator"
	Version    int       `json:"version"` // incrementado a cada atualização
}
