package repository

import (
	"context"
	"database/sql"

	"github.com/radieske/gift-casino-platform-poc/pkg/contracts/events"
)

// PostgresRepo persiste o catálogo de preços mantido pelo refresh externo.
// DB: conexão com o banco de dados
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// UpsertPrice insere ou atualiza o preço corrente de um presente na tabela
// price_catalog. ON CONFLICT garante atomicidade e evita duplicidade por nome.
func (r *PostgresRepo) UpsertPrice(ctx context.Context, e events.PriceUpdate) error {
	const q = `
		INSERT INTO price_catalog (name, value_cents, image_url, updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (name) DO UPDATE SET
		  value_cents = EXCLUDED.value_cents,
		  image_url   = EXCLUDED.image_url,
		  updated_at  = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, q, e.Name, e.ValueCents, e.ImageURL, e.UpdatedAt)
	return err
}
