package catalog

import (
	"context"
	"database/sql"
	"errors"
)

var ErrEmpty = errors.New("price catalog is empty")

// Postgres implementa o catálogo de preços sobre a tabela price_catalog.
// A escrita vem do catalog-processor-worker; o core só lê.
type Postgres struct{ DB *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{DB: db} }

// Lookup retorna o valor corrente de um presente pelo nome.
func (p *Postgres) Lookup(ctx context.Context, name string) (int64, bool, error) {
	var cents int64
	err := p.DB.QueryRowContext(ctx,
		`SELECT value_cents FROM price_catalog WHERE name=$1`, name).Scan(&cents)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return cents, true, nil
}

// List retorna o catálogo inteiro, ordenado por nome.
func (p *Postgres) List(ctx context.Context) ([]Entry, error) {
	rows, err := p.DB.QueryContext(ctx,
		`SELECT name, value_cents, image_url, updated_at FROM price_catalog ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.ValueCents, &e.ImageURL, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
