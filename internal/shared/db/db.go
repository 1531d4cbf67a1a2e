package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

func ConnectPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// Schema é o DDL das tabelas do core.
// O saldo carrega CHECK (balance_cents >= 0): o banco é a última linha de
// defesa da invariante de não-negatividade.
// withdrawal_tasks.item_id NÃO tem FK de propósito: a conclusão do saque
// apaga o item na mesma transação que fecha a tarefa, e a tarefa done fica
// como histórico apontando para um item que já não existe.
const Schema = `
	CREATE TABLE IF NOT EXISTS accounts (
		id                 BIGINT PRIMARY KEY,
		username           TEXT,
		first_name         TEXT,
		balance_cents      BIGINT NOT NULL DEFAULT 0 CHECK (balance_cents >= 0),
		version            BIGINT NOT NULL DEFAULT 1,
		last_free_wager_at TIMESTAMPTZ,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS wager_log (
		id          UUID PRIMARY KEY,
		account_id  BIGINT NOT NULL REFERENCES accounts(id),
		tier        TEXT NOT NULL,
		stake_cents BIGINT NOT NULL,
		award_cents BIGINT NOT NULL,
		slot_index  INT NOT NULL,
		prize_name  TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS deposit_intents (
		token           TEXT PRIMARY KEY,
		account_id      BIGINT NOT NULL REFERENCES accounts(id),
		requested_cents BIGINT NOT NULL DEFAULT 0,
		credited_cents  BIGINT NOT NULL DEFAULT 0,
		currency        TEXT NOT NULL,
		status          TEXT NOT NULL DEFAULT 'pending',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		expires_at      TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_deposit_intents_status ON deposit_intents(status);

	CREATE TABLE IF NOT EXISTS inventory_items (
		id           UUID PRIMARY KEY,
		account_id   BIGINT NOT NULL REFERENCES accounts(id),
		prize_name   TEXT NOT NULL,
		value_cents  BIGINT NOT NULL,
		image_url    TEXT NOT NULL DEFAULT '',
		withdrawable BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_inventory_items_account ON inventory_items(account_id);

	CREATE TABLE IF NOT EXISTS price_catalog (
		name        TEXT PRIMARY KEY,
		value_cents BIGINT NOT NULL,
		image_url   TEXT NOT NULL DEFAULT '',
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS withdrawal_tasks (
		id           UUID PRIMARY KEY,
		account_id   BIGINT NOT NULL REFERENCES accounts(id),
		item_id      UUID NOT NULL,
		prize_name   TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'pending',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		claimed_at   TIMESTAMPTZ,
		completed_at TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_withdrawal_tasks_status ON withdrawal_tasks(status);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_withdrawal_tasks_open_item
		ON withdrawal_tasks(item_id) WHERE status <> 'done';
	`

// EnsureSchema cria as tabelas do core se ainda não existirem.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
