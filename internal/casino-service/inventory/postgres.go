package inventory

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrNotFound          = errors.New("inventory item not found")
	ErrNotWithdrawable   = errors.New("item is not withdrawable")
	ErrPendingWithdrawal = errors.New("item has an open withdrawal task")
)

// Postgres implementa o inventário de prêmios sobre a tabela inventory_items.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// ListByAccount retorna os itens da conta, mais novos primeiro.
func (p *Postgres) ListByAccount(ctx context.Context, accountID int64) ([]Item, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, account_id, prize_name, value_cents, image_url, withdrawable, created_at
		FROM inventory_items WHERE account_id=$1 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.AccountID, &it.PrizeName, &it.ValueCents,
			&it.ImageURL, &it.Withdrawable, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Convert troca um item por saldo em UMA transação: verifica a posse sob lock,
// apaga o item e credita capturado × bônus. O delete e o crédito nunca se
// separam, então um crash não consegue creditar duas vezes nem perder o item.
func (p *Postgres) Convert(ctx context.Context, accountID int64, itemID string, bonusBps int64) (payout int64, newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	var valueCents int64
	err = tx.QueryRowContext(ctx, `
		SELECT value_cents FROM inventory_items
		WHERE id=$1 AND account_id=$2 FOR UPDATE`, itemID, accountID).Scan(&valueCents)
	if err == sql.ErrNoRows {
		return 0, 0, ErrNotFound
	}
	if err != nil {
		return 0, 0, err
	}

	// item com saque aberto não converte: o worker externo ainda pode
	// entregar o presente
	var open int
	if err = tx.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM withdrawal_tasks
		WHERE item_id=$1 AND status <> 'done'`, itemID).Scan(&open); err != nil {
		return 0, 0, err
	}
	if open > 0 {
		return 0, 0, ErrPendingWithdrawal
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM inventory_items WHERE id=$1`, itemID); err != nil {
		return 0, 0, err
	}

	payout = PayoutCents(valueCents, bonusBps)
	if err = tx.QueryRowContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + $1, version = version + 1
		WHERE id=$2 RETURNING balance_cents`, payout, accountID).Scan(&newBalance); err != nil {
		return 0, 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, err
	}
	return payout, newBalance, nil
}
