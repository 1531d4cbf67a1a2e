package deposit

import (
	"context"
	"database/sql"
	"errors"
)

var ErrIntentNotFound = errors.New("deposit intent not found")

// Postgres persiste os intents de depósito.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Create insere um intent pendente; o token é UNIQUE na tabela.
func (p *Postgres) Create(ctx context.Context, in Intent) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO deposit_intents (token, account_id, requested_cents, currency, status, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		in.Token, in.AccountID, in.RequestedCents, in.Currency, StatusPending, in.ExpiresAt)
	return err
}

// FindPending busca o intent pelo token e dono. Intents terminais (ou que nunca
// existiram) retornam ErrIntentNotFound: pro chamador é a mesma coisa.
func (p *Postgres) FindPending(ctx context.Context, accountID int64, token string) (Intent, error) {
	var in Intent
	err := p.db.QueryRowContext(ctx, `
		SELECT token, account_id, requested_cents, credited_cents, currency, status, created_at, expires_at
		FROM deposit_intents
		WHERE token=$1 AND account_id=$2 AND status=$3`,
		token, accountID, StatusPending).
		Scan(&in.Token, &in.AccountID, &in.RequestedCents, &in.CreditedCents,
			&in.Currency, &in.Status, &in.CreatedAt, &in.ExpiresAt)
	if err == sql.ErrNoRows {
		return Intent{}, ErrIntentNotFound
	}
	if err != nil {
		return Intent{}, err
	}
	return in, nil
}

// MarkExpired transiciona pending -> expired. Condicional no status: um intent
// já terminal não muda.
func (p *Postgres) MarkExpired(ctx context.Context, token string) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE deposit_intents SET status=$1 WHERE token=$2 AND status=$3`,
		StatusExpired, token, StatusPending)
	return err
}

// Complete reivindica a transição pending -> completed e credita a conta na
// MESMA transação. O UPDATE condicional no status é o claim atômico: de duas
// verificações concorrentes no mesmo token, só uma vê RowsAffected=1 e credita.
func (p *Postgres) Complete(ctx context.Context, token string, creditedCents int64) (claimed bool, newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	var accountID int64
	err = tx.QueryRowContext(ctx, `
		UPDATE deposit_intents SET status=$1, credited_cents=$2
		WHERE token=$3 AND status=$4
		RETURNING account_id`,
		StatusCompleted, creditedCents, token, StatusPending).Scan(&accountID)
	if err == sql.ErrNoRows {
		return false, 0, nil // outro verificador venceu o claim
	}
	if err != nil {
		return false, 0, err
	}

	if err = tx.QueryRowContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + $1, version = version + 1
		WHERE id=$2 RETURNING balance_cents`, creditedCents, accountID).Scan(&newBalance); err != nil {
		return false, 0, err
	}

	if err = tx.Commit(); err != nil {
		return false, 0, err
	}
	return true, newBalance, nil
}
