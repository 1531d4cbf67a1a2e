package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/outcome"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
	ErrCooldown          = errors.New("free wager cooldown not elapsed")
)

// Postgres implementa as operações de conta e a liquidação de apostas.
// Toda mutação de saldo roda sob FOR UPDATE na linha da conta.
type Postgres struct {
	db                *sql.DB
	startBalanceCents int64
}

func NewPostgres(db *sql.DB, startBalanceCents int64) *Postgres {
	return &Postgres{db: db, startBalanceCents: startBalanceCents}
}

// GetOrCreateAccount retorna a conta do jogador, criando-a no primeiro contato
// com o saldo inicial configurado.
func (p *Postgres) GetOrCreateAccount(ctx context.Context, id int64, username, firstName string) (Account, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Account{}, err
	}
	defer tx.Rollback()

	var acc Account
	err = tx.QueryRowContext(ctx, `
		SELECT id, COALESCE(username,''), COALESCE(first_name,''), balance_cents, last_free_wager_at, created_at
		FROM accounts WHERE id=$1`, id).
		Scan(&acc.ID, &acc.Username, &acc.FirstName, &acc.BalanceCents, &acc.LastFreeWagerAt, &acc.CreatedAt)
	if err == sql.ErrNoRows {
		acc = Account{ID: id, Username: username, FirstName: firstName, BalanceCents: p.startBalanceCents}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO accounts (id, username, first_name, balance_cents)
			VALUES ($1,$2,$3,$4)
			RETURNING created_at`,
			id, username, firstName, p.startBalanceCents).Scan(&acc.CreatedAt)
		if err != nil {
			return Account{}, err
		}
	} else if err != nil {
		return Account{}, err
	}

	if err = tx.Commit(); err != nil {
		return Account{}, err
	}
	return acc, nil
}

// Credit incrementa o saldo da conta sob lock pessimista.
func (p *Postgres) Credit(ctx context.Context, accountID, amountCents int64) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	newBalance, err := creditTx(ctx, tx, accountID, amountCents)
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Debit subtrai do saldo; falha com ErrInsufficientFunds sem mutação quando o
// saldo não cobre o valor.
func (p *Postgres) Debit(ctx context.Context, accountID, amountCents int64) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var balance int64
	if err = tx.QueryRowContext(ctx,
		`SELECT balance_cents FROM accounts WHERE id=$1 FOR UPDATE`, accountID).Scan(&balance); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if balance < amountCents {
		return 0, ErrInsufficientFunds
	}

	var newBalance int64
	if err = tx.QueryRowContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents - $1, version = version + 1
		WHERE id=$2 RETURNING balance_cents`, amountCents, accountID).Scan(&newBalance); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// SettleWager aplica os cinco efeitos da aposta em UMA transação:
// verifica saldo, debita a aposta, credita o valor do slot sorteado, grava o
// item de inventário e a linha de auditoria. Tudo comita ou nada comita;
// não existe caminho de estorno separado.
func (p *Postgres) SettleWager(ctx context.Context, accountID int64, tier string, stakeCents int64, out outcome.Outcome) (Settlement, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Settlement{}, err
	}
	defer tx.Rollback()

	var balance int64
	if err = tx.QueryRowContext(ctx,
		`SELECT balance_cents FROM accounts WHERE id=$1 FOR UPDATE`, accountID).Scan(&balance); err != nil {
		if err == sql.ErrNoRows {
			return Settlement{}, ErrNotFound
		}
		return Settlement{}, err
	}
	if balance < stakeCents {
		return Settlement{}, ErrInsufficientFunds
	}

	award := out.Slot.ValueCents

	var newBalance int64
	if err = tx.QueryRowContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents - $1 + $2, version = version + 1
		WHERE id=$3 RETURNING balance_cents`,
		stakeCents, award, accountID).Scan(&newBalance); err != nil {
		return Settlement{}, err
	}

	itemID := uuid.NewString()
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO inventory_items (id, account_id, prize_name, value_cents, image_url, withdrawable)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		itemID, accountID, out.Slot.Prize, award, out.Slot.ImageURL, out.Slot.Withdrawable); err != nil {
		return Settlement{}, err
	}

	wagerID := uuid.NewString()
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wager_log (id, account_id, tier, stake_cents, award_cents, slot_index, prize_name)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		wagerID, accountID, tier, stakeCents, award, out.Index, out.Slot.Prize); err != nil {
		return Settlement{}, err
	}

	if err = tx.Commit(); err != nil {
		return Settlement{}, err
	}
	return Settlement{WagerID: wagerID, ItemID: itemID, NewBalanceCents: newBalance}, nil
}

// ClaimFreeWager credita o bônus periódico se o cooldown já passou.
// A checagem e a escrita do timestamp acontecem na mesma transação, então duas
// chamadas concorrentes não creditam duas vezes.
func (p *Postgres) ClaimFreeWager(ctx context.Context, accountID, bonusCents int64, cooldown time.Duration) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var last sql.NullTime
	if err = tx.QueryRowContext(ctx,
		`SELECT last_free_wager_at FROM accounts WHERE id=$1 FOR UPDATE`, accountID).Scan(&last); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if last.Valid && time.Since(last.Time) < cooldown {
		return 0, ErrCooldown
	}

	var newBalance int64
	if err = tx.QueryRowContext(ctx, `
		UPDATE accounts
		SET balance_cents = balance_cents + $1, last_free_wager_at = now(), version = version + 1
		WHERE id=$2 RETURNING balance_cents`, bonusCents, accountID).Scan(&newBalance); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// creditTx incrementa o saldo dentro de uma transação já aberta.
func creditTx(ctx context.Context, tx *sql.Tx, accountID, amountCents int64) (int64, error) {
	var id int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM accounts WHERE id=$1 FOR UPDATE`, accountID).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, err
	}
	var newBalance int64
	err := tx.QueryRowContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + $1, version = version + 1
		WHERE id=$2 RETURNING balance_cents`, amountCents, accountID).Scan(&newBalance)
	return newBalance, err
}
