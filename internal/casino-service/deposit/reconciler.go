package deposit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/ton"
)

// IntentStore define a persistência usada pelo reconciliador.
type IntentStore interface {
	Create(ctx context.Context, in Intent) error
	FindPending(ctx context.Context, accountID int64, token string) (Intent, error)
	MarkExpired(ctx context.Context, token string) error
	Complete(ctx context.Context, token string, creditedCents int64) (claimed bool, newBalance int64, err error)
}

// ChainClient é o colaborador externo que enxerga o ledger TON.
type ChainClient interface {
	FindInbound(ctx context.Context, address, comment string) (*ton.InboundTransfer, error)
}

// Reconciler implementa a máquina de estados de depósito:
// pending -> completed ou pending -> expired, nunca fora de um terminal.
type Reconciler struct {
	Store         IntentStore
	Chain         ChainClient
	Log           *zap.Logger
	WalletAddress string

	NanotonPerCent int64         // taxa fixa nanoton/centavo
	Expiry         time.Duration // validade do intent
	Retries        int           // tentativas de consulta ao ledger por verify
	Delay          time.Duration // espera fixa entre tentativas
	Timeout        time.Duration // teto total da operação de verificação
}

// BeginResult é a resposta do "begin deposit": o token vai no comentário da
// transferência out-of-band para o endereço de destino.
type BeginResult struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Begin cria um intent pendente com token novo e expiração.
func (r *Reconciler) Begin(ctx context.Context, accountID int64) (BeginResult, error) {
	in := Intent{
		Token:     "gift_" + uuid.NewString(),
		AccountID: accountID,
		Currency:  "TON",
		ExpiresAt: time.Now().UTC().Add(r.Expiry),
	}
	if err := r.Store.Create(ctx, in); err != nil {
		return BeginResult{}, err
	}
	return BeginResult{Token: in.Token, Address: r.WalletAddress, ExpiresAt: in.ExpiresAt}, nil
}

// Verify roda uma rodada da reconciliação para um token:
//  1. intent terminal ou inexistente -> not_found
//  2. expirado -> transiciona e reporta expired
//  3. consulta o ledger externo com orçamento fixo de tentativas; falha
//     transitória conta como "não achei desta vez"; esgotou -> pending
//  4. achou -> converte na taxa fixa e credita; o claim da transição é
//     condicional, então só um verificador concorrente credita
func (r *Reconciler) Verify(ctx context.Context, accountID int64, token string) (VerifyResult, error) {
	in, err := r.Store.FindPending(ctx, accountID, token)
	if errors.Is(err, ErrIntentNotFound) {
		return VerifyResult{Status: VerifyNotFound}, nil
	}
	if err != nil {
		return VerifyResult{}, err
	}

	if time.Now().UTC().After(in.ExpiresAt) {
		if err := r.Store.MarkExpired(ctx, token); err != nil {
			return VerifyResult{}, err
		}
		return VerifyResult{Status: VerifyExpired}, nil
	}

	transfer := r.findTransfer(ctx, token)
	if transfer == nil {
		return VerifyResult{Status: VerifyPending}, nil
	}

	credited := transfer.AmountNano / r.NanotonPerCent
	claimed, newBalance, err := r.Store.Complete(ctx, token, credited)
	if err != nil {
		return VerifyResult{}, err
	}
	if !claimed {
		// outro verify completou primeiro; para este chamador o intent é terminal
		return VerifyResult{Status: VerifyNotFound}, nil
	}

	return VerifyResult{Status: VerifySuccess, CreditedCents: credited, NewBalanceCents: newBalance}, nil
}

// findTransfer consulta o ledger externo como UMA operação cancelável com
// timeout total, com tentativas de espaçamento fixo dentro dela.
func (r *Reconciler) findTransfer(ctx context.Context, token string) *ton.InboundTransfer {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	for attempt := 0; attempt < r.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.Delay):
			}
		}

		transfer, err := r.Chain.FindInbound(ctx, r.WalletAddress, token)
		if err != nil {
			// falha transitória: consome a tentativa, não é fatal
			if r.Log != nil {
				r.Log.Warn("ton query failed", zap.Int("attempt", attempt+1), zap.Error(err))
			}
			continue
		}
		if transfer != nil {
			return transfer
		}
	}
	return nil
}
