package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/auth"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/board"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/catalog"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/deposit"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/dto"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/inventory"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/ledger"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/outcome"
	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/withdrawal"
	"github.com/radieske/gift-casino-platform-poc/pkg/contracts/events"
)

// AccountStore define as operações de conta e liquidação usadas pelos handlers.
type AccountStore interface {
	GetOrCreateAccount(ctx context.Context, id int64, username, firstName string) (ledger.Account, error)
	SettleWager(ctx context.Context, accountID int64, tier string, stakeCents int64, out outcome.Outcome) (ledger.Settlement, error)
	ClaimFreeWager(ctx context.Context, accountID, bonusCents int64, cooldown time.Duration) (int64, error)
	Credit(ctx context.Context, accountID, amountCents int64) (int64, error)
}

// CatalogReader é a visão read-only do catálogo de preços.
type CatalogReader interface {
	Lookup(ctx context.Context, name string) (int64, bool, error)
	List(ctx context.Context) ([]catalog.Entry, error)
}

// BoardCache é o cache compartilhado de tabuleiros gerados.
type BoardCache interface {
	Get(ctx context.Context, tier, seed string) (board.Board, bool, error)
	Set(ctx context.Context, b board.Board) error
}

// InventoryStore define o inventário de prêmios.
type InventoryStore interface {
	ListByAccount(ctx context.Context, accountID int64) ([]inventory.Item, error)
	Convert(ctx context.Context, accountID int64, itemID string, bonusBps int64) (payout, newBalance int64, err error)
}

// Depositor é o reconciliador de depósitos.
type Depositor interface {
	Begin(ctx context.Context, accountID int64) (deposit.BeginResult, error)
	Verify(ctx context.Context, accountID int64, token string) (deposit.VerifyResult, error)
}

// WithdrawalQueue é a fila durável de saques.
type WithdrawalQueue interface {
	Enqueue(ctx context.Context, accountID int64, itemID string) (withdrawal.Task, error)
	Drain(ctx context.Context) ([]withdrawal.Task, error)
	Complete(ctx context.Context, taskID string) error
}

// Publisher emite os eventos de liquidação (best-effort, pós-commit).
type Publisher interface {
	PublishWagerSettled(ctx context.Context, e events.WagerSettled) error
	PublishDepositCompleted(ctx context.Context, e events.DepositCompleted) error
}

// IdentityVerifier é o colaborador de autenticação (excluído do core).
type IdentityVerifier interface {
	Verify(data string) (auth.Identity, error)
}

// Config agrupa os parâmetros do motor usados pelos handlers.
type Config struct {
	Weights             outcome.Weights
	EpsilonCents        int64
	BonusBps            int64
	FreeWagerBonusCents int64
	FreeWagerCooldown   time.Duration
	ServiceAPIKey       string
}

// Server expõe a API pública do casino e as rotas service-to-service.
type Server struct {
	log      *zap.Logger
	cfg      Config
	verifier IdentityVerifier

	accounts  AccountStore
	catalog   CatalogReader
	boards    BoardCache
	inventory InventoryStore
	deposits  Depositor
	queue     WithdrawalQueue
	publ      Publisher

	// callbacks de métricas (podem ser nil)
	OnWagerSettled     func()
	OnDepositCompleted func()
	OnWithdrawEnqueued func()
}

func NewServer(
	log *zap.Logger,
	cfg Config,
	verifier IdentityVerifier,
	accounts AccountStore,
	cat CatalogReader,
	boards BoardCache,
	inv InventoryStore,
	deposits Depositor,
	queue WithdrawalQueue,
	publ Publisher,
) *Server {
	return &Server{
		log:       log,
		cfg:       cfg,
		verifier:  verifier,
		accounts:  accounts,
		catalog:   cat,
		boards:    boards,
		inventory: inv,
		deposits:  deposits,
		queue:     queue,
		publ:      publ,
	}
}

// Router monta as rotas públicas (header de identidade) e internas (chave de serviço).
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// rotas do jogador
	r.Post("/api/account", s.withIdentity(s.getAccount))
	r.Get("/api/board", s.withIdentity(s.listBoard))
	r.Post("/api/wager", s.withIdentity(s.placeWager))
	r.Post("/api/free-wager", s.withIdentity(s.claimFreeWager))
	r.Post("/api/deposit", s.withIdentity(s.beginDeposit))
	r.Post("/api/deposit/verify", s.withIdentity(s.verifyDeposit))
	r.Get("/api/inventory", s.withIdentity(s.listInventory))
	r.Post("/api/inventory/convert", s.withIdentity(s.convertItem))
	r.Post("/api/withdraw", s.withIdentity(s.enqueueWithdrawal))
	r.Get("/v1/catalog", s.withIdentity(s.listCatalog))

	// rotas service-to-service
	r.Post("/internal/withdrawals/drain", s.withServiceKey(s.drainWithdrawals))
	r.Post("/internal/withdrawals/complete", s.withServiceKey(s.completeWithdrawal))
	r.Post("/internal/credits", s.withServiceKey(s.creditPrize))

	return r
}

// withIdentity valida o header de integridade e injeta a identidade no handler.
// Falha de autenticação é sempre 401 uniforme, sem efeito colateral.
func (s *Server) withIdentity(next func(http.ResponseWriter, *http.Request, auth.Identity)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.verifier.Verify(r.Header.Get("X-Auth-Data"))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication failed"})
			return
		}
		next(w, r, id)
	}
}

// withServiceKey protege as rotas internas com a chave compartilhada.
func (s *Server) withServiceKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Service-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.ServiceAPIKey)) != 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	acc, err := s.accounts.GetOrCreateAccount(r.Context(), id.ID, id.Username, id.FirstName)
	if err != nil {
		s.internalError(w, "get account", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AccountResponse{
		ID:              acc.ID,
		Username:        acc.Username,
		FirstName:       acc.FirstName,
		BalanceCents:    acc.BalanceCents,
		LastFreeWagerAt: acc.LastFreeWagerAt,
	})
}

func (s *Server) listBoard(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	tierName := r.URL.Query().Get("tier")
	seed := r.URL.Query().Get("seed")

	tier, ok := board.Tiers[tierName]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown tier"})
		return
	}
	if seed == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seed required"})
		return
	}

	b, err := s.boardFor(r.Context(), tier, seed)
	if err != nil {
		if errors.Is(err, catalog.ErrEmpty) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "price catalog unavailable"})
			return
		}
		s.internalError(w, "list board", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BoardResponse{
		Tier:       tier.Name,
		Seed:       seed,
		StakeCents: tier.StakeCents,
		Slots:      b.Slots,
	})
}

func (s *Server) placeWager(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req dto.WagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	tier, ok := board.Tiers[req.Tier]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown tier"})
		return
	}
	if req.Seed == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seed required"})
		return
	}

	// a seleção roda SEMPRE contra o tabuleiro cacheado: o que o jogador viu é
	// o que liquida
	b, err := s.boardFor(r.Context(), tier, req.Seed)
	if err != nil {
		if errors.Is(err, catalog.ErrEmpty) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "price catalog unavailable"})
			return
		}
		s.internalError(w, "wager board", err)
		return
	}

	out := outcome.Select(b, tier.StakeCents, s.cfg.Weights, s.cfg.EpsilonCents, outcome.NewRand())

	st, err := s.accounts.SettleWager(r.Context(), id.ID, tier.Name, tier.StakeCents, out)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "insufficient balance"})
			return
		}
		if errors.Is(err, ledger.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
			return
		}
		s.internalError(w, "settle wager", err)
		return
	}

	if s.publ != nil {
		_ = s.publ.PublishWagerSettled(r.Context(), events.WagerSettled{
			AccountID:  id.ID,
			Tier:       tier.Name,
			StakeCents: tier.StakeCents,
			AwardCents: out.Slot.ValueCents,
			SlotIndex:  out.Index,
			PrizeName:  out.Slot.Prize,
			ItemID:     st.ItemID,
		})
	}
	if s.OnWagerSettled != nil {
		s.OnWagerSettled()
	}

	writeJSON(w, http.StatusOK, dto.WagerResponse{
		PrizeName:       out.Slot.Prize,
		AwardCents:      out.Slot.ValueCents,
		SlotIndex:       out.Index,
		ItemID:          st.ItemID,
		NewBalanceCents: st.NewBalanceCents,
	})
}

func (s *Server) claimFreeWager(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	newBalance, err := s.accounts.ClaimFreeWager(r.Context(), id.ID, s.cfg.FreeWagerBonusCents, s.cfg.FreeWagerCooldown)
	if err != nil {
		if errors.Is(err, ledger.ErrCooldown) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "free wager cooldown not elapsed"})
			return
		}
		if errors.Is(err, ledger.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
			return
		}
		s.internalError(w, "free wager", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FreeWagerResponse{
		BonusCents:      s.cfg.FreeWagerBonusCents,
		NewBalanceCents: newBalance,
	})
}

func (s *Server) beginDeposit(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	// garante a conta antes do intent (primeiro contato pode ser um depósito)
	if _, err := s.accounts.GetOrCreateAccount(r.Context(), id.ID, id.Username, id.FirstName); err != nil {
		s.internalError(w, "ensure account", err)
		return
	}

	res, err := s.deposits.Begin(r.Context(), id.ID)
	if err != nil {
		s.internalError(w, "begin deposit", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.BeginDepositResponse{
		Token:     res.Token,
		Address:   res.Address,
		ExpiresAt: res.ExpiresAt,
	})
}

func (s *Server) verifyDeposit(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req dto.VerifyDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token required"})
		return
	}

	res, err := s.deposits.Verify(r.Context(), id.ID, req.Token)
	if err != nil {
		s.internalError(w, "verify deposit", err)
		return
	}

	if res.Status == deposit.VerifySuccess {
		if s.publ != nil {
			_ = s.publ.PublishDepositCompleted(r.Context(), events.DepositCompleted{
				AccountID:     id.ID,
				Token:         req.Token,
				CreditedCents: res.CreditedCents,
				Currency:      "TON",
			})
		}
		if s.OnDepositCompleted != nil {
			s.OnDepositCompleted()
		}
	}

	writeJSON(w, http.StatusOK, dto.VerifyDepositResponse{
		Status:          res.Status,
		CreditedCents:   res.CreditedCents,
		NewBalanceCents: res.NewBalanceCents,
	})
}

func (s *Server) listInventory(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	items, err := s.inventory.ListByAccount(r.Context(), id.ID)
	if err != nil {
		s.internalError(w, "list inventory", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.InventoryResponse{Items: items})
}

func (s *Server) convertItem(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req dto.ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_id required"})
		return
	}

	payout, newBalance, err := s.inventory.Convert(r.Context(), id.ID, req.ItemID, s.cfg.BonusBps)
	if err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		if errors.Is(err, inventory.ErrPendingWithdrawal) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "item has a pending withdrawal"})
			return
		}
		s.internalError(w, "convert item", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ConvertResponse{
		PayoutCents:     payout,
		NewBalanceCents: newBalance,
	})
}

func (s *Server) enqueueWithdrawal(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_id required"})
		return
	}

	task, err := s.queue.Enqueue(r.Context(), id.ID, req.ItemID)
	if err != nil {
		if errors.Is(err, withdrawal.ErrItemNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		if errors.Is(err, withdrawal.ErrNotWithdrawable) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item is not withdrawable"})
			return
		}
		if errors.Is(err, withdrawal.ErrAlreadyQueued) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "item already queued for withdrawal"})
			return
		}
		s.internalError(w, "enqueue withdrawal", err)
		return
	}
	if s.OnWithdrawEnqueued != nil {
		s.OnWithdrawEnqueued()
	}
	writeJSON(w, http.StatusOK, dto.WithdrawResponse{TaskID: task.ID, Status: task.Status})
}

func (s *Server) listCatalog(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	entries, err := s.catalog.List(r.Context())
	if err != nil {
		s.internalError(w, "list catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) drainWithdrawals(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.queue.Drain(r.Context())
	if err != nil {
		s.internalError(w, "drain withdrawals", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DrainResponse{Tasks: tasks})
}

func (s *Server) completeWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req dto.CompleteWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TaskID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "task_id required"})
		return
	}
	if err := s.queue.Complete(r.Context(), req.TaskID); err != nil {
		if errors.Is(err, withdrawal.ErrTaskNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
			return
		}
		s.internalError(w, "complete withdrawal", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": withdrawal.StatusDone})
}

func (s *Server) creditPrize(w http.ResponseWriter, r *http.Request) {
	var req dto.PrizeCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountID == 0 || req.PrizeName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	value, ok, err := s.catalog.Lookup(r.Context(), req.PrizeName)
	if err != nil {
		s.internalError(w, "prize lookup", err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown prize"})
		return
	}

	newBalance, err := s.accounts.Credit(r.Context(), req.AccountID, value)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
			return
		}
		s.internalError(w, "prize credit", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.PrizeCreditResponse{
		CreditedCents:   value,
		NewBalanceCents: newBalance,
	})
}

// boardFor devolve o tabuleiro cacheado do par (tier, seed), gerando e
// cacheando na primeira passagem. Dentro da janela de TTL todas as réplicas
// enxergam a mesma cópia.
func (s *Server) boardFor(ctx context.Context, tier board.Tier, seed string) (board.Board, error) {
	if b, ok, err := s.boards.Get(ctx, tier.Name, seed); err == nil && ok {
		return b, nil
	} else if err != nil {
		s.log.Warn("board cache get failed", zap.Error(err))
	}

	entries, err := s.catalog.List(ctx)
	if err != nil {
		return board.Board{}, err
	}
	b, err := board.Generate(seed, tier, entries)
	if err != nil {
		return board.Board{}, err
	}
	if err := s.boards.Set(ctx, b); err != nil {
		s.log.Warn("board cache set failed", zap.Error(err))
	}
	return b, nil
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
