package deposit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/radieske/gift-casino-platform-poc/internal/casino-service/ton"
)

// fakeStore implementa IntentStore em memória com a mesma semântica de claim
// condicional do Postgres.
type fakeStore struct {
	mu       sync.Mutex
	intents  map[string]*Intent
	balances map[int64]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{intents: map[string]*Intent{}, balances: map[int64]int64{}}
}

func (f *fakeStore) Create(_ context.Context, in Intent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.intents[in.Token]; ok {
		return errors.New("duplicate token")
	}
	in.Status = StatusPending
	f.intents[in.Token] = &in
	return nil
}

func (f *fakeStore) FindPending(_ context.Context, accountID int64, token string) (Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.intents[token]
	if !ok || in.AccountID != accountID || in.Status != StatusPending {
		return Intent{}, ErrIntentNotFound
	}
	return *in, nil
}

func (f *fakeStore) MarkExpired(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in, ok := f.intents[token]; ok && in.Status == StatusPending {
		in.Status = StatusExpired
	}
	return nil
}

func (f *fakeStore) Complete(_ context.Context, token string, credited int64) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.intents[token]
	if !ok || in.Status != StatusPending {
		return false, 0, nil
	}
	in.Status = StatusCompleted
	in.CreditedCents = credited
	f.balances[in.AccountID] += credited
	return true, f.balances[in.AccountID], nil
}

// fakeChain devolve uma transferência fixa por comentário, ou erro transitório.
type fakeChain struct {
	mu        sync.Mutex
	transfers map[string]*ton.InboundTransfer
	failTimes int
	calls     int
}

func (f *fakeChain) FindInbound(_ context.Context, _, comment string) (*ton.InboundTransfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failTimes > 0 {
		f.failTimes--
		return nil, errors.New("lite server timeout")
	}
	return f.transfers[comment], nil
}

func newReconciler(store IntentStore, chain ChainClient) *Reconciler {
	return &Reconciler{
		Store:          store,
		Chain:          chain,
		WalletAddress:  "EQDepositWallet",
		NanotonPerCent: 10_000_000,
		Expiry:         30 * time.Minute,
		Retries:        3,
		Delay:          time.Millisecond,
		Timeout:        time.Second,
	}
}

func TestVerifyNoMatchingTransferReportsPending(t *testing.T) {
	// Cenário: intent criado, nenhuma transação externa bate com o token
	store := newFakeStore()
	chain := &fakeChain{transfers: map[string]*ton.InboundTransfer{}}
	r := newReconciler(store, chain)

	if err := store.Create(context.Background(), Intent{
		Token: "tok-1", AccountID: 7, Currency: "TON",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := r.Verify(context.Background(), 7, "tok-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Status != VerifyPending {
		t.Fatalf("expected pending, got %s", res.Status)
	}
	if store.balances[7] != 0 {
		t.Fatalf("balance must be untouched, got %d", store.balances[7])
	}
	if in := store.intents["tok-1"]; in.Status != StatusPending {
		t.Fatalf("intent must remain pending, got %s", in.Status)
	}
}

func TestVerifyExpiredThenNotFound(t *testing.T) {
	// Cenário: expiry no passado; primeira verificação expira, a segunda não acha
	store := newFakeStore()
	chain := &fakeChain{transfers: map[string]*ton.InboundTransfer{}}
	r := newReconciler(store, chain)

	_ = store.Create(context.Background(), Intent{
		Token: "tok-2", AccountID: 7, Currency: "TON",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	})

	res, err := r.Verify(context.Background(), 7, "tok-2")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Status != VerifyExpired {
		t.Fatalf("first verify: expected expired, got %s", res.Status)
	}

	res, err = r.Verify(context.Background(), 7, "tok-2")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Status != VerifyNotFound {
		t.Fatalf("second verify: expected not_found, got %s", res.Status)
	}
}

func TestVerifySuccessCreditsOnce(t *testing.T) {
	store := newFakeStore()
	chain := &fakeChain{transfers: map[string]*ton.InboundTransfer{
		"tok-3": {AmountNano: 2_500_000_000, Comment: "tok-3"}, // 2.5 TON
	}}
	r := newReconciler(store, chain)

	_ = store.Create(context.Background(), Intent{
		Token: "tok-3", AccountID: 9, Currency: "TON",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	})

	res, err := r.Verify(context.Background(), 9, "tok-3")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Status != VerifySuccess {
		t.Fatalf("expected success, got %s", res.Status)
	}
	if res.CreditedCents != 250 {
		t.Fatalf("2.5 TON at 10M nanoton/cent = 250 cents, got %d", res.CreditedCents)
	}
	if store.balances[9] != 250 {
		t.Fatalf("balance must be 250, got %d", store.balances[9])
	}

	// verificar de novo o token completado reporta not_found e não credita
	res, err = r.Verify(context.Background(), 9, "tok-3")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Status != VerifyNotFound {
		t.Fatalf("expected not_found on completed token, got %s", res.Status)
	}
	if store.balances[9] != 250 {
		t.Fatalf("account credited more than once: %d", store.balances[9])
	}
}

func TestVerifyTransientErrorsConsumeRetryBudget(t *testing.T) {
	store := newFakeStore()
	chain := &fakeChain{
		transfers: map[string]*ton.InboundTransfer{},
		failTimes: 100, // falha sempre
	}
	r := newReconciler(store, chain)

	_ = store.Create(context.Background(), Intent{
		Token: "tok-4", AccountID: 5, Currency: "TON",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	})

	res, err := r.Verify(context.Background(), 5, "tok-4")
	if err != nil {
		t.Fatalf("transient chain errors must not be fatal: %v", err)
	}
	if res.Status != VerifyPending {
		t.Fatalf("expected pending after exhausted budget, got %s", res.Status)
	}
	if chain.calls != r.Retries {
		t.Fatalf("expected %d attempts, got %d", r.Retries, chain.calls)
	}
}

func TestVerifyRecoversWithinRetryBudget(t *testing.T) {
	store := newFakeStore()
	chain := &fakeChain{
		transfers: map[string]*ton.InboundTransfer{
			"tok-5": {AmountNano: 1_000_000_000, Comment: "tok-5"},
		},
		failTimes: 2, // as duas primeiras tentativas falham
	}
	r := newReconciler(store, chain)

	_ = store.Create(context.Background(), Intent{
		Token: "tok-5", AccountID: 3, Currency: "TON",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	})

	res, err := r.Verify(context.Background(), 3, "tok-5")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Status != VerifySuccess {
		t.Fatalf("expected success on third attempt, got %s", res.Status)
	}
	if res.CreditedCents != 100 {
		t.Fatalf("1 TON = 100 cents, got %d", res.CreditedCents)
	}
}

func TestVerifyWrongAccountIsNotFound(t *testing.T) {
	store := newFakeStore()
	chain := &fakeChain{transfers: map[string]*ton.InboundTransfer{}}
	r := newReconciler(store, chain)

	_ = store.Create(context.Background(), Intent{
		Token: "tok-6", AccountID: 1, Currency: "TON",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	})

	res, err := r.Verify(context.Background(), 2, "tok-6")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Status != VerifyNotFound {
		t.Fatalf("token of another account must be not_found, got %s", res.Status)
	}
}

func TestBeginCreatesPendingIntent(t *testing.T) {
	store := newFakeStore()
	r := newReconciler(store, &fakeChain{})

	res, err := r.Begin(context.Background(), 11)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if res.Token == "" || res.Address != "EQDepositWallet" {
		t.Fatalf("unexpected begin result: %+v", res)
	}
	if res.ExpiresAt.Before(time.Now().UTC().Add(25 * time.Minute)) {
		t.Fatalf("expiry too close: %v", res.ExpiresAt)
	}
	if in := store.intents[res.Token]; in == nil || in.Status != StatusPending {
		t.Fatalf("intent not persisted as pending")
	}
}
