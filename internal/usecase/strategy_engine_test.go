package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptodesk/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type stubPrices struct {
	prices     map[uuid.UUID]decimal.Decimal
	variations map[uuid.UUID]decimal.Decimal
}

func (s *stubPrices) CurrentPrice(assetID uuid.UUID) (decimal.Decimal, error) {
	price, ok := s.prices[assetID]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	return price, nil
}

func (s *stubPrices) Variation(assetID uuid.UUID, hours int) decimal.Decimal {
	return s.variations[assetID]
}

type stubStrategyRepo struct {
	rules        []*domain.StrategyRule
	lastExecuted map[uuid.UUID]time.Time
}

func (r *stubStrategyRepo) Save(ctx context.Context, rule *domain.StrategyRule) error { return nil }
func (r *stubStrategyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StrategyRule, error) {
	return nil, domain.ErrNotFound
}
func (r *stubStrategyRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.StrategyRule, error) {
	return r.rules, nil
}
func (r *stubStrategyRepo) GetActive(ctx context.Context) ([]*domain.StrategyRule, error) {
	return r.rules, nil
}
func (r *stubStrategyRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return nil
}
func (r *stubStrategyRepo) UpdateLastExecuted(ctx context.Context, id uuid.UUID, at time.Time) error {
	if r.lastExecuted == nil {
		r.lastExecuted = make(map[uuid.UUID]time.Time)
	}
	r.lastExecuted[id] = at
	return nil
}

type stubWalletRepo struct {
	wallets map[uuid.UUID]*domain.Wallet
	saved   map[uuid.UUID]int
}

func (r *stubWalletRepo) Create(ctx context.Context, w *domain.Wallet) error { return nil }
func (r *stubWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	w, ok := r.wallets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return w, nil
}
func (r *stubWalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Wallet, error) {
	return nil, nil
}
func (r *stubWalletRepo) GetAll(ctx context.Context) ([]*domain.Wallet, error) { return nil, nil }
func (r *stubWalletRepo) Save(ctx context.Context, w *domain.Wallet) error {
	if r.saved == nil {
		r.saved = make(map[uuid.UUID]int)
	}
	r.saved[w.ID]++
	return nil
}

type stubAssetRepo struct {
	assets map[uuid.UUID]*domain.Asset
}

func (r *stubAssetRepo) Create(ctx context.Context, a *domain.Asset) error { return nil }
func (r *stubAssetRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	a, ok := r.assets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}
func (r *stubAssetRepo) GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	return nil, domain.ErrNotFound
}
func (r *stubAssetRepo) GetAll(ctx context.Context) ([]*domain.Asset, error) { return nil, nil }
func (r *stubAssetRepo) UpdatePrice(ctx context.Context, a *domain.Asset) error { return nil }

type stubTxRepo struct {
	saved []*domain.Transaction
}

func (r *stubTxRepo) Save(ctx context.Context, tx *domain.Transaction) error {
	r.saved = append(r.saved, tx)
	return nil
}
func (r *stubTxRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return nil, domain.ErrNotFound
}
func (r *stubTxRepo) GetByWalletID(ctx context.Context, walletID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	return nil, nil
}
func (r *stubTxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return nil
}

type stubAlertRepo struct {
	saved []*domain.Alert
}

func (r *stubAlertRepo) Save(ctx context.Context, a *domain.Alert) error {
	r.saved = append(r.saved, a)
	return nil
}
func (r *stubAlertRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Alert, error) {
	return nil, nil
}
func (r *stubAlertRepo) GetRecent(ctx context.Context, limit int) ([]*domain.Alert, error) {
	return nil, nil
}

type stubNotifier struct {
	sent []*domain.Alert
}

func (n *stubNotifier) Send(a *domain.Alert) error {
	n.sent = append(n.sent, a)
	return nil
}

func TestRunPassExecutesTriggeredRule(t *testing.T) {
	userID := uuid.New()
	wallet := domain.NewWallet(userID, domain.HotWallet)
	asset := domain.NewAsset("BTC", "Bitcoin", dec("100"))
	_, err := wallet.Deposit(dec("1000"))
	require.NoError(t, err)

	triggered := domain.NewStrategyRule(userID, asset.ID, wallet.ID, domain.CondPriceBelow, domain.ActionBuy, dec("150"), dec("2"))
	dormant := domain.NewStrategyRule(userID, asset.ID, wallet.ID, domain.CondPriceAbove, domain.ActionBuy, dec("500"), dec("1"))

	strategyRepo := &stubStrategyRepo{rules: []*domain.StrategyRule{triggered, dormant}}
	walletRepo := &stubWalletRepo{wallets: map[uuid.UUID]*domain.Wallet{wallet.ID: wallet}}
	assetRepo := &stubAssetRepo{assets: map[uuid.UUID]*domain.Asset{asset.ID: asset}}
	txRepo := &stubTxRepo{}
	alertRepo := &stubAlertRepo{}
	notifier := &stubNotifier{}
	market := &stubPrices{prices: map[uuid.UUID]decimal.Decimal{asset.ID: dec("120")}}

	engine := NewStrategyEngine(strategyRepo, walletRepo, assetRepo, txRepo, alertRepo, market, notifier)
	require.NoError(t, engine.RunPass(context.Background()))

	// The triggered rule traded at the live price.
	require.Len(t, txRepo.saved, 1)
	assert.Equal(t, domain.TxBuy, txRepo.saved[0].Kind)
	assert.True(t, txRepo.saved[0].UnitPrice.Equal(dec("120")))
	assert.True(t, wallet.Balance().Equal(dec("760")))

	// Last-execution time persisted for the triggered rule only.
	_, ok := strategyRepo.lastExecuted[triggered.ID]
	assert.True(t, ok)
	_, ok = strategyRepo.lastExecuted[dormant.ID]
	assert.False(t, ok)

	// Alert raised and dispatched.
	require.Len(t, alertRepo.saved, 1)
	assert.Equal(t, domain.AlertStrategy, alertRepo.saved[0].Kind)
	assert.Len(t, notifier.sent, 1)

	// Mutated wallet saved exactly once.
	assert.Equal(t, 1, walletRepo.saved[wallet.ID])
}

func TestRunPassSharesWalletStateWithinPass(t *testing.T) {
	userID := uuid.New()
	wallet := domain.NewWallet(userID, domain.HotWallet)
	asset := domain.NewAsset("ETH", "Ethereum", dec("100"))
	_, err := wallet.Deposit(dec("250"))
	require.NoError(t, err)

	// Both rules trigger and each buys 1 at 100; the second must observe the
	// balance left by the first, and the third cannot afford the trade.
	rules := []*domain.StrategyRule{
		domain.NewStrategyRule(userID, asset.ID, wallet.ID, domain.CondPriceAbove, domain.ActionBuy, dec("50"), dec("1")),
		domain.NewStrategyRule(userID, asset.ID, wallet.ID, domain.CondPriceAbove, domain.ActionBuy, dec("50"), dec("1")),
		domain.NewStrategyRule(userID, asset.ID, wallet.ID, domain.CondPriceAbove, domain.ActionBuy, dec("50"), dec("1")),
	}

	strategyRepo := &stubStrategyRepo{rules: rules}
	walletRepo := &stubWalletRepo{wallets: map[uuid.UUID]*domain.Wallet{wallet.ID: wallet}}
	assetRepo := &stubAssetRepo{assets: map[uuid.UUID]*domain.Asset{asset.ID: asset}}
	txRepo := &stubTxRepo{}
	market := &stubPrices{prices: map[uuid.UUID]decimal.Decimal{asset.ID: dec("100")}}

	engine := NewStrategyEngine(strategyRepo, walletRepo, assetRepo, txRepo, &stubAlertRepo{}, market, nil)
	require.NoError(t, engine.RunPass(context.Background()))

	require.Len(t, txRepo.saved, 2)
	assert.True(t, wallet.Balance().Equal(dec("50")))
	assert.True(t, wallet.Position(asset.ID).Equal(dec("2")))
	assert.Equal(t, 1, walletRepo.saved[wallet.ID])
}

func TestRunPassSkipsUnresolvableRules(t *testing.T) {
	userID := uuid.New()
	asset := domain.NewAsset("BTC", "Bitcoin", dec("100"))

	// Bound wallet does not exist.
	rule := domain.NewStrategyRule(userID, asset.ID, uuid.New(), domain.CondPriceAbove, domain.ActionBuy, dec("50"), dec("1"))

	strategyRepo := &stubStrategyRepo{rules: []*domain.StrategyRule{rule}}
	walletRepo := &stubWalletRepo{wallets: map[uuid.UUID]*domain.Wallet{}}
	assetRepo := &stubAssetRepo{assets: map[uuid.UUID]*domain.Asset{asset.ID: asset}}
	txRepo := &stubTxRepo{}
	market := &stubPrices{prices: map[uuid.UUID]decimal.Decimal{asset.ID: dec("100")}}

	engine := NewStrategyEngine(strategyRepo, walletRepo, assetRepo, txRepo, &stubAlertRepo{}, market, nil)
	require.NoError(t, engine.RunPass(context.Background()))

	assert.Empty(t, txRepo.saved)
	assert.Empty(t, walletRepo.saved)
}
