package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptodesk/internal/domain"
)

type stubDetector struct {
	moves map[uuid.UUID]decimal.Decimal
}

func (d *stubDetector) DetectSharpMoves(threshold decimal.Decimal) map[uuid.UUID]decimal.Decimal {
	return d.moves
}

type stubWalletRepo struct {
	wallets []*domain.Wallet
}

func (r *stubWalletRepo) Create(ctx context.Context, w *domain.Wallet) error { return nil }
func (r *stubWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	for _, w := range r.wallets {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (r *stubWalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Wallet, error) {
	return nil, nil
}
func (r *stubWalletRepo) GetAll(ctx context.Context) ([]*domain.Wallet, error) {
	return r.wallets, nil
}
func (r *stubWalletRepo) Save(ctx context.Context, w *domain.Wallet) error { return nil }

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
func (r *stubAssetRepo) GetAll(ctx context.Context) ([]*domain.Asset, error)    { return nil, nil }
func (r *stubAssetRepo) UpdatePrice(ctx context.Context, a *domain.Asset) error { return nil }

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

func TestRunSweepAlertsHoldersOnce(t *testing.T) {
	userA, userB, userC := uuid.New(), uuid.New(), uuid.New()
	asset := domain.NewAsset("BTC", "Bitcoin", decimal.NewFromInt(100))

	// userA holds the asset in two wallets, userB in one, userC not at all.
	hold := func(userID uuid.UUID) *domain.Wallet {
		w := domain.NewWallet(userID, domain.HotWallet)
		_, err := w.Deposit(decimal.NewFromInt(1000))
		require.NoError(t, err)
		_, err = w.Buy(asset, decimal.NewFromInt(1), decimal.NewFromInt(100))
		require.NoError(t, err)
		return w
	}
	wallets := []*domain.Wallet{
		hold(userA),
		hold(userA),
		hold(userB),
		domain.NewWallet(userC, domain.ColdWallet),
	}

	variation := decimal.RequireFromString("-15")
	detector := &stubDetector{moves: map[uuid.UUID]decimal.Decimal{asset.ID: variation}}
	alertRepo := &stubAlertRepo{}
	notifier := &stubNotifier{}

	svc := NewVolatilityService(
		detector,
		&stubAssetRepo{assets: map[uuid.UUID]*domain.Asset{asset.ID: asset}},
		&stubWalletRepo{wallets: wallets},
		alertRepo,
		notifier,
		decimal.NewFromInt(10),
	)
	require.NoError(t, svc.RunSweep(context.Background()))

	// One alert per holding user, despite userA's two wallets.
	require.Len(t, alertRepo.saved, 2)
	recipients := map[uuid.UUID]bool{}
	for _, a := range alertRepo.saved {
		assert.Equal(t, domain.AlertVolatility, a.Kind)
		assert.Equal(t, domain.PriorityHigh, a.Priority)
		require.NotNil(t, a.Volatility)
		assert.True(t, a.Volatility.Variation.Equal(variation))
		recipients[a.UserID] = true
	}
	assert.True(t, recipients[userA])
	assert.True(t, recipients[userB])
	assert.False(t, recipients[userC])

	assert.Len(t, notifier.sent, 2)
}

func TestRunSweepNoMoves(t *testing.T) {
	alertRepo := &stubAlertRepo{}
	svc := NewVolatilityService(
		&stubDetector{},
		&stubAssetRepo{},
		&stubWalletRepo{},
		alertRepo,
		nil,
		decimal.NewFromInt(10),
	)
	require.NoError(t, svc.RunSweep(context.Background()))
	assert.Empty(t, alertRepo.saved)
}

func TestRunSweepSkipsUnknownAsset(t *testing.T) {
	alertRepo := &stubAlertRepo{}
	detector := &stubDetector{moves: map[uuid.UUID]decimal.Decimal{uuid.New(): decimal.NewFromInt(20)}}

	svc := NewVolatilityService(
		detector,
		&stubAssetRepo{},
		&stubWalletRepo{},
		alertRepo,
		nil,
		decimal.NewFromInt(10),
	)
	require.NoError(t, svc.RunSweep(context.Background()))
	assert.Empty(t, alertRepo.saved)
}
