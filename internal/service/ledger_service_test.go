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

type stubTxRepo struct {
	byID  map[uuid.UUID]*domain.Transaction
	saved []*domain.Transaction
}

func (r *stubTxRepo) Save(ctx context.Context, tx *domain.Transaction) error {
	r.saved = append(r.saved, tx)
	return nil
}
func (r *stubTxRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	tx, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return tx, nil
}
func (r *stubTxRepo) GetByWalletID(ctx context.Context, walletID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	return nil, nil
}
func (r *stubTxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return nil
}

func newLedgerFixture(t *testing.T) (*LedgerService, *domain.Wallet, *domain.Asset, *stubTxRepo, *stubPriceSource) {
	t.Helper()

	wallet := domain.NewWallet(uuid.New(), domain.HotWallet)
	_, err := wallet.Deposit(decimal.NewFromInt(1000))
	require.NoError(t, err)
	asset := domain.NewAsset("BTC", "Bitcoin", decimal.NewFromInt(100))

	txRepo := &stubTxRepo{byID: make(map[uuid.UUID]*domain.Transaction)}
	market := &stubPriceSource{prices: map[uuid.UUID]decimal.Decimal{asset.ID: decimal.NewFromInt(100)}}
	svc := NewLedgerService(
		&stubWalletRepo{wallets: []*domain.Wallet{wallet}},
		&stubAssetRepo{assets: map[uuid.UUID]*domain.Asset{asset.ID: asset}},
		txRepo,
		market,
	)
	return svc, wallet, asset, txRepo, market
}

func TestLedgerBuyAtMarket(t *testing.T) {
	svc, wallet, asset, txRepo, market := newLedgerFixture(t)
	market.prices[asset.ID] = decimal.NewFromInt(120)

	// Zero unit price means "at market".
	tx, err := svc.Buy(context.Background(), wallet.ID, asset.ID, decimal.NewFromInt(2), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, tx.UnitPrice.Equal(decimal.NewFromInt(120)))
	assert.True(t, wallet.Balance().Equal(decimal.NewFromInt(760)))
	require.Len(t, txRepo.saved, 1)
}

func TestLedgerBuyAtExplicitPrice(t *testing.T) {
	svc, wallet, asset, _, _ := newLedgerFixture(t)

	tx, err := svc.Buy(context.Background(), wallet.ID, asset.ID, decimal.NewFromInt(2), decimal.NewFromInt(90))
	require.NoError(t, err)
	assert.True(t, tx.UnitPrice.Equal(decimal.NewFromInt(90)))
	assert.True(t, wallet.Balance().Equal(decimal.NewFromInt(820)))
}

func TestLedgerBuyUnpricedAsset(t *testing.T) {
	svc, wallet, asset, txRepo, market := newLedgerFixture(t)
	delete(market.prices, asset.ID)

	_, err := svc.Buy(context.Background(), wallet.ID, asset.ID, decimal.NewFromInt(1), decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, wallet.Balance().Equal(decimal.NewFromInt(1000)))
	assert.Empty(t, txRepo.saved)
}

func TestLedgerSellRoundTrip(t *testing.T) {
	svc, wallet, asset, txRepo, _ := newLedgerFixture(t)

	_, err := svc.Buy(context.Background(), wallet.ID, asset.ID, decimal.NewFromInt(2), decimal.Zero)
	require.NoError(t, err)

	tx, err := svc.Sell(context.Background(), wallet.ID, asset.ID, decimal.NewFromInt(1), decimal.NewFromInt(300))
	require.NoError(t, err)
	assert.Equal(t, domain.TxSell, tx.Kind)
	assert.True(t, wallet.Balance().Equal(decimal.NewFromInt(1100)))
	assert.Len(t, txRepo.saved, 2)
}

func TestLedgerTransactionTransitions(t *testing.T) {
	svc, wallet, asset, txRepo, _ := newLedgerFixture(t)

	tx, err := svc.Buy(context.Background(), wallet.ID, asset.ID, decimal.NewFromInt(1), decimal.Zero)
	require.NoError(t, err)
	txRepo.byID[tx.ID] = tx

	require.NoError(t, svc.ConfirmTransaction(context.Background(), tx.ID))
	assert.Equal(t, domain.TxConcluded, tx.Status)

	// A concluded transaction cannot be cancelled.
	assert.ErrorIs(t, svc.CancelTransaction(context.Background(), tx.ID), domain.ErrInvalidInput)

	assert.ErrorIs(t, svc.ConfirmTransaction(context.Background(), uuid.New()), domain.ErrNotFound)
}

func TestLedgerCreateWalletValidatesKind(t *testing.T) {
	svc, _, _, _, _ := newLedgerFixture(t)

	_, err := svc.CreateWallet(context.Background(), uuid.New(), "WARM")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	wallet, err := svc.CreateWallet(context.Background(), uuid.New(), domain.ColdWallet)
	require.NoError(t, err)
	assert.Equal(t, domain.ColdWallet, wallet.Kind)
}
