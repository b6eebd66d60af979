package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptodesk/internal/domain"
)

// LedgerService runs wallet operations against the persisted registries:
// load the wallet, perform the domain operation, persist the wallet state
// and any appended transactions.
type LedgerService struct {
	walletRepo domain.WalletRepository
	assetRepo  domain.AssetRepository
	txRepo     domain.TransactionRepository
	market     domain.PriceSource
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	walletRepo domain.WalletRepository,
	assetRepo domain.AssetRepository,
	txRepo domain.TransactionRepository,
	market domain.PriceSource,
) *LedgerService {
	return &LedgerService{
		walletRepo: walletRepo,
		assetRepo:  assetRepo,
		txRepo:     txRepo,
		market:     market,
	}
}

// CreateWallet registers a new empty wallet for a user.
func (s *LedgerService) CreateWallet(ctx context.Context, userID uuid.UUID, kind string) (*domain.Wallet, error) {
	if kind != domain.HotWallet && kind != domain.ColdWallet {
		return nil, domain.ErrInvalidInput
	}
	wallet := domain.NewWallet(userID, kind)
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return wallet, nil
}

// GetWallet retrieves a wallet with its positions.
func (s *LedgerService) GetWallet(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error) {
	return s.walletRepo.GetByID(ctx, walletID)
}

// Deposit adds cash to a wallet and returns the new balance.
func (s *LedgerService) Deposit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := wallet.Deposit(amount)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.walletRepo.Save(ctx, wallet); err != nil {
		return decimal.Zero, fmt.Errorf("failed to save wallet: %w", err)
	}
	return balance, nil
}

// Withdraw removes cash from a wallet and returns the new balance.
func (s *LedgerService) Withdraw(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := wallet.Withdraw(amount)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.walletRepo.Save(ctx, wallet); err != nil {
		return decimal.Zero, fmt.Errorf("failed to save wallet: %w", err)
	}
	return balance, nil
}

// Buy purchases an asset and records the transaction. A zero unitPrice
// means "at market": the current feed price is used instead.
func (s *LedgerService) Buy(ctx context.Context, walletID, assetID uuid.UUID, quantity, unitPrice decimal.Decimal) (*domain.Transaction, error) {
	wallet, asset, err := s.resolve(ctx, walletID, assetID)
	if err != nil {
		return nil, err
	}
	unitPrice, err = s.effectivePrice(assetID, unitPrice)
	if err != nil {
		return nil, err
	}

	tx, err := wallet.Buy(asset, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	return tx, s.persist(ctx, wallet, tx)
}

// Sell sells an asset and records the transaction. A zero unitPrice means
// "at market".
func (s *LedgerService) Sell(ctx context.Context, walletID, assetID uuid.UUID, quantity, unitPrice decimal.Decimal) (*domain.Transaction, error) {
	wallet, asset, err := s.resolve(ctx, walletID, assetID)
	if err != nil {
		return nil, err
	}
	unitPrice, err = s.effectivePrice(assetID, unitPrice)
	if err != nil {
		return nil, err
	}

	tx, err := wallet.Sell(asset, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	return tx, s.persist(ctx, wallet, tx)
}

// Transfer moves a quantity of an asset between two wallets, recording a
// TRANSFER_OUT on the source and a TRANSFER_IN on the destination.
func (s *LedgerService) Transfer(ctx context.Context, sourceID, destID, assetID uuid.UUID, quantity decimal.Decimal) (*domain.Transaction, *domain.Transaction, error) {
	source, asset, err := s.resolve(ctx, sourceID, assetID)
	if err != nil {
		return nil, nil, err
	}
	dest, err := s.walletRepo.GetByID(ctx, destID)
	if err != nil {
		return nil, nil, err
	}

	out, in, err := source.Transfer(asset, quantity, dest, s.market)
	if err != nil {
		return nil, nil, err
	}

	if err := s.walletRepo.Save(ctx, source); err != nil {
		return nil, nil, fmt.Errorf("failed to save source wallet: %w", err)
	}
	if err := s.walletRepo.Save(ctx, dest); err != nil {
		return nil, nil, fmt.Errorf("failed to save destination wallet: %w", err)
	}
	if err := s.txRepo.Save(ctx, out); err != nil {
		return nil, nil, fmt.Errorf("failed to save transfer-out transaction: %w", err)
	}
	if err := s.txRepo.Save(ctx, in); err != nil {
		return nil, nil, fmt.Errorf("failed to save transfer-in transaction: %w", err)
	}
	return out, in, nil
}

// TotalValue reports a wallet's balance plus the market value of its
// positions.
func (s *LedgerService) TotalValue(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return decimal.Zero, err
	}
	return wallet.TotalValue(s.market), nil
}

// Transactions lists a wallet's transactions, newest first.
func (s *LedgerService) Transactions(ctx context.Context, walletID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	return s.txRepo.GetByWalletID(ctx, walletID, limit)
}

// ConfirmTransaction concludes a still-pending transaction.
func (s *LedgerService) ConfirmTransaction(ctx context.Context, txID uuid.UUID) error {
	return s.transition(ctx, txID, (*domain.Transaction).Confirm)
}

// CancelTransaction cancels a still-pending transaction.
func (s *LedgerService) CancelTransaction(ctx context.Context, txID uuid.UUID) error {
	return s.transition(ctx, txID, (*domain.Transaction).Cancel)
}

func (s *LedgerService) transition(ctx context.Context, txID uuid.UUID, apply func(*domain.Transaction) error) error {
	tx, err := s.txRepo.GetByID(ctx, txID)
	if err != nil {
		return err
	}
	if err := apply(tx); err != nil {
		return err
	}
	if err := s.txRepo.UpdateStatus(ctx, tx.ID, tx.Status); err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	return nil
}

func (s *LedgerService) effectivePrice(assetID uuid.UUID, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if unitPrice.IsPositive() {
		return unitPrice, nil
	}
	price, err := s.market.CurrentPrice(assetID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("no price for asset %s: %w", assetID, err)
	}
	return price, nil
}

func (s *LedgerService) resolve(ctx context.Context, walletID, assetID uuid.UUID) (*domain.Wallet, *domain.Asset, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, nil, err
	}
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, nil, err
	}
	return wallet, asset, nil
}

func (s *LedgerService) persist(ctx context.Context, wallet *domain.Wallet, tx *domain.Transaction) error {
	if err := s.walletRepo.Save(ctx, wallet); err != nil {
		return fmt.Errorf("failed to save wallet: %w", err)
	}
	if err := s.txRepo.Save(ctx, tx); err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}
