package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"cryptodesk/internal/domain"
)

// WalletRepositoryImpl implements the WalletRepository interface. A wallet is
// persisted as a wallet row plus one wallet_positions row per held asset;
// Save replaces both inside a single database transaction so readers never
// see a balance without its matching positions.
type WalletRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewWalletRepository creates a new WalletRepository
func NewWalletRepository(db *pgxpool.Pool) domain.WalletRepository {
	return &WalletRepositoryImpl{db: db}
}

// Create persists a new wallet
func (r *WalletRepositoryImpl) Create(ctx context.Context, wallet *domain.Wallet) error {
	query := `
		INSERT INTO wallets (id, user_id, kind, balance, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		wallet.ID,
		wallet.UserID,
		wallet.Kind,
		wallet.Balance(),
		wallet.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// GetByID retrieves a wallet with its positions
func (r *WalletRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `
		SELECT id, user_id, kind, balance, created_at
		FROM wallets
		WHERE id = $1
	`

	var (
		walletID  uuid.UUID
		userID    uuid.UUID
		kind      string
		balance   decimal.Decimal
		createdAt time.Time
	)
	err := r.db.QueryRow(ctx, query, id).Scan(&walletID, &userID, &kind, &balance, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet by ID: %w", notFound(err))
	}

	positions, err := r.loadPositions(ctx, walletID)
	if err != nil {
		return nil, err
	}

	return domain.RestoreWallet(walletID, userID, kind, createdAt, balance, positions), nil
}

// GetByUserID retrieves all wallets owned by a user
func (r *WalletRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Wallet, error) {
	query := `
		SELECT id, user_id, kind, balance, created_at
		FROM wallets
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	return r.queryWallets(ctx, query, userID)
}

// GetAll retrieves every wallet
func (r *WalletRepositoryImpl) GetAll(ctx context.Context) ([]*domain.Wallet, error) {
	query := `
		SELECT id, user_id, kind, balance, created_at
		FROM wallets
		ORDER BY created_at ASC
	`
	return r.queryWallets(ctx, query)
}

// Save persists the wallet's balance and positions atomically
func (r *WalletRepositoryImpl) Save(ctx context.Context, wallet *domain.Wallet) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin wallet save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE wallets SET balance = $1 WHERE id = $2`,
		wallet.Balance(), wallet.ID,
	); err != nil {
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM wallet_positions WHERE wallet_id = $1`,
		wallet.ID,
	); err != nil {
		return fmt.Errorf("failed to clear wallet positions: %w", err)
	}

	for assetID, quantity := range wallet.Positions() {
		if _, err := tx.Exec(ctx,
			`INSERT INTO wallet_positions (wallet_id, asset_id, quantity) VALUES ($1, $2, $3)`,
			wallet.ID, assetID, quantity,
		); err != nil {
			return fmt.Errorf("failed to insert wallet position: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit wallet save: %w", err)
	}
	return nil
}

func (r *WalletRepositoryImpl) queryWallets(ctx context.Context, query string, args ...any) ([]*domain.Wallet, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}

	type walletRow struct {
		id        uuid.UUID
		userID    uuid.UUID
		kind      string
		balance   decimal.Decimal
		createdAt time.Time
	}

	var heads []walletRow
	for rows.Next() {
		var h walletRow
		if err := rows.Scan(&h.id, &h.userID, &h.kind, &h.balance, &h.createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		heads = append(heads, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallets: %w", err)
	}

	wallets := make([]*domain.Wallet, 0, len(heads))
	for _, h := range heads {
		positions, err := r.loadPositions(ctx, h.id)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, domain.RestoreWallet(h.id, h.userID, h.kind, h.createdAt, h.balance, positions))
	}
	return wallets, nil
}

func (r *WalletRepositoryImpl) loadPositions(ctx context.Context, walletID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT asset_id, quantity FROM wallet_positions WHERE wallet_id = $1`,
		walletID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet positions: %w", err)
	}
	defer rows.Close()

	positions := make(map[uuid.UUID]decimal.Decimal)
	for rows.Next() {
		var assetID uuid.UUID
		var quantity decimal.Decimal
		if err := rows.Scan(&assetID, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan wallet position: %w", err)
		}
		positions[assetID] = quantity
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet positions: %w", err)
	}

	return positions, nil
}
