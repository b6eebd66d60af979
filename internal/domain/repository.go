package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetAll retrieves all users
	GetAll(ctx context.Context) ([]*User, error)
}

// AssetRepository is the canonical asset registry
type AssetRepository interface {
	// Create registers a new asset
	Create(ctx context.Context, asset *Asset) error

	// GetByID retrieves an asset by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)

	// GetBySymbol retrieves an asset by its ticker symbol
	GetBySymbol(ctx context.Context, symbol string) (*Asset, error)

	// GetAll retrieves all registered assets
	GetAll(ctx context.Context) ([]*Asset, error)

	// UpdatePrice persists a new current price and day variation
	UpdatePrice(ctx context.Context, asset *Asset) error
}

// WalletRepository is the canonical wallet registry
type WalletRepository interface {
	// Create persists a new wallet
	Create(ctx context.Context, wallet *Wallet) error

	// GetByID retrieves a wallet with its positions
	GetByID(ctx context.Context, id uuid.UUID) (*Wallet, error)

	// GetByUserID retrieves all wallets owned by a user
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Wallet, error)

	// GetAll retrieves every wallet
	GetAll(ctx context.Context) ([]*Wallet, error)

	// Save persists the wallet's balance and positions atomically
	Save(ctx context.Context, wallet *Wallet) error
}

// TransactionRepository stores the ledger's transaction log
type TransactionRepository interface {
	// Save appends a transaction
	Save(ctx context.Context, tx *Transaction) error

	// GetByID retrieves a transaction by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// GetByWalletID retrieves a wallet's transactions, newest first
	GetByWalletID(ctx context.Context, walletID uuid.UUID, limit int) ([]*Transaction, error)

	// UpdateStatus persists a status transition
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// StrategyRepository stores automated strategy rules
type StrategyRepository interface {
	// Save persists a new rule
	Save(ctx context.Context, rule *StrategyRule) error

	// GetByID retrieves a rule by ID
	GetByID(ctx context.Context, id uuid.UUID) (*StrategyRule, error)

	// GetByUserID retrieves all rules owned by a user
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*StrategyRule, error)

	// GetActive retrieves all active rules
	GetActive(ctx context.Context) ([]*StrategyRule, error)

	// SetActive persists the active flag
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// UpdateLastExecuted persists the last-execution timestamp
	UpdateLastExecuted(ctx context.Context, id uuid.UUID, at time.Time) error
}

// AlertRepository stores alerts raised for users
type AlertRepository interface {
	// Save persists a new alert
	Save(ctx context.Context, alert *Alert) error

	// GetByUserID retrieves a user's alerts, newest first
	GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*Alert, error)

	// GetRecent retrieves the most recent alerts across all users
	GetRecent(ctx context.Context, limit int) ([]*Alert, error)
}
