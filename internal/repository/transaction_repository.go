package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cryptodesk/internal/domain"
)

// TransactionRepositoryImpl implements the TransactionRepository interface
type TransactionRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db *pgxpool.Pool) domain.TransactionRepository {
	return &TransactionRepositoryImpl{db: db}
}

// Save appends a transaction
func (r *TransactionRepositoryImpl) Save(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, user_id, wallet_id, asset_id, kind,
			quantity, unit_price, total, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.db.Exec(ctx, query,
		tx.ID,
		tx.UserID,
		tx.WalletID,
		tx.AssetID,
		tx.Kind,
		tx.Quantity,
		tx.UnitPrice,
		tx.Total,
		tx.Status,
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by ID
func (r *TransactionRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `
		SELECT id, user_id, wallet_id, asset_id, kind,
		       quantity, unit_price, total, status, created_at
		FROM transactions
		WHERE id = $1
	`

	tx := &domain.Transaction{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&tx.ID,
		&tx.UserID,
		&tx.WalletID,
		&tx.AssetID,
		&tx.Kind,
		&tx.Quantity,
		&tx.UnitPrice,
		&tx.Total,
		&tx.Status,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction by ID: %w", notFound(err))
	}

	return tx, nil
}

// GetByWalletID retrieves a wallet's transactions, newest first
func (r *TransactionRepositoryImpl) GetByWalletID(ctx context.Context, walletID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	query := `
		SELECT id, user_id, wallet_id, asset_id, kind,
		       quantity, unit_price, total, status, created_at
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		tx := &domain.Transaction{}
		if err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.WalletID,
			&tx.AssetID,
			&tx.Kind,
			&tx.Quantity,
			&tx.UnitPrice,
			&tx.Total,
			&tx.Status,
			&tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txs, nil
}

// UpdateStatus persists a status transition
func (r *TransactionRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE transactions
		SET status = $1
		WHERE id = $2
	`

	_, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	return nil
}
