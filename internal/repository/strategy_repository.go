package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cryptodesk/internal/domain"
)

// StrategyRepositoryImpl implements the StrategyRepository interface
type StrategyRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewStrategyRepository creates a new StrategyRepository
func NewStrategyRepository(db *pgxpool.Pool) domain.StrategyRepository {
	return &StrategyRepositoryImpl{db: db}
}

// Save persists a new rule
func (r *StrategyRepositoryImpl) Save(ctx context.Context, rule *domain.StrategyRule) error {
	query := `
		INSERT INTO strategies (
			id, user_id, asset_id, wallet_id, condition, action,
			reference, quantity, active, created_at, last_executed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := r.db.Exec(ctx, query,
		rule.ID,
		rule.UserID,
		rule.AssetID,
		rule.WalletID,
		rule.Condition,
		rule.Action,
		rule.Reference,
		rule.Quantity,
		rule.Active,
		rule.CreatedAt,
		rule.LastExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save strategy rule: %w", err)
	}

	return nil
}

// GetByID retrieves a rule by ID
func (r *StrategyRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.StrategyRule, error) {
	query := selectStrategy + ` WHERE id = $1`

	rule := &domain.StrategyRule{}
	if err := scanStrategy(r.db.QueryRow(ctx, query, id), rule); err != nil {
		return nil, fmt.Errorf("failed to get strategy rule by ID: %w", notFound(err))
	}
	return rule, nil
}

// GetByUserID retrieves all rules owned by a user
func (r *StrategyRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.StrategyRule, error) {
	query := selectStrategy + ` WHERE user_id = $1 ORDER BY created_at ASC`
	return r.queryRules(ctx, query, userID)
}

// GetActive retrieves all active rules
func (r *StrategyRepositoryImpl) GetActive(ctx context.Context) ([]*domain.StrategyRule, error) {
	query := selectStrategy + ` WHERE active = TRUE ORDER BY created_at ASC`
	return r.queryRules(ctx, query)
}

// SetActive persists the active flag
func (r *StrategyRepositoryImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `
		UPDATE strategies
		SET active = $1
		WHERE id = $2
	`

	_, err := r.db.Exec(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("failed to update strategy active flag: %w", err)
	}

	return nil
}

// UpdateLastExecuted persists the last-execution timestamp
func (r *StrategyRepositoryImpl) UpdateLastExecuted(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE strategies
		SET last_executed_at = $1
		WHERE id = $2
	`

	_, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to update strategy last execution: %w", err)
	}

	return nil
}

const selectStrategy = `
	SELECT id, user_id, asset_id, wallet_id, condition, action,
	       reference, quantity, active, created_at, last_executed_at
	FROM strategies`

func scanStrategy(row rowScanner, rule *domain.StrategyRule) error {
	return row.Scan(
		&rule.ID,
		&rule.UserID,
		&rule.AssetID,
		&rule.WalletID,
		&rule.Condition,
		&rule.Action,
		&rule.Reference,
		&rule.Quantity,
		&rule.Active,
		&rule.CreatedAt,
		&rule.LastExecutedAt,
	)
}

func (r *StrategyRepositoryImpl) queryRules(ctx context.Context, query string, args ...any) ([]*domain.StrategyRule, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategy rules: %w", err)
	}
	defer rows.Close()

	var rules []*domain.StrategyRule
	for rows.Next() {
		rule := &domain.StrategyRule{}
		if err := scanStrategy(rows, rule); err != nil {
			return nil, fmt.Errorf("failed to scan strategy rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating strategy rules: %w", err)
	}

	return rules, nil
}
