package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cryptodesk/internal/domain"
)

// AssetRepositoryImpl implements the AssetRepository interface
type AssetRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewAssetRepository creates a new AssetRepository
func NewAssetRepository(db *pgxpool.Pool) domain.AssetRepository {
	return &AssetRepositoryImpl{db: db}
}

// Create registers a new asset
func (r *AssetRepositoryImpl) Create(ctx context.Context, asset *domain.Asset) error {
	query := `
		INSERT INTO assets (id, symbol, name, current_price, day_variation, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		asset.ID,
		asset.Symbol,
		asset.Name,
		asset.CurrentPrice,
		asset.DayVariation,
		asset.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

// GetByID retrieves an asset by ID
func (r *AssetRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	query := `
		SELECT id, symbol, name, current_price, day_variation, last_updated_at
		FROM assets
		WHERE id = $1
	`

	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetBySymbol retrieves an asset by its ticker symbol
func (r *AssetRepositoryImpl) GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	query := `
		SELECT id, symbol, name, current_price, day_variation, last_updated_at
		FROM assets
		WHERE symbol = $1
	`

	return r.scanOne(r.db.QueryRow(ctx, query, symbol))
}

// GetAll retrieves all registered assets
func (r *AssetRepositoryImpl) GetAll(ctx context.Context) ([]*domain.Asset, error) {
	query := `
		SELECT id, symbol, name, current_price, day_variation, last_updated_at
		FROM assets
		ORDER BY symbol ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		asset := &domain.Asset{}
		if err := rows.Scan(
			&asset.ID,
			&asset.Symbol,
			&asset.Name,
			&asset.CurrentPrice,
			&asset.DayVariation,
			&asset.LastUpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	return assets, nil
}

// UpdatePrice persists a new current price and day variation
func (r *AssetRepositoryImpl) UpdatePrice(ctx context.Context, asset *domain.Asset) error {
	query := `
		UPDATE assets
		SET current_price = $1, day_variation = $2, last_updated_at = $3
		WHERE id = $4
	`

	_, err := r.db.Exec(ctx, query,
		asset.CurrentPrice,
		asset.DayVariation,
		asset.LastUpdatedAt,
		asset.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset price: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *AssetRepositoryImpl) scanOne(row rowScanner) (*domain.Asset, error) {
	asset := &domain.Asset{}
	err := row.Scan(
		&asset.ID,
		&asset.Symbol,
		&asset.Name,
		&asset.CurrentPrice,
		&asset.DayVariation,
		&asset.LastUpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", notFound(err))
	}
	return asset, nil
}
