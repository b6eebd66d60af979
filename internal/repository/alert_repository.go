package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cryptodesk/internal/domain"
)

// AlertRepositoryImpl implements the AlertRepository interface. Kind-specific
// payloads are stored as nullable JSONB columns.
type AlertRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewAlertRepository creates a new AlertRepository
func NewAlertRepository(db *pgxpool.Pool) domain.AlertRepository {
	return &AlertRepositoryImpl{db: db}
}

// Save persists a new alert
func (r *AlertRepositoryImpl) Save(ctx context.Context, alert *domain.Alert) error {
	var strategyPayload, volatilityPayload []byte
	var err error
	if alert.Strategy != nil {
		if strategyPayload, err = json.Marshal(alert.Strategy); err != nil {
			return fmt.Errorf("failed to encode strategy payload: %w", err)
		}
	}
	if alert.Volatility != nil {
		if volatilityPayload, err = json.Marshal(alert.Volatility); err != nil {
			return fmt.Errorf("failed to encode volatility payload: %w", err)
		}
	}

	query := `
		INSERT INTO alerts (
			id, user_id, kind, title, body, priority,
			strategy_payload, volatility_payload, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err = r.db.Exec(ctx, query,
		alert.ID,
		alert.UserID,
		alert.Kind,
		alert.Title,
		alert.Body,
		alert.Priority,
		strategyPayload,
		volatilityPayload,
		alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}

	return nil
}

// GetByUserID retrieves a user's alerts, newest first
func (r *AlertRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Alert, error) {
	query := selectAlert + ` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	return r.queryAlerts(ctx, query, userID, limit)
}

// GetRecent retrieves the most recent alerts across all users
func (r *AlertRepositoryImpl) GetRecent(ctx context.Context, limit int) ([]*domain.Alert, error) {
	query := selectAlert + ` ORDER BY created_at DESC LIMIT $1`
	return r.queryAlerts(ctx, query, limit)
}

const selectAlert = `
	SELECT id, user_id, kind, title, body, priority,
	       strategy_payload, volatility_payload, created_at
	FROM alerts`

func (r *AlertRepositoryImpl) queryAlerts(ctx context.Context, query string, args ...any) ([]*domain.Alert, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		alert := &domain.Alert{}
		var strategyPayload, volatilityPayload []byte
		if err := rows.Scan(
			&alert.ID,
			&alert.UserID,
			&alert.Kind,
			&alert.Title,
			&alert.Body,
			&alert.Priority,
			&strategyPayload,
			&volatilityPayload,
			&alert.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}

		if len(strategyPayload) > 0 {
			alert.Strategy = &domain.StrategyPayload{}
			if err := json.Unmarshal(strategyPayload, alert.Strategy); err != nil {
				return nil, fmt.Errorf("failed to decode strategy payload: %w", err)
			}
		}
		if len(volatilityPayload) > 0 {
			alert.Volatility = &domain.VolatilityPayload{}
			if err := json.Unmarshal(volatilityPayload, alert.Volatility); err != nil {
				return nil, fmt.Errorf("failed to decode volatility payload: %w", err)
			}
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}

	return alerts, nil
}
