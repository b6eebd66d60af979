package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Alert kind constants
const (
	AlertVolatility = "VOLATILITY"
	AlertStrategy   = "STRATEGY"
	AlertSecurity   = "SECURITY"
	AlertInfo       = "INFO"
)

// Alert priority constants
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// StrategyPayload carries the fields specific to a strategy-execution alert.
type StrategyPayload struct {
	AssetID  uuid.UUID       `json:"asset_id"`
	Action   string          `json:"action"`
	Quantity decimal.Decimal `json:"quantity"`
}

// VolatilityPayload carries the fields specific to a sharp-move alert.
type VolatilityPayload struct {
	AssetID   uuid.UUID       `json:"asset_id"`
	Variation decimal.Decimal `json:"variation"`
}

// Alert is a user-facing event notification. All kinds share the same shape;
// kind-specific fields live in the optional payloads.
type Alert struct {
	ID         uuid.UUID          `json:"id"`
	UserID     uuid.UUID          `json:"user_id"`
	Kind       string             `json:"kind"`
	Title      string             `json:"title"`
	Body       string             `json:"body"`
	Priority   string             `json:"priority"`
	CreatedAt  time.Time          `json:"created_at"`
	Strategy   *StrategyPayload   `json:"strategy,omitempty"`
	Volatility *VolatilityPayload `json:"volatility,omitempty"`
}

// NewAlert creates an alert with the priority derived from its kind:
// security and volatility alerts are high priority, strategy alerts medium,
// everything else low.
func NewAlert(userID uuid.UUID, kind, title, body string) *Alert {
	priority := PriorityLow
	switch kind {
	case AlertSecurity, AlertVolatility:
		priority = PriorityHigh
	case AlertStrategy:
		priority = PriorityMedium
	}

	return &Alert{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		Priority:  priority,
		CreatedAt: time.Now(),
	}
}

// NewStrategyAlert builds the alert raised when an automated strategy
// executes a trade.
func NewStrategyAlert(userID uuid.UUID, asset *Asset, action string, quantity decimal.Decimal) *Alert {
	a := NewAlert(userID, AlertStrategy,
		"Automated strategy executed",
		fmt.Sprintf("Strategy executed: %s %s %s", action, quantity.String(), asset.Symbol))
	a.Strategy = &StrategyPayload{
		AssetID:  asset.ID,
		Action:   action,
		Quantity: quantity,
	}
	return a
}

// NewVolatilityAlert builds the alert raised when an asset moves sharply
// within 24 hours.
func NewVolatilityAlert(userID uuid.UUID, asset *Asset, variation decimal.Decimal) *Alert {
	a := NewAlert(userID, AlertVolatility,
		"Sharp price move",
		fmt.Sprintf("%s moved %s%% in the last 24h", asset.Symbol, variation.StringFixed(2)))
	a.Volatility = &VolatilityPayload{
		AssetID:   asset.ID,
		Variation: variation,
	}
	return a
}
