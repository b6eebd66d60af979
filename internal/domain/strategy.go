package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Strategy condition constants
const (
	CondPriceAbove     = "PRICE_ABOVE"
	CondPriceBelow     = "PRICE_BELOW"
	CondVariationAbove = "VARIATION_ABOVE"
	CondVariationBelow = "VARIATION_BELOW"
)

// Strategy action constants
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// variationWindowHours is the lookback used by the variation conditions.
const variationWindowHours = 24

// ValidCondition reports whether s is a known condition kind.
func ValidCondition(s string) bool {
	switch s {
	case CondPriceAbove, CondPriceBelow, CondVariationAbove, CondVariationBelow:
		return true
	}
	return false
}

// ValidAction reports whether s is a known action kind.
func ValidAction(s string) bool {
	return s == ActionBuy || s == ActionSell
}

// StrategyRule is an automated condition/action pair bound to one asset, one
// wallet, and one owning user. The wallet and asset are referenced by id and
// resolved by the caller; the rule never owns them.
type StrategyRule struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	AssetID        uuid.UUID       `json:"asset_id"`
	WalletID       uuid.UUID       `json:"wallet_id"`
	Condition      string          `json:"condition"`
	Action         string          `json:"action"`
	Reference      decimal.Decimal `json:"reference"`
	Quantity       decimal.Decimal `json:"quantity"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	LastExecutedAt *time.Time      `json:"last_executed_at,omitempty"`
}

// NewStrategyRule creates an active rule.
func NewStrategyRule(userID, assetID, walletID uuid.UUID, condition, action string, reference, quantity decimal.Decimal) *StrategyRule {
	return &StrategyRule{
		ID:        uuid.New(),
		UserID:    userID,
		AssetID:   assetID,
		WalletID:  walletID,
		Condition: condition,
		Action:    action,
		Reference: reference,
		Quantity:  quantity,
		Active:    true,
		CreatedAt: time.Now(),
	}
}

// SetActive toggles the rule. Evaluation and execution are no-ops while
// inactive.
func (r *StrategyRule) SetActive(active bool) {
	r.Active = active
}

// Evaluate reports whether the rule's condition holds against the market.
// An unpriced asset and an unknown condition kind both evaluate false; the
// evaluator fails closed rather than erroring.
func (r *StrategyRule) Evaluate(market PriceSource) bool {
	if !r.Active {
		return false
	}

	price, err := market.CurrentPrice(r.AssetID)
	if err != nil {
		return false
	}

	switch r.Condition {
	case CondPriceAbove:
		return price.GreaterThanOrEqual(r.Reference)
	case CondPriceBelow:
		return price.LessThanOrEqual(r.Reference)
	case CondVariationAbove:
		return market.Variation(r.AssetID, variationWindowHours).GreaterThanOrEqual(r.Reference)
	case CondVariationBelow:
		return market.Variation(r.AssetID, variationWindowHours).LessThanOrEqual(r.Reference)
	default:
		return false
	}
}

// Execute runs the rule's action against its bound wallet at the live market
// price. It is a silent no-op when the rule is inactive, when the given
// wallet is not the bound one, or when the asset has no price; a failed trade
// (insufficient funds or position) is simply "not executed this cycle" and is
// retried on the next scheduling tick. On success the last-execution
// timestamp is set and the appended transaction is returned so the caller can
// persist it and raise the alert event.
func (r *StrategyRule) Execute(wallet *Wallet, asset *Asset, market PriceSource) (*Transaction, bool) {
	if !r.Active || wallet == nil || wallet.ID != r.WalletID {
		return nil, false
	}

	price, err := market.CurrentPrice(r.AssetID)
	if err != nil {
		return nil, false
	}

	var tx *Transaction
	switch r.Action {
	case ActionBuy:
		tx, err = wallet.Buy(asset, r.Quantity, price)
	case ActionSell:
		tx, err = wallet.Sell(asset, r.Quantity, price)
	default:
		return nil, false
	}
	if err != nil {
		return nil, false
	}

	now := time.Now()
	r.LastExecutedAt = &now
	return tx, true
}
