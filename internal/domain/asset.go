package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Asset represents a tradeable cryptoasset.
type Asset struct {
	ID            uuid.UUID       `json:"id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	DayVariation  decimal.Decimal `json:"day_variation"` // percent over the last update
	LastUpdatedAt time.Time       `json:"last_updated_at"`
}

// NewAsset creates an asset with an initial price.
func NewAsset(symbol, name string, price decimal.Decimal) *Asset {
	return &Asset{
		ID:            uuid.New(),
		Symbol:        symbol,
		Name:          name,
		CurrentPrice:  price,
		LastUpdatedAt: time.Now(),
	}
}

// UpdatePrice replaces the current price and recomputes the day variation as
// (new-old)/old*100. A non-positive price is rejected; the price stays
// positive once initialized.
func (a *Asset) UpdatePrice(newPrice decimal.Decimal) error {
	if newPrice.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	old := a.CurrentPrice
	a.CurrentPrice = newPrice
	if old.IsPositive() {
		a.DayVariation = newPrice.Sub(old).Div(old).Mul(decimal.NewFromInt(100))
	}
	a.LastUpdatedAt = time.Now()
	return nil
}
