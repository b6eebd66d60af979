// Package market holds the in-process view of current asset prices and a
// rolling history of price snapshots, used to answer price and variation
// queries for the ledger and the strategy evaluator.
package market

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptodesk/internal/domain"
)

// DefaultHistoryLimit bounds the snapshot history unless overridden.
const DefaultHistoryLimit = 1000

var hundred = decimal.NewFromInt(100)

// snapshot is a recorded price map at a point in time.
type snapshot struct {
	at     time.Time
	prices map[uuid.UUID]decimal.Decimal
}

// State holds current prices per asset and the snapshot history. Updates are
// applied atomically relative to readers: a reader never observes a partially
// updated price map.
type State struct {
	mu           sync.RWMutex
	prices       map[uuid.UUID]decimal.Decimal
	history      []snapshot
	historyLimit int // 0 = unbounded
	updatedAt    time.Time

	now func() time.Time
}

// NewState creates an empty market state. historyLimit bounds the number of
// retained snapshots, oldest evicted first; 0 keeps the history unbounded.
func NewState(historyLimit int) *State {
	return &State{
		prices:       make(map[uuid.UUID]decimal.Decimal),
		historyLimit: historyLimit,
		updatedAt:    time.Now(),
		now:          time.Now,
	}
}

// UpdatePrices snapshots the current price map into history, tagged with the
// previous update's timestamp, then merges the supplied prices over the
// current map and advances the last-updated timestamp.
func (s *State) UpdatePrices(updates map[uuid.UUID]decimal.Decimal) error {
	if len(updates) == 0 {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := make(map[uuid.UUID]decimal.Decimal, len(s.prices))
	for id, p := range s.prices {
		previous[id] = p
	}
	s.history = append(s.history, snapshot{at: s.updatedAt, prices: previous})
	if s.historyLimit > 0 && len(s.history) > s.historyLimit {
		s.history = s.history[len(s.history)-s.historyLimit:]
	}

	for id, p := range updates {
		s.prices[id] = p
	}
	s.updatedAt = s.now()
	return nil
}

// CurrentPrice returns the current price of an asset, or ErrNotFound if the
// asset has never been priced. An unknown asset is distinct from a zero
// price.
func (s *State) CurrentPrice(assetID uuid.UUID) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	price, ok := s.prices[assetID]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	return price, nil
}

// LastUpdated returns the timestamp of the most recent price update.
func (s *State) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Prices returns a copy of the current price map.
func (s *State) Prices() map[uuid.UUID]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID]decimal.Decimal, len(s.prices))
	for id, p := range s.prices {
		out[id] = p
	}
	return out
}

// Variation returns the percent price change of an asset over the given
// number of hours, comparing the current price against the most recent
// snapshot taken at or before now-hours. No usable data — the asset is
// unpriced, no snapshot is old enough, or the snapshot price is zero —
// yields zero rather than an error.
func (s *State) Variation(assetID uuid.UUID, hours int) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.variationLocked(assetID, hours)
}

func (s *State) variationLocked(assetID uuid.UUID, hours int) decimal.Decimal {
	current, ok := s.prices[assetID]
	if !ok {
		return decimal.Zero
	}

	target := s.now().Add(-time.Duration(hours) * time.Hour)
	var previous decimal.Decimal
	found := false
	for i := len(s.history) - 1; i >= 0; i-- {
		if !s.history[i].at.After(target) {
			previous, found = s.history[i].prices[assetID]
			break
		}
	}
	if !found || previous.IsZero() {
		return decimal.Zero
	}

	return current.Sub(previous).Div(previous).Mul(hundred)
}

// DetectSharpMoves returns every currently priced asset whose absolute 24h
// variation meets the threshold, mapped to its variation.
func (s *State) DetectSharpMoves(thresholdPercent decimal.Decimal) map[uuid.UUID]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	moves := make(map[uuid.UUID]decimal.Decimal)
	for assetID := range s.prices {
		variation := s.variationLocked(assetID, 24)
		if variation.Abs().GreaterThanOrEqual(thresholdPercent) {
			moves[assetID] = variation
		}
	}
	return moves
}
