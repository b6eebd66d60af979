package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Simulator op constants
const (
	SimBuy  = "BUY"
	SimSell = "SELL"
)

// SimulatedOp is one entry in a simulator's operation history.
type SimulatedOp struct {
	Kind      string          `json:"kind"`
	AssetID   uuid.UUID       `json:"asset_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
	At        time.Time       `json:"at"`
}

// Simulator is a risk-free paper-trading sandbox: a virtual balance and
// position map with the same guards as the real ledger, but no transaction
// log and no market impact.
type Simulator struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	StartedAt      time.Time `json:"started_at"`
	InitialBalance decimal.Decimal

	mu        sync.Mutex
	balance   decimal.Decimal
	positions map[uuid.UUID]decimal.Decimal
	history   []SimulatedOp
	active    bool
}

// NewSimulator starts a simulation with the given virtual balance.
func NewSimulator(userID uuid.UUID, initialBalance decimal.Decimal) *Simulator {
	return &Simulator{
		ID:             uuid.New(),
		UserID:         userID,
		StartedAt:      time.Now(),
		InitialBalance: initialBalance,
		balance:        initialBalance,
		positions:      make(map[uuid.UUID]decimal.Decimal),
		active:         true,
	}
}

// Balance returns the current virtual balance.
func (s *Simulator) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// Active reports whether the simulation is still running.
func (s *Simulator) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Position returns the simulated quantity held of an asset.
func (s *Simulator) Position(assetID uuid.UUID) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positions[assetID]
}

// History returns a copy of the simulated operation log.
func (s *Simulator) History() []SimulatedOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SimulatedOp, len(s.history))
	copy(out, s.history)
	return out
}

// SimulateBuy performs a virtual purchase with the same guards as the real
// ledger. A stopped simulator rejects all operations.
func (s *Simulator) SimulateBuy(assetID uuid.UUID, quantity, unitPrice decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) || unitPrice.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return ErrInvalidInput
	}

	cost := quantity.Mul(unitPrice)
	if cost.GreaterThan(s.balance) {
		return ErrInsufficientFunds
	}

	s.balance = s.balance.Sub(cost)
	s.positions[assetID] = s.positions[assetID].Add(quantity)
	s.history = append(s.history, SimulatedOp{
		Kind: SimBuy, AssetID: assetID, Quantity: quantity,
		UnitPrice: unitPrice, Total: cost, At: time.Now(),
	})
	return nil
}

// SimulateSell performs a virtual sale.
func (s *Simulator) SimulateSell(assetID uuid.UUID, quantity, unitPrice decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) || unitPrice.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return ErrInvalidInput
	}

	held := s.positions[assetID]
	if held.LessThan(quantity) {
		return ErrInsufficientPosition
	}

	s.balance = s.balance.Add(quantity.Mul(unitPrice))
	remaining := held.Sub(quantity)
	if remaining.LessThanOrEqual(decimal.Zero) {
		delete(s.positions, assetID)
	} else {
		s.positions[assetID] = remaining
	}
	s.history = append(s.history, SimulatedOp{
		Kind: SimSell, AssetID: assetID, Quantity: quantity,
		UnitPrice: unitPrice, Total: quantity.Mul(unitPrice), At: time.Now(),
	})
	return nil
}

// PortfolioValue reports virtual balance plus the market value of the
// simulated positions. Unpriced assets contribute zero.
func (s *Simulator) PortfolioValue(prices PriceSource) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.balance
	for assetID, qty := range s.positions {
		price, err := prices.CurrentPrice(assetID)
		if err != nil {
			continue
		}
		total = total.Add(qty.Mul(price))
	}
	return total
}

// Performance reports the portfolio return as a percent of the initial
// balance.
func (s *Simulator) Performance(prices PriceSource) decimal.Decimal {
	if s.InitialBalance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	value := s.PortfolioValue(prices)
	return value.Sub(s.InitialBalance).Div(s.InitialBalance).Mul(decimal.NewFromInt(100))
}

// Stop ends the simulation; further buy/sell calls are rejected.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}
