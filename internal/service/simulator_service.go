package service

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptodesk/internal/domain"
)

// SimulatorService is an in-memory registry of running paper-trading
// simulations. Simulations are disposable sandboxes; they live only for the
// process lifetime.
type SimulatorService struct {
	mu         sync.RWMutex
	simulators map[uuid.UUID]*domain.Simulator
	market     domain.PriceSource
}

// NewSimulatorService creates a new SimulatorService.
func NewSimulatorService(market domain.PriceSource) *SimulatorService {
	return &SimulatorService{
		simulators: make(map[uuid.UUID]*domain.Simulator),
		market:     market,
	}
}

// DefaultInitialBalance is the virtual balance used when the caller does not
// name one.
var DefaultInitialBalance = decimal.NewFromInt(10000)

// Start begins a new simulation for a user. A zero initial balance selects
// the default; a negative one is rejected.
func (s *SimulatorService) Start(userID uuid.UUID, initialBalance decimal.Decimal) (*domain.Simulator, error) {
	if initialBalance.IsZero() {
		initialBalance = DefaultInitialBalance
	}
	if initialBalance.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	sim := domain.NewSimulator(userID, initialBalance)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulators[sim.ID] = sim
	return sim, nil
}

// Get retrieves a running simulation.
func (s *SimulatorService) Get(simID uuid.UUID) (*domain.Simulator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sim, ok := s.simulators[simID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sim, nil
}

// Buy performs a virtual purchase at the live market price.
func (s *SimulatorService) Buy(simID, assetID uuid.UUID, quantity decimal.Decimal) error {
	sim, err := s.Get(simID)
	if err != nil {
		return err
	}
	price, err := s.market.CurrentPrice(assetID)
	if err != nil {
		return err
	}
	return sim.SimulateBuy(assetID, quantity, price)
}

// Sell performs a virtual sale at the live market price.
func (s *SimulatorService) Sell(simID, assetID uuid.UUID, quantity decimal.Decimal) error {
	sim, err := s.Get(simID)
	if err != nil {
		return err
	}
	price, err := s.market.CurrentPrice(assetID)
	if err != nil {
		return err
	}
	return sim.SimulateSell(assetID, quantity, price)
}

// Performance reports a simulation's return percent against its initial
// balance at current market prices.
func (s *SimulatorService) Performance(simID uuid.UUID) (decimal.Decimal, error) {
	sim, err := s.Get(simID)
	if err != nil {
		return decimal.Zero, err
	}
	return sim.Performance(s.market), nil
}

// Stop ends a simulation; it remains readable but rejects further trades.
func (s *SimulatorService) Stop(simID uuid.UUID) error {
	sim, err := s.Get(simID)
	if err != nil {
		return err
	}
	sim.Stop()
	return nil
}
