package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptodesk/internal/domain"
)

type stubPriceSource struct {
	prices map[uuid.UUID]decimal.Decimal
}

func (s *stubPriceSource) CurrentPrice(assetID uuid.UUID) (decimal.Decimal, error) {
	price, ok := s.prices[assetID]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	return price, nil
}

func (s *stubPriceSource) Variation(assetID uuid.UUID, hours int) decimal.Decimal {
	return decimal.Zero
}

func TestSimulatorServiceLifecycle(t *testing.T) {
	assetID := uuid.New()
	market := &stubPriceSource{prices: map[uuid.UUID]decimal.Decimal{assetID: decimal.NewFromInt(100)}}
	svc := NewSimulatorService(market)

	sim, err := svc.Start(uuid.New(), decimal.NewFromInt(1000))
	require.NoError(t, err)

	require.NoError(t, svc.Buy(sim.ID, assetID, decimal.NewFromInt(2)))
	assert.True(t, sim.Balance().Equal(decimal.NewFromInt(800)))

	// Price doubles; performance reflects the live price.
	market.prices[assetID] = decimal.NewFromInt(200)
	perf, err := svc.Performance(sim.ID)
	require.NoError(t, err)
	assert.True(t, perf.Equal(decimal.NewFromInt(20)))

	require.NoError(t, svc.Sell(sim.ID, assetID, decimal.NewFromInt(2)))
	assert.True(t, sim.Balance().Equal(decimal.NewFromInt(1200)))

	require.NoError(t, svc.Stop(sim.ID))
	assert.ErrorIs(t, svc.Buy(sim.ID, assetID, decimal.NewFromInt(1)), domain.ErrInvalidInput)

	// Stopped simulations stay readable.
	got, err := svc.Get(sim.ID)
	require.NoError(t, err)
	assert.False(t, got.Active())
}

func TestSimulatorServiceGuards(t *testing.T) {
	svc := NewSimulatorService(&stubPriceSource{})

	_, err := svc.Start(uuid.New(), decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	// A zero balance selects the default.
	defaulted, err := svc.Start(uuid.New(), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, defaulted.Balance().Equal(DefaultInitialBalance))

	_, err = svc.Get(uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sim, err := svc.Start(uuid.New(), decimal.NewFromInt(100))
	require.NoError(t, err)

	// Trading an unpriced asset fails before touching the simulation.
	err = svc.Buy(sim.ID, uuid.New(), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, sim.Balance().Equal(decimal.NewFromInt(100)))
}
