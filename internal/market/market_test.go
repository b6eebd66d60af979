package market

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptodesk/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// stateAt creates a State whose clock is controlled by the test.
func stateAt(historyLimit int, at time.Time) (*State, *time.Time) {
	clock := at
	s := NewState(historyLimit)
	s.now = func() time.Time { return clock }
	s.updatedAt = at
	return s, &clock
}

func TestUpdatePricesRejectsEmpty(t *testing.T) {
	s := NewState(0)
	assert.ErrorIs(t, s.UpdatePrices(nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.UpdatePrices(map[uuid.UUID]decimal.Decimal{}), domain.ErrInvalidInput)
}

func TestCurrentPrice(t *testing.T) {
	s := NewState(0)
	assetID := uuid.New()

	_, err := s.CurrentPrice(assetID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.UpdatePrices(map[uuid.UUID]decimal.Decimal{assetID: dec("42")}))
	price, err := s.CurrentPrice(assetID)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("42")))
}

func TestUpdatePricesMerges(t *testing.T) {
	s := NewState(0)
	a, b := uuid.New(), uuid.New()

	require.NoError(t, s.UpdatePrices(map[uuid.UUID]decimal.Decimal{a: dec("10"), b: dec("20")}))
	require.NoError(t, s.UpdatePrices(map[uuid.UUID]decimal.Decimal{a: dec("11")}))

	prices := s.Prices()
	assert.True(t, prices[a].Equal(dec("11")))
	assert.True(t, prices[b].Equal(dec("20")), "an update must merge, not replace, the price map")
}

func TestVariationWindows(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, clock := stateAt(0, now.Add(-48*time.Hour))
	assetID := uuid.New()

	// Priced 100 at T-48h, 110 at T-24h, 121 now.
	require.NoError(t, s.UpdatePrices(map[uuid.UUID]decimal.Decimal{assetID: dec("100")}))
	*clock = now.Add(-24 * time.Hour)
	require.NoError(t, s.UpdatePrices(map[uuid.UUID]decimal.Decimal{assetID: dec("110")}))
	*clock = now
	require.NoError(t, s.UpdatePrices(map[uuid.UUID]decimal.Decimal{assetID: dec("121")}))

	assert.True(t, s.Variation(assetID, 24).Equal(dec("10")), "24h window compares against the 110 snapshot")
	assert.True(t, s.Variation(assetID, 48).Equal(dec("21")), "48h window compares against the 100 snapshot")
	// No snapshot is old enough for a 72h window.
	assert.True(t, s.Variation(assetID, 72).IsZero())
}

func TestVariationNoData(t *testing.T) {
	s := NewState(0)
	assetID := uuid.New()

	// Unpriced asset.
	assert.True(t, s.Variation(assetID, 24).IsZero())

	// Priced but with no usable history.
	require.NoError(t, s.UpdatePrices(map[uuid.UUID]decimal.Decimal{assetID: dec("100")}))
	assert.True(t, s.Variation(assetID, 24).IsZero())
}

func TestVariationZeroSnapshotPrice(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, clock := stateAt(0, now.Add(-48*time.Hour))
	assetID := uuid.New()

	require.NoError(t, s.UpdatePrices(map[uuid.UUID]decimal.Decimal{assetID: decimal.Zero}))
	*clock = now
	require.NoError(t, s.UpdatePrices(map[uuid.UUID]decimal.Decimal{assetID: dec("50")}))

	// Division against a zero snapshot yields zero, not a panic.
	assert.True(t, s.Variation(assetID, 24).IsZero())
}

func TestHistoryEviction(t *testing.T) {
	s := NewState(3)
	assetID := uuid.New()

	for i := 1; i <= 10; i++ {
		require.NoError(t, s.UpdatePrices(map[uuid.UUID]decimal.Decimal{assetID: decimal.NewFromInt(int64(i))}))
	}
	assert.Len(t, s.history, 3, "history must hold at most the configured limit")
	// The retained snapshots are the newest ones.
	assert.True(t, s.history[len(s.history)-1].prices[assetID].Equal(dec("9")))
}

func TestDetectSharpMoves(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, clock := stateAt(0, now.Add(-25*time.Hour))
	calm, spike, crash := uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, s.UpdatePrices(map[uuid.UUID]decimal.Decimal{
		calm:  dec("100"),
		spike: dec("100"),
		crash: dec("100"),
	}))
	*clock = now
	require.NoError(t, s.UpdatePrices(map[uuid.UUID]decimal.Decimal{
		calm:  dec("102"),
		spike: dec("115"),
		crash: dec("80"),
	}))

	moves := s.DetectSharpMoves(dec("10"))
	require.Len(t, moves, 2)
	assert.True(t, moves[spike].Equal(dec("15")))
	assert.True(t, moves[crash].Equal(dec("-20")), "sharp moves match on absolute variation")

	_, ok := moves[calm]
	assert.False(t, ok)
}
