package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyRuleEvaluate(t *testing.T) {
	assetID := uuid.New()

	tests := []struct {
		name      string
		condition string
		reference string
		price     string
		variation string
		want      bool
	}{
		{"price above met", CondPriceAbove, "100", "110", "0", true},
		{"price above at boundary", CondPriceAbove, "100", "100", "0", true},
		{"price above not met", CondPriceAbove, "100", "90", "0", false},
		{"price below met", CondPriceBelow, "100", "90", "0", true},
		{"price below not met", CondPriceBelow, "100", "110", "0", false},
		{"variation above met", CondVariationAbove, "5", "100", "6", true},
		{"variation above not met", CondVariationAbove, "5", "100", "4.9", false},
		{"variation below met", CondVariationBelow, "-5", "100", "-6", true},
		{"variation below not met", CondVariationBelow, "-5", "100", "-2", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rule := NewStrategyRule(uuid.New(), assetID, uuid.New(), tc.condition, ActionBuy, dec(tc.reference), dec("1"))
			market := &stubPrices{
				prices:     map[uuid.UUID]decimal.Decimal{assetID: dec(tc.price)},
				variations: map[uuid.UUID]decimal.Decimal{assetID: dec(tc.variation)},
			}
			assert.Equal(t, tc.want, rule.Evaluate(market))
		})
	}
}

func TestStrategyRuleEvaluateFailsClosed(t *testing.T) {
	assetID := uuid.New()
	priced := &stubPrices{prices: map[uuid.UUID]decimal.Decimal{assetID: dec("200")}}

	inactive := NewStrategyRule(uuid.New(), assetID, uuid.New(), CondPriceAbove, ActionBuy, dec("100"), dec("1"))
	inactive.SetActive(false)
	assert.False(t, inactive.Evaluate(priced))

	unknown := NewStrategyRule(uuid.New(), assetID, uuid.New(), "PRICE_EQUALS", ActionBuy, dec("200"), dec("1"))
	assert.False(t, unknown.Evaluate(priced))

	unpriced := NewStrategyRule(uuid.New(), uuid.New(), uuid.New(), CondPriceAbove, ActionBuy, dec("100"), dec("1"))
	assert.False(t, unpriced.Evaluate(priced))
}

func TestStrategyRuleExecuteBuy(t *testing.T) {
	userID := uuid.New()
	wallet := NewWallet(userID, HotWallet)
	asset := NewAsset("BTC", "Bitcoin", dec("100"))
	_, err := wallet.Deposit(dec("1000"))
	require.NoError(t, err)

	rule := NewStrategyRule(userID, asset.ID, wallet.ID, CondPriceBelow, ActionBuy, dec("150"), dec("2"))
	market := &stubPrices{prices: map[uuid.UUID]decimal.Decimal{asset.ID: dec("120")}}

	require.True(t, rule.Evaluate(market))

	tx, executed := rule.Execute(wallet, asset, market)
	require.True(t, executed)
	require.NotNil(t, tx)
	assert.Equal(t, TxBuy, tx.Kind)
	assert.True(t, tx.UnitPrice.Equal(dec("120")))
	assert.True(t, wallet.Balance().Equal(dec("760")))
	assert.True(t, wallet.Position(asset.ID).Equal(dec("2")))
	require.NotNil(t, rule.LastExecutedAt)
}

func TestStrategyRuleExecuteNoOps(t *testing.T) {
	userID := uuid.New()
	wallet := NewWallet(userID, HotWallet)
	other := NewWallet(userID, HotWallet)
	asset := NewAsset("BTC", "Bitcoin", dec("100"))
	_, err := wallet.Deposit(dec("1000"))
	require.NoError(t, err)

	market := &stubPrices{prices: map[uuid.UUID]decimal.Decimal{asset.ID: dec("100")}}
	rule := NewStrategyRule(userID, asset.ID, wallet.ID, CondPriceAbove, ActionBuy, dec("50"), dec("1"))

	// Wrong wallet: silent no-op.
	tx, executed := rule.Execute(other, asset, market)
	assert.False(t, executed)
	assert.Nil(t, tx)
	assert.Nil(t, rule.LastExecutedAt)

	// Inactive: silent no-op.
	rule.SetActive(false)
	_, executed = rule.Execute(wallet, asset, market)
	assert.False(t, executed)
	rule.SetActive(true)

	// Unpriced asset: silent no-op.
	_, executed = rule.Execute(wallet, asset, &stubPrices{})
	assert.False(t, executed)

	// Failed trade is "not executed this cycle", not an error.
	sellRule := NewStrategyRule(userID, asset.ID, wallet.ID, CondPriceAbove, ActionSell, dec("50"), dec("99"))
	_, executed = sellRule.Execute(wallet, asset, market)
	assert.False(t, executed)
	assert.Nil(t, sellRule.LastExecutedAt)
	assert.True(t, wallet.Balance().Equal(dec("1000")))
}

func TestValidConditionAndAction(t *testing.T) {
	assert.True(t, ValidCondition(CondPriceAbove))
	assert.True(t, ValidCondition(CondVariationBelow))
	assert.False(t, ValidCondition("PRICE_EQUALS"))

	assert.True(t, ValidAction(ActionBuy))
	assert.True(t, ValidAction(ActionSell))
	assert.False(t, ValidAction("HOLD"))
}
