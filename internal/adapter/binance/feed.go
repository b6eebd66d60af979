// Package binance adapts the Binance spot ticker API into the market-data
// feed contract: it periodically pulls current prices for every registered
// asset and pushes them into the market state.
package binance

import (
	"context"
	"fmt"
	"strings"

	"github.com/adshao/go-binance/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptodesk/internal/domain"
	"cryptodesk/internal/logger"
	"cryptodesk/internal/market"
)

// PriceFeed polls ticker prices and feeds the market state.
type PriceFeed struct {
	client    *binance.Client
	assetRepo domain.AssetRepository
	market    *market.State
}

// NewPriceFeed creates a feed against the public Binance API. No credentials
// are needed for ticker data.
func NewPriceFeed(assetRepo domain.AssetRepository, marketState *market.State) *PriceFeed {
	return &PriceFeed{
		client:    binance.NewClient("", ""),
		assetRepo: assetRepo,
		market:    marketState,
	}
}

// Poll fetches current ticker prices for all registered assets and applies
// them as one atomic market update. Assets whose symbol Binance does not
// quote are skipped. The asset registry's current price and day variation
// are refreshed alongside the market state.
func (f *PriceFeed) Poll(ctx context.Context) error {
	assets, err := f.assetRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load assets: %w", err)
	}
	if len(assets) == 0 {
		return nil
	}

	bySymbol := make(map[string]*domain.Asset, len(assets))
	for _, asset := range assets {
		bySymbol[strings.ToUpper(asset.Symbol)] = asset
	}

	tickers, err := f.client.NewListPricesService().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch ticker prices: %w", err)
	}

	updates := make(map[uuid.UUID]decimal.Decimal)
	for _, ticker := range tickers {
		asset, ok := bySymbol[ticker.Symbol]
		if !ok {
			continue
		}
		price, err := decimal.NewFromString(ticker.Price)
		if err != nil || price.LessThanOrEqual(decimal.Zero) {
			logger.Warn("feed: unusable ticker price", "symbol", ticker.Symbol, "price", ticker.Price)
			continue
		}
		updates[asset.ID] = price
	}
	if len(updates) == 0 {
		logger.Warn("feed: no registered asset was quoted", "assets", len(assets))
		return nil
	}

	if err := f.market.UpdatePrices(updates); err != nil {
		return fmt.Errorf("failed to update market state: %w", err)
	}

	for assetID, price := range updates {
		asset := assetByID(assets, assetID)
		if asset == nil {
			continue
		}
		if err := asset.UpdatePrice(price); err != nil {
			continue
		}
		if err := f.assetRepo.UpdatePrice(ctx, asset); err != nil {
			logger.Warn("feed: failed to persist asset price", "symbol", asset.Symbol, "error", err)
		}
	}

	logger.Debug("feed: market updated", "assets", len(updates))
	return nil
}

func assetByID(assets []*domain.Asset, id uuid.UUID) *domain.Asset {
	for _, a := range assets {
		if a.ID == id {
			return a
		}
	}
	return nil
}
