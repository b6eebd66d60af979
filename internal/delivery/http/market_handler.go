package http

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"cryptodesk/internal/delivery/http/dto"
	"cryptodesk/internal/domain"
	"cryptodesk/internal/market"
)

// MarketHandler handles asset registry and market state requests
type MarketHandler struct {
	assetRepo domain.AssetRepository
	market    *market.State
	threshold decimal.Decimal
}

// NewMarketHandler creates a new MarketHandler. threshold is the default
// sharp-move cutoff in percent for the movers endpoint.
func NewMarketHandler(assetRepo domain.AssetRepository, state *market.State, threshold decimal.Decimal) *MarketHandler {
	return &MarketHandler{
		assetRepo: assetRepo,
		market:    state,
		threshold: threshold,
	}
}

// CreateAsset registers a new tradable asset
// POST /api/assets
func (h *MarketHandler) CreateAsset(c echo.Context) error {
	var req dto.CreateAssetRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request body")
	}
	if req.Symbol == "" || req.Name == "" {
		return BadRequestResponse(c, "symbol and name are required")
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	asset := domain.NewAsset(req.Symbol, req.Name, req.Price)
	if err := h.assetRepo.Create(ctx, asset); err != nil {
		return InternalServerErrorResponse(c, "Failed to create asset", err)
	}
	if req.Price.IsPositive() {
		// Seed the live market state so the asset is immediately tradable.
		_ = h.market.UpdatePrices(map[uuid.UUID]decimal.Decimal{asset.ID: req.Price})
	}
	return CreatedResponse(c, asset)
}

// ListAssets returns every registered asset
// GET /api/assets
func (h *MarketHandler) ListAssets(c echo.Context) error {
	ctx, cancel := handlerContext(c)
	defer cancel()

	assets, err := h.assetRepo.GetAll(ctx)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to list assets", err)
	}
	return SuccessResponse(c, assets)
}

// Prices returns the current in-memory price table
// GET /api/market/prices
func (h *MarketHandler) Prices(c echo.Context) error {
	return SuccessResponse(c, map[string]interface{}{
		"prices":       h.market.Prices(),
		"last_updated": h.market.LastUpdated(),
	})
}

// UpdatePrices manually pushes a batch of prices, keyed by asset symbol
// POST /api/market/prices
func (h *MarketHandler) UpdatePrices(c echo.Context) error {
	var req dto.UpdatePricesRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request body")
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	updates := make(map[uuid.UUID]decimal.Decimal, len(req.Prices))
	for symbol, price := range req.Prices {
		asset, err := h.assetRepo.GetBySymbol(ctx, symbol)
		if err != nil {
			return BadRequestResponse(c, "Unknown asset symbol: "+symbol)
		}
		updates[asset.ID] = price
	}
	if err := h.market.UpdatePrices(updates); err != nil {
		return DomainErrorResponse(c, err)
	}

	for symbol, price := range req.Prices {
		asset, err := h.assetRepo.GetBySymbol(ctx, symbol)
		if err != nil {
			continue
		}
		if err := asset.UpdatePrice(price); err != nil {
			return DomainErrorResponse(c, err)
		}
		if err := h.assetRepo.UpdatePrice(ctx, asset); err != nil {
			return InternalServerErrorResponse(c, "Failed to persist price", err)
		}
	}
	return SuccessResponse(c, map[string]interface{}{
		"updated":      len(updates),
		"last_updated": h.market.LastUpdated(),
	})
}

// Price returns one asset's current feed price
// GET /api/market/:id/price
func (h *MarketHandler) Price(c echo.Context) error {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid asset id")
	}
	price, err := h.market.CurrentPrice(assetID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, map[string]interface{}{
		"asset_id": assetID,
		"price":    price,
	})
}

// Variation reports an asset's percent price change over a time window
// GET /api/market/:id/variation?hours=24
func (h *MarketHandler) Variation(c echo.Context) error {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid asset id")
	}
	hours := 24
	if raw := c.QueryParam("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return BadRequestResponse(c, "Invalid hours parameter")
		}
		hours = n
	}
	return SuccessResponse(c, map[string]interface{}{
		"asset_id":  assetID,
		"hours":     hours,
		"variation": h.market.Variation(assetID, hours),
	})
}

// Movers returns assets whose 24h variation exceeds the threshold
// GET /api/market/movers?threshold=10
func (h *MarketHandler) Movers(c echo.Context) error {
	threshold := h.threshold
	if raw := c.QueryParam("threshold"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || !parsed.IsPositive() {
			return BadRequestResponse(c, "Invalid threshold parameter")
		}
		threshold = parsed
	}
	return SuccessResponse(c, map[string]interface{}{
		"threshold": threshold,
		"movers":    h.market.DetectSharpMoves(threshold),
	})
}
