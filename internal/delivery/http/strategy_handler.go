package http

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"cryptodesk/internal/delivery/http/dto"
	"cryptodesk/internal/domain"
)

// StrategyHandler handles automation rule requests
type StrategyHandler struct {
	strategyRepo domain.StrategyRepository
	walletRepo   domain.WalletRepository
	assetRepo    domain.AssetRepository
}

// NewStrategyHandler creates a new StrategyHandler
func NewStrategyHandler(strategyRepo domain.StrategyRepository, walletRepo domain.WalletRepository, assetRepo domain.AssetRepository) *StrategyHandler {
	return &StrategyHandler{
		strategyRepo: strategyRepo,
		walletRepo:   walletRepo,
		assetRepo:    assetRepo,
	}
}

// Create registers a new strategy rule
// POST /api/strategies
func (h *StrategyHandler) Create(c echo.Context) error {
	var req dto.CreateStrategyRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request body")
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return BadRequestResponse(c, "Invalid user_id")
	}
	walletID, err := uuid.Parse(req.WalletID)
	if err != nil {
		return BadRequestResponse(c, "Invalid wallet_id")
	}
	assetID, err := uuid.Parse(req.AssetID)
	if err != nil {
		return BadRequestResponse(c, "Invalid asset_id")
	}
	if !domain.ValidCondition(req.Condition) {
		return BadRequestResponse(c, "Unknown condition: "+req.Condition)
	}
	if !domain.ValidAction(req.Action) {
		return BadRequestResponse(c, "Unknown action: "+req.Action)
	}
	if !req.Quantity.IsPositive() {
		return BadRequestResponse(c, "quantity must be positive")
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	// Fail early on dangling references; the engine would otherwise skip
	// the rule silently on every pass.
	wallet, err := h.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	if wallet.UserID != userID {
		return BadRequestResponse(c, "wallet does not belong to user")
	}
	if _, err := h.assetRepo.GetByID(ctx, assetID); err != nil {
		return DomainErrorResponse(c, err)
	}

	rule := domain.NewStrategyRule(userID, assetID, walletID, req.Condition, req.Action, req.ReferenceValue, req.Quantity)
	if err := h.strategyRepo.Save(ctx, rule); err != nil {
		return InternalServerErrorResponse(c, "Failed to save strategy", err)
	}
	return CreatedResponse(c, rule)
}

// ListByUser returns all rules owned by a user
// GET /api/users/:id/strategies
func (h *StrategyHandler) ListByUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid user id")
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	rules, err := h.strategyRepo.GetByUserID(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to list strategies", err)
	}
	return SuccessResponse(c, rules)
}

// Activate re-enables a rule
// POST /api/strategies/:id/activate
func (h *StrategyHandler) Activate(c echo.Context) error {
	return h.setActive(c, true)
}

// Deactivate disables a rule without deleting it
// POST /api/strategies/:id/deactivate
func (h *StrategyHandler) Deactivate(c echo.Context) error {
	return h.setActive(c, false)
}

func (h *StrategyHandler) setActive(c echo.Context, active bool) error {
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid strategy id")
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	if err := h.strategyRepo.SetActive(ctx, ruleID, active); err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, map[string]interface{}{
		"strategy_id": ruleID,
		"active":      active,
	})
}
