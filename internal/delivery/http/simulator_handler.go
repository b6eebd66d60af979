package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"cryptodesk/internal/delivery/http/dto"
	"cryptodesk/internal/domain"
	"cryptodesk/internal/service"
)

// SimulatorHandler handles paper-trading requests
type SimulatorHandler struct {
	simulators *service.SimulatorService
}

// NewSimulatorHandler creates a new SimulatorHandler
func NewSimulatorHandler(simulators *service.SimulatorService) *SimulatorHandler {
	return &SimulatorHandler{simulators: simulators}
}

type simulatorResponse struct {
	ID             uuid.UUID            `json:"id"`
	UserID         uuid.UUID            `json:"user_id"`
	StartedAt      time.Time            `json:"started_at"`
	InitialBalance decimal.Decimal      `json:"initial_balance"`
	Balance        decimal.Decimal      `json:"balance"`
	Active         bool                 `json:"active"`
	History        []domain.SimulatedOp `json:"history"`
}

func toSimulatorResponse(sim *domain.Simulator) simulatorResponse {
	return simulatorResponse{
		ID:             sim.ID,
		UserID:         sim.UserID,
		StartedAt:      sim.StartedAt,
		InitialBalance: sim.InitialBalance,
		Balance:        sim.Balance(),
		Active:         sim.Active(),
		History:        sim.History(),
	}
}

// Start opens a new paper-trading session
// POST /api/simulations
func (h *SimulatorHandler) Start(c echo.Context) error {
	var req dto.StartSimulationRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request body")
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return BadRequestResponse(c, "Invalid user_id")
	}

	sim, err := h.simulators.Start(userID, req.InitialBalance)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return CreatedResponse(c, toSimulatorResponse(sim))
}

// Get returns a simulation's current state
// GET /api/simulations/:id
func (h *SimulatorHandler) Get(c echo.Context) error {
	simID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid simulation id")
	}
	sim, err := h.simulators.Get(simID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, toSimulatorResponse(sim))
}

// Buy performs a virtual purchase at the live price
// POST /api/simulations/:id/buy
func (h *SimulatorHandler) Buy(c echo.Context) error {
	return h.tradeOp(c, h.simulators.Buy)
}

// Sell performs a virtual sale at the live price
// POST /api/simulations/:id/sell
func (h *SimulatorHandler) Sell(c echo.Context) error {
	return h.tradeOp(c, h.simulators.Sell)
}

func (h *SimulatorHandler) tradeOp(c echo.Context, op func(uuid.UUID, uuid.UUID, decimal.Decimal) error) error {
	simID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid simulation id")
	}
	var req dto.TradeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request body")
	}
	assetID, err := uuid.Parse(req.AssetID)
	if err != nil {
		return BadRequestResponse(c, "Invalid asset_id")
	}

	if err := op(simID, assetID, req.Quantity); err != nil {
		return DomainErrorResponse(c, err)
	}
	sim, err := h.simulators.Get(simID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, toSimulatorResponse(sim))
}

// Performance reports return percent against the initial balance
// GET /api/simulations/:id/performance
func (h *SimulatorHandler) Performance(c echo.Context) error {
	simID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid simulation id")
	}
	perf, err := h.simulators.Performance(simID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, map[string]interface{}{
		"simulation_id":       simID,
		"performance_percent": perf,
	})
}

// Stop ends a simulation; it stays readable but rejects further trades
// POST /api/simulations/:id/stop
func (h *SimulatorHandler) Stop(c echo.Context) error {
	simID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid simulation id")
	}
	if err := h.simulators.Stop(simID); err != nil {
		return DomainErrorResponse(c, err)
	}
	sim, err := h.simulators.Get(simID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, toSimulatorResponse(sim))
}
