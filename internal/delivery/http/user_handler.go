package http

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"cryptodesk/internal/delivery/http/dto"
	"cryptodesk/internal/domain"
)

// UserHandler handles user account requests
type UserHandler struct {
	userRepo  domain.UserRepository
	alertRepo domain.AlertRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo domain.UserRepository, alertRepo domain.AlertRepository) *UserHandler {
	return &UserHandler{
		userRepo:  userRepo,
		alertRepo: alertRepo,
	}
}

// Create registers a new user
// POST /api/users
func (h *UserHandler) Create(c echo.Context) error {
	var req dto.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request body")
	}
	if req.Name == "" || req.Email == "" {
		return BadRequestResponse(c, "name and email are required")
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	if existing, err := h.userRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return BadRequestResponse(c, "Email already registered")
	}

	user := domain.NewUser(req.Name, req.Email)
	if err := h.userRepo.Create(ctx, user); err != nil {
		return InternalServerErrorResponse(c, "Failed to create user", err)
	}
	return CreatedResponse(c, user)
}

// Get returns a user by id
// GET /api/users/:id
func (h *UserHandler) Get(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid user id")
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, user)
}

// List returns all users
// GET /api/users
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := handlerContext(c)
	defer cancel()

	users, err := h.userRepo.GetAll(ctx)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to list users", err)
	}
	return SuccessResponse(c, users)
}

// Alerts returns a user's alerts, newest first
// GET /api/users/:id/alerts
func (h *UserHandler) Alerts(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid user id")
	}
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	alerts, err := h.alertRepo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to list alerts", err)
	}
	return SuccessResponse(c, alerts)
}
