package http

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"cryptodesk/internal/delivery/http/dto"
	"cryptodesk/internal/domain"
	"cryptodesk/internal/service"
)

// WalletHandler handles wallet and transaction requests
type WalletHandler struct {
	ledger     *service.LedgerService
	walletRepo domain.WalletRepository
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(ledger *service.LedgerService, walletRepo domain.WalletRepository) *WalletHandler {
	return &WalletHandler{
		ledger:     ledger,
		walletRepo: walletRepo,
	}
}

type walletResponse struct {
	ID        uuid.UUID                     `json:"id"`
	UserID    uuid.UUID                     `json:"user_id"`
	Kind      string                        `json:"kind"`
	CreatedAt time.Time                     `json:"created_at"`
	Balance   decimal.Decimal               `json:"balance"`
	Positions map[uuid.UUID]decimal.Decimal `json:"positions"`
}

func toWalletResponse(w *domain.Wallet) walletResponse {
	return walletResponse{
		ID:        w.ID,
		UserID:    w.UserID,
		Kind:      w.Kind,
		CreatedAt: w.CreatedAt,
		Balance:   w.Balance(),
		Positions: w.Positions(),
	}
}

// Create creates a new wallet
// POST /api/wallets
func (h *WalletHandler) Create(c echo.Context) error {
	var req dto.CreateWalletRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request body")
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return BadRequestResponse(c, "Invalid user_id")
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	wallet, err := h.ledger.CreateWallet(ctx, userID, req.Kind)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return CreatedResponse(c, toWalletResponse(wallet))
}

// Get returns a wallet with its positions
// GET /api/wallets/:id
func (h *WalletHandler) Get(c echo.Context) error {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid wallet id")
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	wallet, err := h.ledger.GetWallet(ctx, walletID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, toWalletResponse(wallet))
}

// ListByUser returns all wallets owned by a user
// GET /api/users/:id/wallets
func (h *WalletHandler) ListByUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid user id")
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	wallets, err := h.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	out := make([]walletResponse, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, toWalletResponse(w))
	}
	return SuccessResponse(c, out)
}

// Value returns the wallet's balance plus market value of its positions
// GET /api/wallets/:id/value
func (h *WalletHandler) Value(c echo.Context) error {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid wallet id")
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	value, err := h.ledger.TotalValue(ctx, walletID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, map[string]interface{}{
		"wallet_id":   walletID,
		"total_value": value,
	})
}

// Deposit adds cash to a wallet
// POST /api/wallets/:id/deposit
func (h *WalletHandler) Deposit(c echo.Context) error {
	return h.cashOp(c, h.ledger.Deposit)
}

// Withdraw removes cash from a wallet
// POST /api/wallets/:id/withdraw
func (h *WalletHandler) Withdraw(c echo.Context) error {
	return h.cashOp(c, h.ledger.Withdraw)
}

func (h *WalletHandler) cashOp(c echo.Context, op func(context.Context, uuid.UUID, decimal.Decimal) (decimal.Decimal, error)) error {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid wallet id")
	}
	var req dto.AmountRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request body")
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	balance, err := op(ctx, walletID, req.Amount)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, map[string]interface{}{
		"wallet_id": walletID,
		"balance":   balance,
	})
}

// Buy purchases an asset into a wallet
// POST /api/wallets/:id/buy
func (h *WalletHandler) Buy(c echo.Context) error {
	return h.tradeOp(c, h.ledger.Buy)
}

// Sell sells an asset out of a wallet
// POST /api/wallets/:id/sell
func (h *WalletHandler) Sell(c echo.Context) error {
	return h.tradeOp(c, h.ledger.Sell)
}

func (h *WalletHandler) tradeOp(c echo.Context, op func(context.Context, uuid.UUID, uuid.UUID, decimal.Decimal, decimal.Decimal) (*domain.Transaction, error)) error {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid wallet id")
	}
	var req dto.TradeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request body")
	}
	assetID, err := uuid.Parse(req.AssetID)
	if err != nil {
		return BadRequestResponse(c, "Invalid asset_id")
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	tx, err := op(ctx, walletID, assetID, req.Quantity, req.UnitPrice)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return CreatedResponse(c, tx)
}

// Transfer moves a position from this wallet to another
// POST /api/wallets/:id/transfer
func (h *WalletHandler) Transfer(c echo.Context) error {
	sourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid wallet id")
	}
	var req dto.TransferRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request body")
	}
	destID, err := uuid.Parse(req.DestinationWalletID)
	if err != nil {
		return BadRequestResponse(c, "Invalid destination_wallet_id")
	}
	assetID, err := uuid.Parse(req.AssetID)
	if err != nil {
		return BadRequestResponse(c, "Invalid asset_id")
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	out, in, err := h.ledger.Transfer(ctx, sourceID, destID, assetID, req.Quantity)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return CreatedResponse(c, map[string]interface{}{
		"transfer_out": out,
		"transfer_in":  in,
	})
}

// Transactions lists a wallet's transactions, newest first
// GET /api/wallets/:id/transactions
func (h *WalletHandler) Transactions(c echo.Context) error {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid wallet id")
	}
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	txs, err := h.ledger.Transactions(ctx, walletID, limit)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, txs)
}

// ConfirmTransaction concludes a pending transaction
// POST /api/transactions/:id/confirm
func (h *WalletHandler) ConfirmTransaction(c echo.Context) error {
	return h.transitionOp(c, h.ledger.ConfirmTransaction, domain.TxConcluded)
}

// CancelTransaction cancels a pending transaction
// POST /api/transactions/:id/cancel
func (h *WalletHandler) CancelTransaction(c echo.Context) error {
	return h.transitionOp(c, h.ledger.CancelTransaction, domain.TxCancelled)
}

func (h *WalletHandler) transitionOp(c echo.Context, op func(context.Context, uuid.UUID) error, status string) error {
	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid transaction id")
	}

	ctx, cancel := handlerContext(c)
	defer cancel()

	if err := op(ctx, txID); err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, map[string]interface{}{
		"transaction_id": txID,
		"status":         status,
	})
}

func handlerContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
