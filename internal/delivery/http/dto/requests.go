package dto

import "github.com/shopspring/decimal"

// CreateUserRequest creates a new user account.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// CreateAssetRequest registers a new tradable asset.
type CreateAssetRequest struct {
	Symbol string          `json:"symbol" validate:"required"`
	Name   string          `json:"name" validate:"required"`
	Price  decimal.Decimal `json:"price"`
}

// CreateWalletRequest creates a wallet for a user.
type CreateWalletRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Kind   string `json:"kind" validate:"required"`
}

// AmountRequest carries a single monetary amount (deposit, withdraw).
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TradeRequest carries an asset trade (buy, sell). UnitPrice is optional;
// when omitted the trade executes at the current feed price.
type TradeRequest struct {
	AssetID   string          `json:"asset_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// TransferRequest moves a position between two wallets.
type TransferRequest struct {
	DestinationWalletID string          `json:"destination_wallet_id" validate:"required"`
	AssetID             string          `json:"asset_id" validate:"required"`
	Quantity            decimal.Decimal `json:"quantity"`
}

// CreateStrategyRequest registers an automation rule.
type CreateStrategyRequest struct {
	UserID         string          `json:"user_id" validate:"required"`
	WalletID       string          `json:"wallet_id" validate:"required"`
	AssetID        string          `json:"asset_id" validate:"required"`
	Condition      string          `json:"condition" validate:"required"`
	ReferenceValue decimal.Decimal `json:"reference_value"`
	Action         string          `json:"action" validate:"required"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// UpdatePricesRequest manually pushes a batch of prices into the market state.
type UpdatePricesRequest struct {
	Prices map[string]decimal.Decimal `json:"prices" validate:"required"`
}

// StartSimulationRequest opens a paper-trading session.
type StartSimulationRequest struct {
	UserID         string          `json:"user_id" validate:"required"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}
