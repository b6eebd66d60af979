package domain

import "errors"

// Failure modes of ledger and market operations. Callers branch on these with
// errors.Is; none of them is fatal to the process.
var (
	// ErrInvalidAmount signals a non-positive monetary amount or quantity.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds signals that the wallet balance does not cover the
	// requested withdrawal or purchase.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientPosition signals that the wallet does not hold enough of
	// the asset to sell or transfer.
	ErrInsufficientPosition = errors.New("insufficient position")

	// ErrNotFound signals an unknown asset, wallet, or other reference. It is
	// distinct from a legitimate zero value.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput signals a malformed request, such as an empty price
	// batch or a status transition from a terminal state.
	ErrInvalidInput = errors.New("invalid input")
)
