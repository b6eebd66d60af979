package domain

import (
	"bytes"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceSource answers price and variation queries for the ledger and the
// strategy evaluator. The market package provides the live implementation.
type PriceSource interface {
	// CurrentPrice returns the current price of an asset, or ErrNotFound if
	// the asset has never been priced.
	CurrentPrice(assetID uuid.UUID) (decimal.Decimal, error)

	// Variation returns the percent price change over the given number of
	// hours. No data yields zero, not an error.
	Variation(assetID uuid.UUID, hours int) decimal.Decimal
}

// WalletKind constants
const (
	HotWallet  = "HOT"
	ColdWallet = "COLD"
)

// Wallet is the ledger unit: cash balance, per-asset positions, and an
// append-only transaction log. All mutating operations serialize on the
// wallet's own mutex and are atomic: on error no partial change is visible.
//
// Positions hold strictly positive quantities; an entry that reaches zero is
// removed rather than kept at zero.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`

	mu           sync.Mutex
	balance      decimal.Decimal
	positions    map[uuid.UUID]decimal.Decimal
	transactions []*Transaction
}

// NewWallet creates an empty wallet owned by the given user.
func NewWallet(userID uuid.UUID, kind string) *Wallet {
	return &Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		CreatedAt: time.Now(),
		balance:   decimal.Zero,
		positions: make(map[uuid.UUID]decimal.Decimal),
	}
}

// RestoreWallet rebuilds a wallet from persisted state.
func RestoreWallet(id, userID uuid.UUID, kind string, createdAt time.Time, balance decimal.Decimal, positions map[uuid.UUID]decimal.Decimal) *Wallet {
	if positions == nil {
		positions = make(map[uuid.UUID]decimal.Decimal)
	}
	return &Wallet{
		ID:        id,
		UserID:    userID,
		Kind:      kind,
		CreatedAt: createdAt,
		balance:   balance,
		positions: positions,
	}
}

// Balance returns the current cash balance.
func (w *Wallet) Balance() decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// Position returns the held quantity of an asset, zero if absent.
func (w *Wallet) Position(assetID uuid.UUID) decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.positions[assetID]
}

// Positions returns a copy of the position map.
func (w *Wallet) Positions() map[uuid.UUID]decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[uuid.UUID]decimal.Decimal, len(w.positions))
	for id, qty := range w.positions {
		out[id] = qty
	}
	return out
}

// Transactions returns a copy of the transaction log in append order.
func (w *Wallet) Transactions() []*Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Transaction, len(w.transactions))
	copy(out, w.transactions)
	return out
}

// Deposit adds cash to the wallet and returns the new balance. Deposits do
// not create transaction entries; only asset movements are logged.
func (w *Wallet) Deposit(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance = w.balance.Add(amount)
	return w.balance, nil
}

// Withdraw removes cash from the wallet and returns the new balance.
func (w *Wallet) Withdraw(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if amount.GreaterThan(w.balance) {
		return decimal.Zero, ErrInsufficientFunds
	}
	w.balance = w.balance.Sub(amount)
	return w.balance, nil
}

// Buy debits quantity*unitPrice from the balance, credits the position, and
// appends a pending BUY transaction.
func (w *Wallet) Buy(asset *Asset, quantity, unitPrice decimal.Decimal) (*Transaction, error) {
	if quantity.LessThanOrEqual(decimal.Zero) || unitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	cost := quantity.Mul(unitPrice)
	if cost.GreaterThan(w.balance) {
		return nil, ErrInsufficientFunds
	}

	w.balance = w.balance.Sub(cost)
	w.positions[asset.ID] = w.positions[asset.ID].Add(quantity)

	tx := newTransaction(w.UserID, w.ID, asset.ID, TxBuy, quantity, unitPrice)
	w.transactions = append(w.transactions, tx)
	return tx, nil
}

// Sell credits quantity*unitPrice to the balance, debits the position, and
// appends a pending SELL transaction. A position that reaches zero is removed.
func (w *Wallet) Sell(asset *Asset, quantity, unitPrice decimal.Decimal) (*Transaction, error) {
	if quantity.LessThanOrEqual(decimal.Zero) || unitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	held := w.positions[asset.ID]
	if held.LessThan(quantity) {
		return nil, ErrInsufficientPosition
	}

	w.balance = w.balance.Add(quantity.Mul(unitPrice))
	w.setPosition(asset.ID, held.Sub(quantity))

	tx := newTransaction(w.UserID, w.ID, asset.ID, TxSell, quantity, unitPrice)
	w.transactions = append(w.transactions, tx)
	return tx, nil
}

// Transfer moves a quantity of an asset to another wallet. It appends a
// TRANSFER_OUT transaction on the source log and a TRANSFER_IN on the
// destination log, using the current market price when available so the
// entries carry a meaningful valuation. Both wallets observe the move
// atomically: locks are taken in wallet-id order to keep two concurrent
// opposing transfers from deadlocking.
func (w *Wallet) Transfer(asset *Asset, quantity decimal.Decimal, dest *Wallet, prices PriceSource) (*Transaction, *Transaction, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, nil, ErrInvalidAmount
	}
	if dest == nil || dest.ID == w.ID {
		return nil, nil, ErrInvalidInput
	}

	first, second := w, dest
	if bytes.Compare(dest.ID[:], w.ID[:]) < 0 {
		first, second = dest, w
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	held := w.positions[asset.ID]
	if held.LessThan(quantity) {
		return nil, nil, ErrInsufficientPosition
	}

	unitPrice := decimal.Zero
	if prices != nil {
		if p, err := prices.CurrentPrice(asset.ID); err == nil {
			unitPrice = p
		}
	}

	w.setPosition(asset.ID, held.Sub(quantity))
	dest.positions[asset.ID] = dest.positions[asset.ID].Add(quantity)

	out := newTransaction(w.UserID, w.ID, asset.ID, TxTransferOut, quantity, unitPrice)
	in := newTransaction(dest.UserID, dest.ID, asset.ID, TxTransferIn, quantity, unitPrice)
	w.transactions = append(w.transactions, out)
	dest.transactions = append(dest.transactions, in)
	return out, in, nil
}

// TotalValue reports balance plus the market value of every position. A
// position whose asset has no market price contributes zero; reporting stays
// tolerant of gaps in the feed. Never mutates state.
func (w *Wallet) TotalValue(prices PriceSource) decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()

	total := w.balance
	for assetID, qty := range w.positions {
		price, err := prices.CurrentPrice(assetID)
		if err != nil {
			continue
		}
		total = total.Add(qty.Mul(price))
	}
	return total
}

// setPosition writes a quantity, dropping the key at zero or below.
// Caller must hold w.mu.
func (w *Wallet) setPosition(assetID uuid.UUID, qty decimal.Decimal) {
	if qty.LessThanOrEqual(decimal.Zero) {
		delete(w.positions, assetID)
		return
	}
	w.positions[assetID] = qty
}
