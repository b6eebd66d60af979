package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind constants
const (
	TxBuy         = "BUY"
	TxSell        = "SELL"
	TxTransferIn  = "TRANSFER_IN"
	TxTransferOut = "TRANSFER_OUT"
)

// TransactionStatus constants. PENDING may move to CONCLUDED or CANCELLED
// exactly once; terminal states are immutable.
const (
	TxPending   = "PENDING"
	TxConcluded = "CONCLUDED"
	TxCancelled = "CANCELLED"
)

// Transaction records a single ledger mutation. It is immutable once created
// except for the status transition driven by Confirm and Cancel.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	WalletID  uuid.UUID       `json:"wallet_id"`
	AssetID   uuid.UUID       `json:"asset_id"`
	Kind      string          `json:"kind"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func newTransaction(userID, walletID, assetID uuid.UUID, kind string, qty, unitPrice decimal.Decimal) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		WalletID:  walletID,
		AssetID:   assetID,
		Kind:      kind,
		Quantity:  qty,
		UnitPrice: unitPrice,
		Total:     qty.Mul(unitPrice),
		Status:    TxPending,
		CreatedAt: time.Now(),
	}
}

// Confirm moves a pending transaction to CONCLUDED.
func (t *Transaction) Confirm() error {
	if t.Status != TxPending {
		return ErrInvalidInput
	}
	t.Status = TxConcluded
	return nil
}

// Cancel moves a pending transaction to CANCELLED.
func (t *Transaction) Cancel() error {
	if t.Status != TxPending {
		return ErrInvalidInput
	}
	t.Status = TxCancelled
	return nil
}
