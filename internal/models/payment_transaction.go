package models

import "time"

// TransactionType classifies entries in the append-only payment log
type TransactionType string

const (
	TransactionTypeDepositCollection     TransactionType = "deposit_collection"
	TransactionTypeDepositRefund         TransactionType = "deposit_refund"
	TransactionTypeOutstandingCollection TransactionType = "outstanding_collection"
	TransactionTypeOnlinePayment         TransactionType = "online_payment" // Razorpay, includes gateway reference
)

// PaymentTransaction is a single append-only ledger row. Rows are never
// updated or deleted; balances are derived by summing them.
type PaymentTransaction struct {
	ID        int             `json:"id"`
	OrderID   int             `json:"order_id"`
	Type      TransactionType `json:"type"`
	Amount    float64         `json:"amount"`
	Method    string          `json:"method"` // cash, upi, card, razorpay
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
	ActorID   string          `json:"actor_id"` // staff user, or "system" for webhook-driven entries
	CreatedAt time.Time       `json:"created_at"`
}
