package models

import (
	"time"
)

// OrderStatus represents the lifecycle state of a rental order
type OrderStatus string

const (
	StatusScheduled           OrderStatus = "scheduled"             // Booked, start date in the future
	StatusActive              OrderStatus = "active"                // Items out with the customer
	StatusPendingReturn       OrderStatus = "pending_return"        // Past end date, nothing returned yet
	StatusPartiallyReturned   OrderStatus = "partially_returned"    // Some items back, no issues so far
	StatusCompleted           OrderStatus = "completed"             // Everything back, no issues
	StatusCompletedWithIssues OrderStatus = "completed_with_issues" // Legacy value, kept for old rows
	StatusFlagged             OrderStatus = "flagged"               // Damage, missing items, or unresolved partial return
	StatusCancelled           OrderStatus = "cancelled"
)

// CancelWindow is how long an active order stays cancellable after it starts.
const CancelWindow = 10 * time.Minute

type Order struct {
	ID            int    `json:"id"`
	InvoiceNumber string `json:"invoice_number"`
	BranchID      int    `json:"branch_id"`
	StaffID       int    `json:"staff_id"`
	CustomerID    int    `json:"customer_id"`

	BookingDate   time.Time  `json:"booking_date"`
	StartDate     time.Time  `json:"start_date"` // date-only, legacy
	EndDate       time.Time  `json:"end_date"`   // date-only, legacy
	StartDatetime *time.Time `json:"start_datetime,omitempty"` // authoritative when present
	EndDatetime   *time.Time `json:"end_datetime,omitempty"`

	Status OrderStatus `json:"status"`

	Subtotal       float64 `json:"subtotal"`
	GSTAmount      float64 `json:"gst_amount"`
	LateFee        float64 `json:"late_fee"`
	DiscountAmount float64 `json:"discount_amount"`
	DamageFeeTotal float64 `json:"damage_fee_total"`
	TotalAmount    float64 `json:"total_amount"` // derived, persisted

	SecurityDepositAmount         float64    `json:"security_deposit_amount"`
	SecurityDepositCollected      bool       `json:"security_deposit_collected"`
	SecurityDepositRefunded       bool       `json:"security_deposit_refunded"`
	SecurityDepositRefundedAmount float64    `json:"security_deposit_refunded_amount"`
	SecurityDepositRefundDate     *time.Time `json:"security_deposit_refund_date,omitempty"`
	AdditionalAmountCollected     float64    `json:"additional_amount_collected"`
	DepositBalance                float64    `json:"deposit_balance"`

	// Version increments on every persisted mutation. Updates must match the
	// version they read or they are rejected as conflicts.
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal reports whether the order can no longer change state.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case StatusCompleted, StatusCompletedWithIssues, StatusFlagged, StatusCancelled:
		return true
	}
	return false
}

// ActiveSince returns the moment the order became active: the start datetime
// when recorded, otherwise the creation time.
func (o *Order) ActiveSince() time.Time {
	if o.StartDatetime != nil {
		return *o.StartDatetime
	}
	return o.CreatedAt
}

// CanCancel reports whether the order may still be cancelled at the given
// time. Scheduled orders always can; active orders only within CancelWindow
// of becoming active; terminal and in-return states never.
func (o *Order) CanCancel(now time.Time) bool {
	if o.IsTerminal() {
		return false
	}
	switch o.Status {
	case StatusScheduled:
		return true
	case StatusActive:
		return now.Sub(o.ActiveSince()) <= CancelWindow
	}
	return false
}

// CreateOrderRequest is the payload for creating an order with its items.
type CreateOrderRequest struct {
	InvoiceNumber string `json:"invoice_number"` // optional, generated when empty
	BranchID      int    `json:"branch_id"`
	CustomerID    int    `json:"customer_id"`
	StartDate     string `json:"start_date"` // yyyy-mm-dd
	EndDate       string `json:"end_date"`
	StartDatetime string `json:"start_datetime"` // RFC3339, optional
	EndDatetime   string `json:"end_datetime"`

	GSTAmount                float64 `json:"gst_amount"`
	DiscountAmount           float64 `json:"discount_amount"`
	SecurityDepositAmount    float64 `json:"security_deposit_amount"`
	SecurityDepositCollected bool    `json:"security_deposit_collected"`

	Items []CreateOrderItemRequest `json:"items"`
}

// OrderSnapshot bundles an order with everything the invoice and the UI need.
type OrderSnapshot struct {
	Order    *Order       `json:"order"`
	Items    []*OrderItem `json:"items"`
	Customer *Customer    `json:"customer,omitempty"`
	Staff    *User        `json:"staff,omitempty"`
	Branch   *Branch      `json:"branch,omitempty"`
}
