package models

import "time"

// ReturnStatus is the per-item return state
type ReturnStatus string

const (
	ReturnStatusNotYetReturned ReturnStatus = "not_yet_returned"
	ReturnStatusReturned       ReturnStatus = "returned"
	ReturnStatusMissing        ReturnStatus = "missing"
)

type OrderItem struct {
	ID          int     `json:"id"`
	OrderID     int     `json:"order_id"`
	PhotoURL    string  `json:"photo_url"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	PricePerDay float64 `json:"price_per_day"`
	Days        int     `json:"days"`
	LineTotal   float64 `json:"line_total"` // quantity x price_per_day

	ReturnStatus      ReturnStatus `json:"return_status"`
	ReturnedQuantity  int          `json:"returned_quantity"`
	ActualReturnDate  *time.Time   `json:"actual_return_date,omitempty"`
	DamageFee         float64      `json:"damage_fee"`
	DamageDescription string       `json:"damage_description"`
	MissingNote       string       `json:"missing_note"`

	CreatedAt time.Time `json:"created_at"`
}

// HasDamage reports whether the item carries a damage fee or description.
func (i *OrderItem) HasDamage() bool {
	return i.DamageFee > 0 || i.DamageDescription != ""
}

// CreateOrderItemRequest is one line of a new order.
type CreateOrderItemRequest struct {
	PhotoURL    string  `json:"photo_url"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	PricePerDay float64 `json:"price_per_day"`
	Days        int     `json:"days"`
}

// ItemReturn is one per-item decision in a return batch. Pointer fields are
// "not provided" when nil so a batch can touch only the fields it means to.
type ItemReturn struct {
	ItemID            int          `json:"item_id"`
	ReturnStatus      ReturnStatus `json:"return_status"`
	ReturnedQuantity  *int         `json:"returned_quantity,omitempty"`
	ActualReturnDate  *time.Time   `json:"actual_return_date,omitempty"`
	DamageCost        *float64     `json:"damage_cost,omitempty"`
	DamageDescription string       `json:"damage_description"`
	MissingNote       string       `json:"missing_note"`
}
