package billing

import (
	"math"

	"rentshop-backend/internal/models"
)

// TotalInput carries the monetary components that make up an order total.
// Absent subtotal or GST is simply zero.
type TotalInput struct {
	Subtotal       float64
	GSTAmount      float64
	GSTIncluded    bool // prices already carry GST, do not add it again
	DamageFeeTotal float64
	LateFee        float64
	DiscountAmount float64
}

// OrderTotal derives total_amount:
//
//	baseWithGst = subtotal               (GST-inclusive pricing)
//	            = subtotal + gst_amount  (otherwise)
//	total       = baseWithGst + damage + late fee - discount
//
// The result is not floored at zero: a discount larger than the charges
// yields a negative total, surfaced as-is so the books stay honest.
func OrderTotal(in TotalInput) float64 {
	base := in.Subtotal
	if !in.GSTIncluded {
		base += in.GSTAmount
	}
	return Round2(base + in.DamageFeeTotal + in.LateFee - in.DiscountAmount)
}

// LineTotal is the per-item charge: quantity x price_per_day. Days are kept
// on the item for reference but do not multiply into the line total.
func LineTotal(quantity int, pricePerDay float64) float64 {
	return Round2(float64(quantity) * pricePerDay)
}

// Outstanding is the portion of total charges not yet covered by the security
// deposit or earlier outstanding collections, clamped at zero.
func Outstanding(o *models.Order) float64 {
	charges := o.Subtotal + o.GSTAmount + o.DamageFeeTotal + o.LateFee
	out := charges - o.SecurityDepositAmount - o.AdditionalAmountCollected
	if out < 0 {
		return 0
	}
	return Round2(out)
}

// Round2 rounds to two decimal places, the resolution of all money here.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MoneyTolerance absorbs float drift when comparing amounts.
const MoneyTolerance = 0.01
