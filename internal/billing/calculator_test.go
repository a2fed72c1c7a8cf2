package billing

import (
	"testing"

	"rentshop-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestOrderTotal(t *testing.T) {
	t.Run("GST excluded adds gst_amount", func(t *testing.T) {
		total := OrderTotal(TotalInput{
			Subtotal:  1000,
			GSTAmount: 180,
		})
		assert.Equal(t, 1180.0, total)
	})

	t.Run("GST included does not add gst_amount", func(t *testing.T) {
		total := OrderTotal(TotalInput{
			Subtotal:    1000,
			GSTAmount:   180,
			GSTIncluded: true,
		})
		assert.Equal(t, 1000.0, total)
	})

	t.Run("damage and late fee add, discount subtracts", func(t *testing.T) {
		total := OrderTotal(TotalInput{
			Subtotal:       1000,
			GSTAmount:      180,
			DamageFeeTotal: 500,
			LateFee:        200,
			DiscountAmount: 300,
		})
		assert.Equal(t, 1580.0, total)
	})

	t.Run("absent amounts treated as zero", func(t *testing.T) {
		assert.Equal(t, 0.0, OrderTotal(TotalInput{}))
	})

	t.Run("no floor at zero", func(t *testing.T) {
		total := OrderTotal(TotalInput{
			Subtotal:       100,
			DiscountAmount: 250,
		})
		assert.Equal(t, -150.0, total)
	})

	t.Run("idempotent for identical inputs", func(t *testing.T) {
		in := TotalInput{Subtotal: 333.33, GSTAmount: 59.99, DamageFeeTotal: 10.01, LateFee: 5, DiscountAmount: 7.5}
		assert.Equal(t, OrderTotal(in), OrderTotal(in))
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		total := OrderTotal(TotalInput{Subtotal: 0.1, GSTAmount: 0.2})
		assert.Equal(t, 0.3, total)
	})
}

func TestLineTotal(t *testing.T) {
	// quantity x price only; days do not multiply in
	assert.Equal(t, 500.0, LineTotal(2, 250))
	assert.Equal(t, 0.0, LineTotal(0, 250))
}

func TestOutstanding(t *testing.T) {
	t.Run("charges minus deposit and prior collections", func(t *testing.T) {
		o := &models.Order{
			Subtotal:                  2000,
			GSTAmount:                 360,
			DamageFeeTotal:            500,
			LateFee:                   140,
			SecurityDepositAmount:     1000,
			AdditionalAmountCollected: 500,
		}
		assert.Equal(t, 1500.0, Outstanding(o))
	})

	t.Run("clamped at zero when deposit covers everything", func(t *testing.T) {
		o := &models.Order{
			Subtotal:              500,
			SecurityDepositAmount: 2000,
		}
		assert.Equal(t, 0.0, Outstanding(o))
	})
}
