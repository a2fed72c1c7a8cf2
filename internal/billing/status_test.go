package billing

import (
	"testing"

	"rentshop-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func item(qty, returned int, status models.ReturnStatus, damage float64, desc string) *models.OrderItem {
	return &models.OrderItem{
		Quantity:          qty,
		ReturnedQuantity:  returned,
		ReturnStatus:      status,
		DamageFee:         damage,
		DamageDescription: desc,
	}
}

func TestResolveStatus(t *testing.T) {
	t.Run("fully returned clean order completes", func(t *testing.T) {
		status, changed := ResolveStatus([]*models.OrderItem{
			item(2, 2, models.ReturnStatusReturned, 0, ""),
		})
		assert.True(t, changed)
		assert.Equal(t, models.StatusCompleted, status)
	})

	t.Run("short quantity is partially_returned", func(t *testing.T) {
		status, changed := ResolveStatus([]*models.OrderItem{
			item(2, 1, models.ReturnStatusReturned, 0, ""),
		})
		assert.True(t, changed)
		assert.Equal(t, models.StatusPartiallyReturned, status)
	})

	t.Run("one of two items fully returned is partially_returned", func(t *testing.T) {
		status, changed := ResolveStatus([]*models.OrderItem{
			item(1, 1, models.ReturnStatusReturned, 0, ""),
			item(1, 0, models.ReturnStatusNotYetReturned, 0, ""),
		})
		assert.True(t, changed)
		assert.Equal(t, models.StatusPartiallyReturned, status)
	})

	t.Run("damage flags even when fully returned", func(t *testing.T) {
		status, changed := ResolveStatus([]*models.OrderItem{
			item(2, 2, models.ReturnStatusReturned, 500, ""),
		})
		assert.True(t, changed)
		assert.Equal(t, models.StatusFlagged, status)
	})

	t.Run("damage description alone flags", func(t *testing.T) {
		status, _ := ResolveStatus([]*models.OrderItem{
			item(1, 1, models.ReturnStatusReturned, 0, "scratched lens"),
		})
		assert.Equal(t, models.StatusFlagged, status)
	})

	t.Run("missing item flags", func(t *testing.T) {
		status, _ := ResolveStatus([]*models.OrderItem{
			item(1, 1, models.ReturnStatusReturned, 0, ""),
			item(1, 0, models.ReturnStatusMissing, 0, ""),
		})
		assert.Equal(t, models.StatusFlagged, status)
	})

	t.Run("untouched items leave status alone", func(t *testing.T) {
		_, changed := ResolveStatus([]*models.OrderItem{
			item(2, 0, models.ReturnStatusNotYetReturned, 0, ""),
			item(1, 0, models.ReturnStatusNotYetReturned, 0, ""),
		})
		assert.False(t, changed)
	})

	t.Run("no items leaves status alone", func(t *testing.T) {
		_, changed := ResolveStatus(nil)
		assert.False(t, changed)
	})

	t.Run("deterministic for a fixed snapshot", func(t *testing.T) {
		items := []*models.OrderItem{
			item(3, 2, models.ReturnStatusReturned, 0, ""),
			item(1, 1, models.ReturnStatusReturned, 250, "bent frame"),
		}
		first, _ := ResolveStatus(items)
		for i := 0; i < 10; i++ {
			again, _ := ResolveStatus(items)
			assert.Equal(t, first, again)
		}
	})
}

func TestFallbackStatus(t *testing.T) {
	assert.Equal(t, models.StatusCompleted, FallbackStatus(models.StatusFlagged))
	assert.Equal(t, models.StatusCompleted, FallbackStatus(models.StatusCompletedWithIssues))
	assert.Equal(t, models.StatusPartiallyReturned, FallbackStatus(models.StatusPartiallyReturned))
}

func TestSumDamageFees(t *testing.T) {
	total := SumDamageFees([]*models.OrderItem{
		item(1, 1, models.ReturnStatusReturned, 100.50, ""),
		item(1, 1, models.ReturnStatusReturned, 0, ""),
		item(1, 1, models.ReturnStatusReturned, 49.50, "dent"),
	})
	assert.Equal(t, 150.0, total)
}
