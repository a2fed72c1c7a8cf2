package billing

import (
	"rentshop-backend/internal/models"
)

// ResolveStatus determines an order's lifecycle state from its full item set.
// The bool result is false when no item has been touched yet, meaning the
// caller must leave the stored status alone.
//
// Decision order, first match wins:
//  1. every item fully returned, none missing, no damage -> completed
//  2. any damage or any missing item                     -> flagged
//  3. something returned but not everything              -> partially_returned
//  4. nothing touched                                    -> no change
//
// Short quantities alone mean the return is still in progress, not an issue,
// so they resolve to partially_returned rather than flagged. The
// fully-returned-but-damaged case deliberately resolves to flagged; the
// legacy completed_with_issues value is still accepted on old rows.
func ResolveStatus(items []*models.OrderItem) (models.OrderStatus, bool) {
	if len(items) == 0 {
		return "", false
	}

	allReturned := true
	anyTouched := false
	anyIssue := false

	for _, it := range items {
		if it.ReturnedQuantity > 0 || it.ReturnStatus != models.ReturnStatusNotYetReturned {
			anyTouched = true
		}
		if it.ReturnedQuantity < it.Quantity && it.ReturnStatus != models.ReturnStatusMissing {
			allReturned = false
		}
		if it.ReturnStatus == models.ReturnStatusMissing {
			anyIssue = true
		}
		if it.HasDamage() {
			anyIssue = true
		}
	}

	if !anyTouched {
		return "", false
	}
	if anyIssue {
		return models.StatusFlagged, true
	}
	if allReturned {
		return models.StatusCompleted, true
	}
	return models.StatusPartiallyReturned, true
}

// FallbackStatus is what a resolved status degrades to when the store's
// check constraint rejects it. Only issue states downgrade; anything else
// is returned unchanged.
func FallbackStatus(s models.OrderStatus) models.OrderStatus {
	switch s {
	case models.StatusFlagged, models.StatusCompletedWithIssues:
		return models.StatusCompleted
	}
	return s
}

// SumDamageFees re-sums damage fees over the full item set. Recomputing from
// scratch guards against drift when earlier updates only patched a subset.
func SumDamageFees(items []*models.OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.DamageFee
	}
	return Round2(total)
}
