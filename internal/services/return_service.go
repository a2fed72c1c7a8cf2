package services

import (
	"context"
	"log"

	"rentshop-backend/internal/apperrors"
	"rentshop-backend/internal/billing"
	"rentshop-backend/internal/cache"
	"rentshop-backend/internal/metrics"
	"rentshop-backend/internal/models"
)

// ProcessReturnRequest is a return batch: per-item decisions plus optional
// order-level overrides. Nil override means "leave as stored".
type ProcessReturnRequest struct {
	Items          []models.ItemReturn `json:"items"`
	LateFee        *float64            `json:"late_fee,omitempty"`
	DiscountAmount *float64            `json:"discount_amount,omitempty"`
}

type ReturnService struct {
	orders OrderStore
	items  ItemStore
	users  UserStore
	tx     TxRunner
}

func NewReturnService(orders OrderStore, items ItemStore, users UserStore, tx TxRunner) *ReturnService {
	return &ReturnService{orders: orders, items: items, users: users, tx: tx}
}

// ProcessReturn applies a return batch to an order atomically: item states,
// the re-summed damage fee, the derived total and the resolved status all
// land together or not at all.
//
// When the resolved status is rejected by the store's status constraint the
// whole transaction is retried exactly once with the downgraded status.
func (s *ReturnService) ProcessReturn(ctx context.Context, orderID int, req *ProcessReturnRequest, actorID string) (*models.OrderSnapshot, error) {
	if len(req.Items) == 0 {
		return nil, apperrors.Validation("return batch must contain at least one item decision")
	}
	if req.LateFee != nil && *req.LateFee < 0 {
		return nil, apperrors.Validation("late fee cannot be negative")
	}
	if req.DiscountAmount != nil && *req.DiscountAmount < 0 {
		return nil, apperrors.Validation("discount cannot be negative")
	}

	snap, err := s.processOnce(ctx, orderID, req, false)
	if err != nil && apperrors.IsKind(err, apperrors.KindConstraint) {
		log.Printf("[Return] order %d: resolved status rejected by constraint, retrying with fallback: %v", orderID, err)
		metrics.StatusFallbacksTotal.Inc()
		snap, err = s.processOnce(ctx, orderID, req, true)
	}
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindConflict) {
			metrics.OrderConflictsTotal.Inc()
		}
		return nil, err
	}

	metrics.ReturnsProcessedTotal.WithLabelValues(string(snap.Order.Status)).Inc()
	cache.InvalidateDueAmount(ctx, snap.Order.CustomerID)
	cache.InvalidateSnapshot(ctx, orderID)
	log.Printf("[Return] order %d processed by %s: status=%s total=%.2f damage=%.2f",
		orderID, actorID, snap.Order.Status, snap.Order.TotalAmount, snap.Order.DamageFeeTotal)
	return snap, nil
}

func (s *ReturnService) processOnce(ctx context.Context, orderID int, req *ProcessReturnRequest, useFallback bool) (*models.OrderSnapshot, error) {
	var snap *models.OrderSnapshot
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == models.StatusCancelled {
			return apperrors.Validation("order %d is cancelled, returns cannot be processed", orderID)
		}

		items, err := s.items.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		byID := make(map[int]*models.OrderItem, len(items))
		for _, it := range items {
			byID[it.ID] = it
		}

		for _, ret := range req.Items {
			it, ok := byID[ret.ItemID]
			if !ok {
				return apperrors.NotFound("item %d does not belong to order %d", ret.ItemID, orderID)
			}
			if err := validateItemReturn(it, ret); err != nil {
				return err
			}
			if err := s.items.UpdateReturnFields(ctx, orderID, ret); err != nil {
				return err
			}
		}

		// Re-read so the resolution and the damage sum see the full item set
		// with all decisions applied, not just this batch.
		items, err = s.items.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}

		order.DamageFeeTotal = billing.SumDamageFees(items)
		if req.LateFee != nil {
			order.LateFee = billing.Round2(*req.LateFee)
		}
		if req.DiscountAmount != nil {
			order.DiscountAmount = billing.Round2(*req.DiscountAmount)
		}

		order.TotalAmount = billing.OrderTotal(billing.TotalInput{
			Subtotal:       order.Subtotal,
			GSTAmount:      order.GSTAmount,
			GSTIncluded:    s.staffGSTIncluded(ctx, order.StaffID),
			DamageFeeTotal: order.DamageFeeTotal,
			LateFee:        order.LateFee,
			DiscountAmount: order.DiscountAmount,
		})

		if status, changed := billing.ResolveStatus(items); changed {
			if useFallback {
				status = billing.FallbackStatus(status)
			}
			order.Status = status
		}

		if err := s.orders.UpdateReturn(ctx, order, order.Version); err != nil {
			return err
		}

		snap = &models.OrderSnapshot{Order: order, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func validateItemReturn(it *models.OrderItem, ret models.ItemReturn) error {
	switch ret.ReturnStatus {
	case models.ReturnStatusNotYetReturned, models.ReturnStatusReturned, models.ReturnStatusMissing:
	default:
		return apperrors.Validation("unknown return status %q for item %d", ret.ReturnStatus, ret.ItemID)
	}
	if ret.ReturnedQuantity != nil {
		if *ret.ReturnedQuantity < 0 || *ret.ReturnedQuantity > it.Quantity {
			return apperrors.Validation("returned quantity %d out of range for item %d (quantity %d)",
				*ret.ReturnedQuantity, ret.ItemID, it.Quantity)
		}
	}
	if ret.DamageCost != nil && *ret.DamageCost < 0 {
		return apperrors.Validation("damage cost cannot be negative for item %d", ret.ItemID)
	}
	return nil
}

// staffGSTIncluded looks up the billing staff's GST mode. Lookup failures
// default to GST-exclusive pricing.
func (s *ReturnService) staffGSTIncluded(ctx context.Context, staffID int) bool {
	if s.users == nil || staffID == 0 {
		return false
	}
	u, err := s.users.Get(ctx, staffID)
	if err != nil {
		return false
	}
	return u.GSTIncluded
}
