package services

import (
	"context"
	"log"
	"math"

	"rentshop-backend/internal/apperrors"
	"rentshop-backend/internal/billing"
	"rentshop-backend/internal/cache"
	"rentshop-backend/internal/metrics"
	"rentshop-backend/internal/models"
	"rentshop-backend/internal/timeutil"
)

// DepositService owns the money side of an order after creation: collecting
// the security deposit, refunding it, and collecting outstanding charges.
// Every movement lands as an append-only ledger row next to the order update.
type DepositService struct {
	orders OrderStore
	ledger LedgerStore
	tx     TxRunner
}

func NewDepositService(orders OrderStore, ledger LedgerStore, tx TxRunner) *DepositService {
	return &DepositService{orders: orders, ledger: ledger, tx: tx}
}

type RefundRequest struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`
	Notes     string  `json:"notes"`
}

type CollectRequest struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`
	Notes     string  `json:"notes"`
}

// CollectSecurityDeposit marks the order's deposit as collected and records
// the collection in the ledger.
func (s *DepositService) CollectSecurityDeposit(ctx context.Context, orderID int, method, notes, actorID string) (*models.Order, error) {
	var updated *models.Order
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.SecurityDepositCollected {
			return apperrors.Validation("security deposit for order %d is already collected", orderID)
		}
		if order.SecurityDepositAmount <= 0 {
			return apperrors.Validation("order %d has no security deposit to collect", orderID)
		}

		if err := s.ledger.Append(ctx, &models.PaymentTransaction{
			OrderID: orderID,
			Type:    models.TransactionTypeDepositCollection,
			Amount:  order.SecurityDepositAmount,
			Method:  method,
			Notes:   notes,
			ActorID: actorID,
		}); err != nil {
			return err
		}

		order.SecurityDepositCollected = true
		order.DepositBalance = s.currentBalance(ctx, order)
		if err := s.orders.UpdateDeposit(ctx, order, order.Version); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, s.noteConflict(err)
	}
	cache.InvalidateSnapshot(ctx, orderID)
	log.Printf("[Deposit] order %d: deposit %.2f collected by %s", orderID, updated.SecurityDepositAmount, actorID)
	return updated, nil
}

// RefundSecurityDeposit pays part or all of the held deposit back to the
// customer. The refund can never exceed what is actually held.
func (s *DepositService) RefundSecurityDeposit(ctx context.Context, orderID int, req *RefundRequest, actorID string) (*models.Order, error) {
	if req.Amount <= 0 {
		return nil, apperrors.Validation("refund amount must be positive")
	}

	var updated *models.Order
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.SecurityDepositCollected {
			return apperrors.Validation("security deposit for order %d was never collected", orderID)
		}
		if order.SecurityDepositRefunded {
			return apperrors.Validation("security deposit for order %d is already refunded", orderID)
		}

		held := s.effectiveBalance(ctx, order)
		if req.Amount > held+billing.MoneyTolerance {
			return apperrors.Validation("refund %.2f exceeds held balance %.2f on order %d", req.Amount, held, orderID)
		}

		if err := s.ledger.Append(ctx, &models.PaymentTransaction{
			OrderID:   orderID,
			Type:      models.TransactionTypeDepositRefund,
			Amount:    billing.Round2(req.Amount),
			Method:    req.Method,
			Reference: req.Reference,
			Notes:     req.Notes,
			ActorID:   actorID,
		}); err != nil {
			return err
		}

		order.SecurityDepositRefundedAmount = billing.Round2(order.SecurityDepositRefundedAmount + req.Amount)
		order.DepositBalance = s.currentBalance(ctx, order)
		if order.DepositBalance <= billing.MoneyTolerance {
			order.SecurityDepositRefunded = true
			now := timeutil.Now()
			order.SecurityDepositRefundDate = &now
		}
		if err := s.orders.UpdateDeposit(ctx, order, order.Version); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, s.noteConflict(err)
	}

	metrics.DepositRefundsTotal.Inc()
	cache.InvalidateSnapshot(ctx, orderID)
	cache.InvalidateDueAmount(ctx, updated.CustomerID)
	log.Printf("[Deposit] order %d: refunded %.2f by %s, balance now %.2f", orderID, req.Amount, actorID, updated.DepositBalance)
	return updated, nil
}

// CollectOutstandingAmount records a payment against the order's outstanding
// charges. The outstanding figure is derived fresh inside the transaction, so
// two collections can never together exceed what is owed.
func (s *DepositService) CollectOutstandingAmount(ctx context.Context, orderID int, req *CollectRequest, actorID string) (*models.Order, error) {
	return s.collect(ctx, orderID, req, models.TransactionTypeOutstandingCollection, actorID)
}

// RecordOnlinePayment is CollectOutstandingAmount for payments that arrive
// through the payment gateway webhook rather than over the counter.
func (s *DepositService) RecordOnlinePayment(ctx context.Context, orderID int, req *CollectRequest, actorID string) (*models.Order, error) {
	return s.collect(ctx, orderID, req, models.TransactionTypeOnlinePayment, actorID)
}

func (s *DepositService) collect(ctx context.Context, orderID int, req *CollectRequest, txnType models.TransactionType, actorID string) (*models.Order, error) {
	if req.Amount <= 0 {
		return nil, apperrors.Validation("collection amount must be positive")
	}

	var updated *models.Order
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == models.StatusCancelled {
			return apperrors.Validation("order %d is cancelled, nothing to collect", orderID)
		}

		outstanding := billing.Outstanding(order)
		if req.Amount > outstanding+billing.MoneyTolerance {
			return apperrors.Validation("collection %.2f exceeds outstanding %.2f on order %d", req.Amount, outstanding, orderID)
		}

		if err := s.ledger.Append(ctx, &models.PaymentTransaction{
			OrderID:   orderID,
			Type:      txnType,
			Amount:    billing.Round2(req.Amount),
			Method:    req.Method,
			Reference: req.Reference,
			Notes:     req.Notes,
			ActorID:   actorID,
		}); err != nil {
			return err
		}

		order.AdditionalAmountCollected = billing.Round2(order.AdditionalAmountCollected + req.Amount)
		order.DepositBalance = s.currentBalance(ctx, order)
		if err := s.orders.UpdateDeposit(ctx, order, order.Version); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, s.noteConflict(err)
	}

	metrics.OutstandingCollectionsTotal.Inc()
	cache.InvalidateSnapshot(ctx, orderID)
	cache.InvalidateDueAmount(ctx, updated.CustomerID)
	log.Printf("[Deposit] order %d: collected %.2f (%s) by %s", orderID, req.Amount, txnType, actorID)
	return updated, nil
}

// Transactions returns the order's full money log, newest first.
func (s *DepositService) Transactions(ctx context.Context, orderID int) ([]*models.PaymentTransaction, error) {
	if _, err := s.orders.Get(ctx, orderID); err != nil {
		return nil, err
	}
	return s.ledger.ListByOrder(ctx, orderID)
}

// effectiveBalance is what is actually held for the customer right now:
// the recomputed ledger balance when available, the stored balance when
// positive, otherwise the original deposit less what was already refunded.
func (s *DepositService) effectiveBalance(ctx context.Context, order *models.Order) float64 {
	if balance, ok := s.ledger.RecalculateBalance(ctx, order.ID); ok {
		return billing.Round2(balance)
	}
	if order.DepositBalance > 0 {
		return order.DepositBalance
	}
	return billing.Round2(math.Max(0, order.SecurityDepositAmount-order.SecurityDepositRefundedAmount))
}

// currentBalance recomputes the deposit balance after a ledger append,
// falling back to a local sum over the log when the server-side function is
// unavailable.
func (s *DepositService) currentBalance(ctx context.Context, order *models.Order) float64 {
	if balance, ok := s.ledger.RecalculateBalance(ctx, order.ID); ok {
		return billing.Round2(balance)
	}
	collected, refunded, err := s.ledger.Sums(ctx, order.ID)
	if err != nil {
		log.Printf("[Deposit] order %d: local balance fallback failed: %v", order.ID, err)
		return order.DepositBalance
	}
	return billing.Round2(collected - refunded)
}

func (s *DepositService) noteConflict(err error) error {
	if apperrors.IsKind(err, apperrors.KindConflict) {
		metrics.OrderConflictsTotal.Inc()
	}
	return err
}
