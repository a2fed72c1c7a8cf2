package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentshop-backend/internal/apperrors"
	"rentshop-backend/internal/models"
)

func newDepositFixture(t *testing.T, order *models.Order) (*DepositService, *fakeOrderStore, *fakeLedger) {
	t.Helper()
	orders := newFakeOrderStore(order)
	ledger := newFakeLedger()
	if order.SecurityDepositCollected && order.SecurityDepositAmount > 0 {
		require.NoError(t, ledger.Append(context.Background(), &models.PaymentTransaction{
			OrderID: order.ID,
			Type:    models.TransactionTypeDepositCollection,
			Amount:  order.SecurityDepositAmount,
			ActorID: "5",
		}))
	}
	return NewDepositService(orders, ledger, &fakeTx{}), orders, ledger
}

func TestRefundSecurityDepositFullRefund(t *testing.T) {
	svc, orders, ledger := newDepositFixture(t, &models.Order{
		ID: 1, CustomerID: 10, Status: models.StatusCompleted,
		SecurityDepositAmount:    1000,
		SecurityDepositCollected: true,
		DepositBalance:           1000,
	})

	updated, err := svc.RefundSecurityDeposit(context.Background(), 1, &RefundRequest{
		Amount: 1000, Method: "cash", Reference: "RF-81",
	}, "5")
	require.NoError(t, err)

	assert.True(t, updated.SecurityDepositRefunded)
	assert.NotNil(t, updated.SecurityDepositRefundDate)
	assert.InDelta(t, 1000.0, updated.SecurityDepositRefundedAmount, 0.001)
	assert.InDelta(t, 0.0, updated.DepositBalance, 0.001)

	txns, err := ledger.ListByOrder(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, models.TransactionTypeDepositRefund, txns[1].Type)
	assert.InDelta(t, 1000.0, txns[1].Amount, 0.001)
	assert.Equal(t, "RF-81", txns[1].Reference)

	stored, _ := orders.Get(context.Background(), 1)
	assert.True(t, stored.SecurityDepositRefunded)
}

func TestRefundSecurityDepositPartialKeepsHolding(t *testing.T) {
	svc, _, _ := newDepositFixture(t, &models.Order{
		ID: 1, CustomerID: 10, Status: models.StatusCompleted,
		SecurityDepositAmount:    1000,
		SecurityDepositCollected: true,
		DepositBalance:           1000,
	})

	updated, err := svc.RefundSecurityDeposit(context.Background(), 1, &RefundRequest{Amount: 400}, "5")
	require.NoError(t, err)

	assert.False(t, updated.SecurityDepositRefunded)
	assert.Nil(t, updated.SecurityDepositRefundDate)
	assert.InDelta(t, 600.0, updated.DepositBalance, 0.001)
}

func TestRefundSecurityDepositValidation(t *testing.T) {
	tests := []struct {
		name   string
		order  *models.Order
		amount float64
	}{
		{
			name: "never collected",
			order: &models.Order{ID: 1, Status: models.StatusCompleted,
				SecurityDepositAmount: 1000},
			amount: 500,
		},
		{
			name: "already refunded",
			order: &models.Order{ID: 1, Status: models.StatusCompleted,
				SecurityDepositAmount: 1000, SecurityDepositCollected: true,
				SecurityDepositRefunded: true},
			amount: 500,
		},
		{
			name: "exceeds held balance",
			order: &models.Order{ID: 1, Status: models.StatusCompleted,
				SecurityDepositAmount: 1000, SecurityDepositCollected: true,
				DepositBalance: 1000},
			amount: 1200,
		},
		{
			name: "non-positive amount",
			order: &models.Order{ID: 1, Status: models.StatusCompleted,
				SecurityDepositAmount: 1000, SecurityDepositCollected: true,
				DepositBalance: 1000},
			amount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newDepositFixture(t, tt.order)
			_, err := svc.RefundSecurityDeposit(context.Background(), 1, &RefundRequest{Amount: tt.amount}, "5")
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		})
	}
}

func TestCollectOutstandingAmount(t *testing.T) {
	svc, orders, ledger := newDepositFixture(t, &models.Order{
		ID: 1, CustomerID: 10, Status: models.StatusFlagged,
		Subtotal:                 2000,
		SecurityDepositAmount:    1000,
		SecurityDepositCollected: true,
		DepositBalance:           1000,
	})

	// outstanding = 2000 - 1000 deposit
	updated, err := svc.CollectOutstandingAmount(context.Background(), 1, &CollectRequest{
		Amount: 400, Method: "upi",
	}, "5")
	require.NoError(t, err)
	assert.InDelta(t, 400.0, updated.AdditionalAmountCollected, 0.001)

	// outstanding shrinks to 600, over-collection is rejected
	_, err = svc.CollectOutstandingAmount(context.Background(), 1, &CollectRequest{Amount: 700}, "5")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	// collecting the rest is fine
	updated, err = svc.CollectOutstandingAmount(context.Background(), 1, &CollectRequest{Amount: 600}, "5")
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, updated.AdditionalAmountCollected, 0.001)

	txns, err := ledger.ListByOrder(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, txns, 3) // deposit collection + two outstanding collections

	stored, _ := orders.Get(context.Background(), 1)
	assert.InDelta(t, 1000.0, stored.AdditionalAmountCollected, 0.001)
}

func TestOutstandingCollectionLeavesDepositBalanceAlone(t *testing.T) {
	svc, orders, _ := newDepositFixture(t, &models.Order{
		ID: 1, CustomerID: 10, Status: models.StatusCompleted,
		Subtotal:                 2000,
		SecurityDepositAmount:    1000,
		SecurityDepositCollected: true,
		DepositBalance:           1000,
	})

	// Outstanding money is a charge payment; it must not count as held deposit.
	updated, err := svc.CollectOutstandingAmount(context.Background(), 1, &CollectRequest{
		Amount: 500, Method: "cash",
	}, "5")
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, updated.DepositBalance, 0.001)

	// A refund above the deposit stays rejected even with the extra ledger rows.
	_, err = svc.RefundSecurityDeposit(context.Background(), 1, &RefundRequest{Amount: 1500}, "5")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	// The full deposit itself is still refundable.
	updated, err = svc.RefundSecurityDeposit(context.Background(), 1, &RefundRequest{Amount: 1000}, "5")
	require.NoError(t, err)
	assert.True(t, updated.SecurityDepositRefunded)
	assert.InDelta(t, 0.0, updated.DepositBalance, 0.001)

	stored, _ := orders.Get(context.Background(), 1)
	assert.InDelta(t, 1000.0, stored.SecurityDepositRefundedAmount, 0.001)
}

func TestCollectOutstandingToleratesFloatDrift(t *testing.T) {
	svc, _, _ := newDepositFixture(t, &models.Order{
		ID: 1, CustomerID: 10, Status: models.StatusActive,
		Subtotal: 100.10,
	})

	// 0.005 over the outstanding still passes the tolerance check
	_, err := svc.CollectOutstandingAmount(context.Background(), 1, &CollectRequest{Amount: 100.105}, "5")
	require.NoError(t, err)
}

func TestCollectOutstandingRejectsCancelled(t *testing.T) {
	svc, _, _ := newDepositFixture(t, &models.Order{
		ID: 1, CustomerID: 10, Status: models.StatusCancelled, Subtotal: 500,
	})

	_, err := svc.CollectOutstandingAmount(context.Background(), 1, &CollectRequest{Amount: 100}, "5")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCollectSecurityDeposit(t *testing.T) {
	orders := newFakeOrderStore(&models.Order{
		ID: 1, CustomerID: 10, Status: models.StatusActive,
		SecurityDepositAmount: 500,
	})
	ledger := newFakeLedger()
	svc := NewDepositService(orders, ledger, &fakeTx{})

	updated, err := svc.CollectSecurityDeposit(context.Background(), 1, "cash", "", "5")
	require.NoError(t, err)
	assert.True(t, updated.SecurityDepositCollected)
	assert.InDelta(t, 500.0, updated.DepositBalance, 0.001)

	// second collection is rejected
	_, err = svc.CollectSecurityDeposit(context.Background(), 1, "cash", "", "5")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestTransactionsRequiresOrder(t *testing.T) {
	svc, _, _ := newDepositFixture(t, &models.Order{ID: 1, Status: models.StatusActive})

	_, err := svc.Transactions(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
