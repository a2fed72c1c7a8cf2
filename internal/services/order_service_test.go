package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentshop-backend/internal/apperrors"
	"rentshop-backend/internal/models"
	"rentshop-backend/internal/timeutil"
)

func newOrderFixture(t *testing.T) (*OrderService, *fakeOrderStore, *fakeItemStore, *fakeLedger) {
	t.Helper()
	orders := newFakeOrderStore()
	items := newFakeItemStore()
	ledger := newFakeLedger()
	customers := newFakeCustomerStore(&models.Customer{ID: 10, Name: "Asha", Phone: "9876543210"})
	branches := newFakeBranchStore(&models.Branch{ID: 1, Name: "Main", InvoicePrefix: "MN"})
	users := newFakeUserStore(&models.User{ID: 5, GSTIncluded: false})
	svc := NewOrderService(orders, items, ledger, customers, branches, users, &fakeTx{}, "RNT")
	return svc, orders, items, ledger
}

func createReq(startOffsetDays, endOffsetDays int) *models.CreateOrderRequest {
	now := timeutil.Now()
	return &models.CreateOrderRequest{
		BranchID:   1,
		CustomerID: 10,
		StartDate:  timeutil.FormatIST(now.AddDate(0, 0, startOffsetDays), timeutil.DateLayout),
		EndDate:    timeutil.FormatIST(now.AddDate(0, 0, endOffsetDays), timeutil.DateLayout),
		GSTAmount:  45,
		Items: []models.CreateOrderItemRequest{
			{ProductName: "Chairs", Quantity: 2, PricePerDay: 100, Days: 3},
			{ProductName: "Table", Quantity: 1, PricePerDay: 50, Days: 3},
		},
	}
}

func TestCreateOrderSeedsActiveForCurrentStart(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)

	snap, err := svc.Create(context.Background(), createReq(0, 3), 5)
	require.NoError(t, err)

	assert.Equal(t, models.StatusActive, snap.Order.Status)
	// line totals are quantity x price_per_day; days do not multiply in
	assert.InDelta(t, 250.0, snap.Order.Subtotal, 0.001)
	assert.InDelta(t, 295.0, snap.Order.TotalAmount, 0.001)
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, 5, snap.Order.StaffID)
}

func TestCreateOrderSeedsScheduledForFutureStart(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)

	snap, err := svc.Create(context.Background(), createReq(2, 5), 5)
	require.NoError(t, err)

	assert.Equal(t, models.StatusScheduled, snap.Order.Status)
}

func TestCreateOrderGeneratesBranchPrefixedInvoiceNumber(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)

	snap, err := svc.Create(context.Background(), createReq(0, 3), 5)
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^MN-\d{8}-\d{4}$`)
	assert.Regexp(t, pattern, snap.Order.InvoiceNumber)
}

func TestCreateOrderHonoursExplicitInvoiceNumber(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)

	req := createReq(0, 3)
	req.InvoiceNumber = "CUSTOM-001"
	snap, err := svc.Create(context.Background(), req, 5)
	require.NoError(t, err)

	assert.Equal(t, "CUSTOM-001", snap.Order.InvoiceNumber)
}

func TestCreateOrderRecordsCollectedDeposit(t *testing.T) {
	svc, _, _, ledger := newOrderFixture(t)

	req := createReq(0, 3)
	req.SecurityDepositAmount = 500
	req.SecurityDepositCollected = true
	snap, err := svc.Create(context.Background(), req, 5)
	require.NoError(t, err)

	assert.InDelta(t, 500.0, snap.Order.DepositBalance, 0.001)

	txns, err := ledger.ListByOrder(context.Background(), snap.Order.ID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, models.TransactionTypeDepositCollection, txns[0].Type)
	assert.InDelta(t, 500.0, txns[0].Amount, 0.001)
}

func TestCreateOrderRetriesInvoiceCollision(t *testing.T) {
	svc, orders, _, _ := newOrderFixture(t)
	orders.insertErrs = []error{apperrors.Constraint("order rejected by constraint orders_invoice_number_key", nil)}

	snap, err := svc.Create(context.Background(), createReq(0, 3), 5)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Order.InvoiceNumber)
}

func TestCreateOrderValidation(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)

	tests := []struct {
		name   string
		mutate func(*models.CreateOrderRequest)
	}{
		{"no items", func(r *models.CreateOrderRequest) { r.Items = nil }},
		{"zero quantity", func(r *models.CreateOrderRequest) { r.Items[0].Quantity = 0 }},
		{"negative price", func(r *models.CreateOrderRequest) { r.Items[0].PricePerDay = -1 }},
		{"blank product", func(r *models.CreateOrderRequest) { r.Items[0].ProductName = "  " }},
		{"missing customer", func(r *models.CreateOrderRequest) { r.CustomerID = 0 }},
		{"bad start date", func(r *models.CreateOrderRequest) { r.StartDate = "01-01-2026" }},
		{"end before start", func(r *models.CreateOrderRequest) {
			r.StartDate = "2026-03-10"
			r.EndDate = "2026-03-01"
		}},
		{"negative deposit", func(r *models.CreateOrderRequest) { r.SecurityDepositAmount = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := createReq(0, 3)
			tt.mutate(req)
			_, err := svc.Create(context.Background(), req, 5)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		})
	}
}

func TestCancelScheduledOrder(t *testing.T) {
	svc, orders, _, _ := newOrderFixture(t)
	orders.orders[1] = &models.Order{ID: 1, CustomerID: 10, Status: models.StatusScheduled, Version: 1}

	updated, err := svc.Cancel(context.Background(), 1, "5")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)
}

func TestCancelActiveOrderWithinWindow(t *testing.T) {
	svc, orders, _, _ := newOrderFixture(t)
	started := timeutil.Now().Add(-5 * time.Minute)
	orders.orders[1] = &models.Order{
		ID: 1, CustomerID: 10, Status: models.StatusActive,
		StartDatetime: &started, Version: 1,
	}

	updated, err := svc.Cancel(context.Background(), 1, "5")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)
}

func TestCancelActiveOrderAfterWindowRejected(t *testing.T) {
	svc, orders, _, _ := newOrderFixture(t)
	started := timeutil.Now().Add(-30 * time.Minute)
	orders.orders[1] = &models.Order{
		ID: 1, CustomerID: 10, Status: models.StatusActive,
		StartDatetime: &started, Version: 1,
	}

	_, err := svc.Cancel(context.Background(), 1, "5")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCancelTerminalOrderRejected(t *testing.T) {
	svc, orders, _, _ := newOrderFixture(t)

	for _, status := range []models.OrderStatus{
		models.StatusCompleted, models.StatusFlagged, models.StatusCancelled,
	} {
		orders.orders[1] = &models.Order{ID: 1, CustomerID: 10, Status: status, Version: 1}
		_, err := svc.Cancel(context.Background(), 1, "5")
		require.Error(t, err, "status %s", status)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	}
}

func TestSweepPendingReturns(t *testing.T) {
	svc, orders, _, _ := newOrderFixture(t)
	yesterday := timeutil.StartOfDay(timeutil.Now()).AddDate(0, 0, -1)
	orders.orders[1] = &models.Order{ID: 1, Status: models.StatusActive, EndDate: yesterday, Version: 1}
	orders.orders[2] = &models.Order{ID: 2, Status: models.StatusActive, EndDate: timeutil.Now().AddDate(0, 0, 2), Version: 1}

	moved, err := svc.SweepPendingReturns(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, moved)

	o1, _ := orders.Get(context.Background(), 1)
	assert.Equal(t, models.StatusPendingReturn, o1.Status)
	o2, _ := orders.Get(context.Background(), 2)
	assert.Equal(t, models.StatusActive, o2.Status)
}
