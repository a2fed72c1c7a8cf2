package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"rentshop-backend/internal/apperrors"
	"rentshop-backend/internal/billing"
	"rentshop-backend/internal/cache"
	"rentshop-backend/internal/metrics"
	"rentshop-backend/internal/models"
	"rentshop-backend/internal/repositories"
	"rentshop-backend/internal/timeutil"
)

const invoiceRetries = 5

type OrderService struct {
	orders    OrderStore
	items     ItemStore
	ledger    LedgerStore
	customers CustomerStore
	branches  BranchStore
	users     UserStore
	tx        TxRunner

	// defaultPrefix is used when the branch has no invoice prefix configured.
	defaultPrefix string
}

func NewOrderService(orders OrderStore, items ItemStore, ledger LedgerStore,
	customers CustomerStore, branches BranchStore, users UserStore, tx TxRunner, defaultPrefix string) *OrderService {
	if defaultPrefix == "" {
		defaultPrefix = "RNT"
	}
	return &OrderService{
		orders: orders, items: items, ledger: ledger,
		customers: customers, branches: branches, users: users, tx: tx,
		defaultPrefix: defaultPrefix,
	}
}

// Create books a new order with its items. The status is seeded from the
// start date: a future start means scheduled, otherwise active. When the
// security deposit is collected up front, its ledger row lands in the same
// transaction as the order.
func (s *OrderService) Create(ctx context.Context, req *models.CreateOrderRequest, staffID int) (*models.OrderSnapshot, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}
	if _, err := s.customers.Get(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	startDate, err := timeutil.ParseInIST(timeutil.DateLayout, req.StartDate)
	if err != nil {
		return nil, apperrors.Validation("invalid start_date %q, want yyyy-mm-dd", req.StartDate)
	}
	endDate, err := timeutil.ParseInIST(timeutil.DateLayout, req.EndDate)
	if err != nil {
		return nil, apperrors.Validation("invalid end_date %q, want yyyy-mm-dd", req.EndDate)
	}
	if endDate.Before(startDate) {
		return nil, apperrors.Validation("end_date cannot be before start_date")
	}

	var startDT, endDT *time.Time
	if req.StartDatetime != "" {
		t, err := time.Parse(time.RFC3339, req.StartDatetime)
		if err != nil {
			return nil, apperrors.Validation("invalid start_datetime %q, want RFC3339", req.StartDatetime)
		}
		t = timeutil.ToIST(t)
		startDT = &t
	}
	if req.EndDatetime != "" {
		t, err := time.Parse(time.RFC3339, req.EndDatetime)
		if err != nil {
			return nil, apperrors.Validation("invalid end_datetime %q, want RFC3339", req.EndDatetime)
		}
		t = timeutil.ToIST(t)
		endDT = &t
	}

	items := make([]*models.OrderItem, 0, len(req.Items))
	var subtotal float64
	for _, ir := range req.Items {
		line := billing.LineTotal(ir.Quantity, ir.PricePerDay)
		subtotal += line
		items = append(items, &models.OrderItem{
			PhotoURL:     ir.PhotoURL,
			ProductName:  ir.ProductName,
			Quantity:     ir.Quantity,
			PricePerDay:  ir.PricePerDay,
			Days:         ir.Days,
			LineTotal:    line,
			ReturnStatus: models.ReturnStatusNotYetReturned,
		})
	}
	subtotal = billing.Round2(subtotal)

	now := timeutil.Now()
	status := models.StatusActive
	if timeutil.AfterDay(startDate, now) {
		status = models.StatusScheduled
	}

	order := &models.Order{
		BranchID:       req.BranchID,
		StaffID:        staffID,
		CustomerID:     req.CustomerID,
		BookingDate:    now,
		StartDate:      startDate,
		EndDate:        endDate,
		StartDatetime:  startDT,
		EndDatetime:    endDT,
		Status:         status,
		Subtotal:       subtotal,
		GSTAmount:      billing.Round2(req.GSTAmount),
		DiscountAmount: billing.Round2(req.DiscountAmount),

		SecurityDepositAmount:    billing.Round2(req.SecurityDepositAmount),
		SecurityDepositCollected: req.SecurityDepositCollected,
	}
	order.TotalAmount = billing.OrderTotal(billing.TotalInput{
		Subtotal:       order.Subtotal,
		GSTAmount:      order.GSTAmount,
		GSTIncluded:    s.staffGSTIncluded(ctx, staffID),
		DiscountAmount: order.DiscountAmount,
	})
	if order.SecurityDepositCollected {
		order.DepositBalance = order.SecurityDepositAmount
	}

	prefix := s.invoicePrefix(ctx, req.BranchID)

	// Generated invoice numbers carry a random suffix; on a collision the
	// insert is retried with a fresh one.
	for attempt := 0; ; attempt++ {
		if req.InvoiceNumber != "" {
			order.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)
		} else {
			order.InvoiceNumber = generateInvoiceNumber(prefix, now)
		}

		err = s.tx.InTx(ctx, func(ctx context.Context) error {
			if err := s.orders.Insert(ctx, order); err != nil {
				return err
			}
			for _, it := range items {
				it.OrderID = order.ID
			}
			if err := s.items.InsertBatch(ctx, items); err != nil {
				return err
			}
			if order.SecurityDepositCollected && order.SecurityDepositAmount > 0 {
				return s.ledger.Append(ctx, &models.PaymentTransaction{
					OrderID: order.ID,
					Type:    models.TransactionTypeDepositCollection,
					Amount:  order.SecurityDepositAmount,
					Method:  "cash",
					Notes:   "collected at booking",
					ActorID: fmt.Sprintf("%d", staffID),
				})
			}
			return nil
		})
		if err == nil {
			break
		}
		if req.InvoiceNumber == "" && apperrors.IsKind(err, apperrors.KindConstraint) && attempt < invoiceRetries {
			continue
		}
		return nil, err
	}

	cache.InvalidateDueAmount(ctx, order.CustomerID)
	log.Printf("[Order] created %s (id=%d) for customer %d: status=%s total=%.2f",
		order.InvoiceNumber, order.ID, order.CustomerID, order.Status, order.TotalAmount)
	return &models.OrderSnapshot{Order: order, Items: items}, nil
}

func (s *OrderService) validateCreate(req *models.CreateOrderRequest) error {
	if req.BranchID <= 0 {
		return apperrors.Validation("branch_id is required")
	}
	if req.CustomerID <= 0 {
		return apperrors.Validation("customer_id is required")
	}
	if len(req.Items) == 0 {
		return apperrors.Validation("order must have at least one item")
	}
	for i, it := range req.Items {
		if strings.TrimSpace(it.ProductName) == "" {
			return apperrors.Validation("item %d: product_name is required", i)
		}
		if it.Quantity <= 0 {
			return apperrors.Validation("item %d: quantity must be positive", i)
		}
		if it.PricePerDay < 0 {
			return apperrors.Validation("item %d: price_per_day cannot be negative", i)
		}
	}
	if req.SecurityDepositAmount < 0 {
		return apperrors.Validation("security deposit cannot be negative")
	}
	if req.GSTAmount < 0 {
		return apperrors.Validation("gst_amount cannot be negative")
	}
	if req.DiscountAmount < 0 {
		return apperrors.Validation("discount cannot be negative")
	}
	return nil
}

func generateInvoiceNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, timeutil.FormatIST(now, "20060102"), rand.Intn(10000))
}

func (s *OrderService) invoicePrefix(ctx context.Context, branchID int) string {
	b, err := s.branches.Get(ctx, branchID)
	if err != nil || b.InvoicePrefix == "" {
		return s.defaultPrefix
	}
	return b.InvoicePrefix
}

func (s *OrderService) staffGSTIncluded(ctx context.Context, staffID int) bool {
	if s.users == nil || staffID == 0 {
		return false
	}
	u, err := s.users.Get(ctx, staffID)
	if err != nil {
		return false
	}
	return u.GSTIncluded
}

func (s *OrderService) Get(ctx context.Context, id int) (*models.Order, error) {
	return s.orders.Get(ctx, id)
}

func (s *OrderService) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.Order, error) {
	return s.orders.GetByInvoiceNumber(ctx, invoiceNumber)
}

func (s *OrderService) List(ctx context.Context, filter repositories.OrderFilter) ([]*models.Order, error) {
	return s.orders.List(ctx, filter)
}

// Snapshot loads the order with items, customer, staff and branch attached,
// served from the cache when fresh.
func (s *OrderService) Snapshot(ctx context.Context, id int) (*models.OrderSnapshot, error) {
	if data, ok := cache.GetCachedSnapshot(ctx, id); ok {
		snap := &models.OrderSnapshot{}
		if err := json.Unmarshal(data, snap); err == nil {
			return snap, nil
		}
	}

	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := &models.OrderSnapshot{Order: order, Items: items}
	// Companions are best-effort; the order itself is the record.
	if c, err := s.customers.Get(ctx, order.CustomerID); err == nil {
		snap.Customer = c
	}
	if u, err := s.users.Get(ctx, order.StaffID); err == nil {
		snap.Staff = u
	}
	if b, err := s.branches.Get(ctx, order.BranchID); err == nil {
		snap.Branch = b
	}

	if data, err := json.Marshal(snap); err == nil {
		cache.CacheSnapshot(ctx, id, data)
	}
	return snap, nil
}

// Cancel voids an order while it is still cancellable: any time while
// scheduled, or within the grace window after it becomes active.
func (s *OrderService) Cancel(ctx context.Context, orderID int, actorID string) (*models.Order, error) {
	var updated *models.Order
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.CanCancel(timeutil.Now()) {
			return apperrors.Validation("order %d can no longer be cancelled (status %s)", orderID, order.Status)
		}
		if err := s.orders.UpdateStatus(ctx, order, models.StatusCancelled, order.Version); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindConflict) {
			metrics.OrderConflictsTotal.Inc()
		}
		return nil, err
	}

	cache.InvalidateSnapshot(ctx, orderID)
	cache.InvalidateDueAmount(ctx, updated.CustomerID)
	log.Printf("[Order] order %d cancelled by %s", orderID, actorID)
	return updated, nil
}

// SweepPendingReturns moves active orders past their end date to
// pending_return. Run periodically.
func (s *OrderService) SweepPendingReturns(ctx context.Context) (int64, error) {
	moved, err := s.orders.MarkOverdueActive(ctx, timeutil.StartOfDay(timeutil.Now()))
	if err != nil {
		return 0, err
	}
	if moved > 0 {
		log.Printf("[Order] sweep moved %d overdue orders to pending_return", moved)
	}
	return moved, nil
}
