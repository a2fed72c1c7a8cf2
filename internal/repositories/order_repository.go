package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentshop-backend/internal/apperrors"
	"rentshop-backend/internal/models"
)

type OrderRepository struct {
	DB *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{DB: db}
}

const orderColumns = `id, invoice_number, branch_id, staff_id, customer_id,
	booking_date, start_date, end_date, start_datetime, end_datetime,
	status, subtotal, gst_amount, late_fee, discount_amount, damage_fee_total, total_amount,
	security_deposit_amount, security_deposit_collected, security_deposit_refunded,
	security_deposit_refunded_amount, security_deposit_refund_date,
	additional_amount_collected, deposit_balance, version, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (*models.Order, error) {
	o := &models.Order{}
	err := row.Scan(
		&o.ID, &o.InvoiceNumber, &o.BranchID, &o.StaffID, &o.CustomerID,
		&o.BookingDate, &o.StartDate, &o.EndDate, &o.StartDatetime, &o.EndDatetime,
		&o.Status, &o.Subtotal, &o.GSTAmount, &o.LateFee, &o.DiscountAmount, &o.DamageFeeTotal, &o.TotalAmount,
		&o.SecurityDepositAmount, &o.SecurityDepositCollected, &o.SecurityDepositRefunded,
		&o.SecurityDepositRefundedAmount, &o.SecurityDepositRefundDate,
		&o.AdditionalAmountCollected, &o.DepositBalance, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) Insert(ctx context.Context, o *models.Order) error {
	query := `
		INSERT INTO orders (invoice_number, branch_id, staff_id, customer_id,
			booking_date, start_date, end_date, start_datetime, end_datetime,
			status, subtotal, gst_amount, late_fee, discount_amount, damage_fee_total, total_amount,
			security_deposit_amount, security_deposit_collected, additional_amount_collected, deposit_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, version, created_at, updated_at
	`
	err := queryable(ctx, r.DB).QueryRow(ctx, query,
		o.InvoiceNumber, o.BranchID, o.StaffID, o.CustomerID,
		o.BookingDate, o.StartDate, o.EndDate, o.StartDatetime, o.EndDatetime,
		o.Status, o.Subtotal, o.GSTAmount, o.LateFee, o.DiscountAmount, o.DamageFeeTotal, o.TotalAmount,
		o.SecurityDepositAmount, o.SecurityDepositCollected, o.AdditionalAmountCollected, o.DepositBalance,
	).Scan(&o.ID, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return mapError(err, "order")
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id int) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(queryable(ctx, r.DB).QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "order")
	}
	return o, nil
}

// GetForUpdate locks the order row for the rest of the transaction,
// serializing concurrent returns and deposit operations per order.
func (r *OrderRepository) GetForUpdate(ctx context.Context, id int) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	o, err := scanOrder(queryable(ctx, r.DB).QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "order")
	}
	return o, nil
}

func (r *OrderRepository) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE invoice_number = $1`
	o, err := scanOrder(queryable(ctx, r.DB).QueryRow(ctx, query, invoiceNumber))
	if err != nil {
		return nil, mapError(err, "order")
	}
	return o, nil
}

// OrderFilter narrows List. Zero values mean "no filter".
type OrderFilter struct {
	BranchID   int
	CustomerID int
	Status     models.OrderStatus
	Limit      int
	Offset     int
}

func (r *OrderRepository) List(ctx context.Context, filter OrderFilter) ([]*models.Order, error) {
	var conditions []string
	var args []any
	argNum := 1

	if filter.BranchID > 0 {
		conditions = append(conditions, fmt.Sprintf("branch_id = $%d", argNum))
		args = append(args, filter.BranchID)
		argNum++
	}
	if filter.CustomerID > 0 {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argNum))
		args = append(args, filter.CustomerID)
		argNum++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, filter.Status)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argNum, argNum+1)
	args = append(args, limit, filter.Offset)

	rows, err := queryable(ctx, r.DB).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "orders")
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, mapError(err, "orders")
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// UpdateReturn persists the fields a return batch touches, guarded by the
// optimistic version check. A stale expectedVersion yields ConflictError; a
// rejected status value surfaces as ConstraintError so the caller can retry
// with the fallback status.
func (r *OrderRepository) UpdateReturn(ctx context.Context, o *models.Order, expectedVersion int) error {
	query := `
		UPDATE orders
		SET status = $1, total_amount = $2, damage_fee_total = $3, late_fee = $4,
		    discount_amount = $5, version = version + 1, updated_at = NOW()
		WHERE id = $6 AND version = $7
		RETURNING version, updated_at
	`
	err := queryable(ctx, r.DB).QueryRow(ctx, query,
		o.Status, o.TotalAmount, o.DamageFeeTotal, o.LateFee, o.DiscountAmount,
		o.ID, expectedVersion,
	).Scan(&o.Version, &o.UpdatedAt)
	if err != nil {
		mapped := mapError(err, "order")
		if apperrors.IsKind(mapped, apperrors.KindNotFound) {
			// Row exists but the version moved under us
			return apperrors.Conflict("order %d was modified concurrently, retry with fresh data", o.ID)
		}
		return mapped
	}
	return nil
}

// UpdateDeposit persists deposit-side fields under the same version guard.
func (r *OrderRepository) UpdateDeposit(ctx context.Context, o *models.Order, expectedVersion int) error {
	query := `
		UPDATE orders
		SET security_deposit_collected = $1, security_deposit_refunded = $2,
		    security_deposit_refunded_amount = $3, security_deposit_refund_date = $4,
		    additional_amount_collected = $5, deposit_balance = $6,
		    version = version + 1, updated_at = NOW()
		WHERE id = $7 AND version = $8
		RETURNING version, updated_at
	`
	err := queryable(ctx, r.DB).QueryRow(ctx, query,
		o.SecurityDepositCollected, o.SecurityDepositRefunded,
		o.SecurityDepositRefundedAmount, o.SecurityDepositRefundDate,
		o.AdditionalAmountCollected, o.DepositBalance,
		o.ID, expectedVersion,
	).Scan(&o.Version, &o.UpdatedAt)
	if err != nil {
		mapped := mapError(err, "order")
		if apperrors.IsKind(mapped, apperrors.KindNotFound) {
			return apperrors.Conflict("order %d was modified concurrently, retry with fresh data", o.ID)
		}
		return mapped
	}
	return nil
}

// UpdateStatus moves the order to a new lifecycle state under the version guard.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *models.Order, status models.OrderStatus, expectedVersion int) error {
	query := `
		UPDATE orders
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
		RETURNING version, updated_at
	`
	err := queryable(ctx, r.DB).QueryRow(ctx, query, status, o.ID, expectedVersion).
		Scan(&o.Version, &o.UpdatedAt)
	if err != nil {
		mapped := mapError(err, "order")
		if apperrors.IsKind(mapped, apperrors.KindNotFound) {
			return apperrors.Conflict("order %d was modified concurrently, retry with fresh data", o.ID)
		}
		return mapped
	}
	o.Status = status
	return nil
}

// MarkOverdueActive moves every active order whose end date is before the
// given day to pending_return. Returns how many rows moved.
func (r *OrderRepository) MarkOverdueActive(ctx context.Context, dayStart time.Time) (int64, error) {
	query := `
		UPDATE orders
		SET status = 'pending_return', version = version + 1, updated_at = NOW()
		WHERE status = 'active' AND end_date < $1
	`
	tag, err := queryable(ctx, r.DB).Exec(ctx, query, dayStart)
	if err != nil {
		return 0, mapError(err, "orders")
	}
	return tag.RowsAffected(), nil
}

// SumOpenTotalsByCustomer computes a customer's due amount: the sum of
// total_amount over orders that are still open. Never stored.
func (r *OrderRepository) SumOpenTotalsByCustomer(ctx context.Context, customerID int) (float64, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE customer_id = $1
		  AND status IN ('active', 'pending_return', 'partially_returned', 'flagged')
	`
	var due float64
	if err := queryable(ctx, r.DB).QueryRow(ctx, query, customerID).Scan(&due); err != nil {
		return 0, mapError(err, "customer due amount")
	}
	return due, nil
}
