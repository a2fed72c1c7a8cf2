package services

import (
	"context"
	"time"

	"rentshop-backend/internal/models"
	"rentshop-backend/internal/repositories"
)

// The services declare the slice of repository behaviour they consume, so the
// money-path logic can be exercised against in-memory stores in tests. The
// *Repository types satisfy these as-is.

type OrderStore interface {
	Insert(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id int) (*models.Order, error)
	GetForUpdate(ctx context.Context, id int) (*models.Order, error)
	GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.Order, error)
	List(ctx context.Context, filter repositories.OrderFilter) ([]*models.Order, error)
	UpdateReturn(ctx context.Context, o *models.Order, expectedVersion int) error
	UpdateDeposit(ctx context.Context, o *models.Order, expectedVersion int) error
	UpdateStatus(ctx context.Context, o *models.Order, status models.OrderStatus, expectedVersion int) error
	MarkOverdueActive(ctx context.Context, dayStart time.Time) (int64, error)
	SumOpenTotalsByCustomer(ctx context.Context, customerID int) (float64, error)
}

type ItemStore interface {
	InsertBatch(ctx context.Context, items []*models.OrderItem) error
	ListByOrder(ctx context.Context, orderID int) ([]*models.OrderItem, error)
	UpdateReturnFields(ctx context.Context, orderID int, ret models.ItemReturn) error
}

type LedgerStore interface {
	Append(ctx context.Context, txn *models.PaymentTransaction) error
	ListByOrder(ctx context.Context, orderID int) ([]*models.PaymentTransaction, error)
	Sums(ctx context.Context, orderID int) (collected, refunded float64, err error)
	RecalculateBalance(ctx context.Context, orderID int) (float64, bool)
}

type UserStore interface {
	Get(ctx context.Context, id int) (*models.User, error)
}

type CustomerStore interface {
	Get(ctx context.Context, id int) (*models.Customer, error)
}

type BranchStore interface {
	Get(ctx context.Context, id int) (*models.Branch, error)
}

// TxRunner runs a function atomically. Outside tests this is the pgx-backed
// repositories.TxManager.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
