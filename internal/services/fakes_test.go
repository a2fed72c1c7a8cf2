package services

import (
	"context"
	"time"

	"rentshop-backend/internal/apperrors"
	"rentshop-backend/internal/models"
	"rentshop-backend/internal/repositories"
)

// In-memory stand-ins for the repository layer. They mimic the persistence
// contracts the services rely on: version bumps, conflict on stale versions,
// and ledger append-only behaviour.

type fakeTx struct {
	beginErr error
}

func (f *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(ctx)
}

type fakeOrderStore struct {
	orders map[int]*models.Order
	nextID int

	// updateReturnErrs is consumed one per UpdateReturn call before the
	// normal behaviour applies.
	updateReturnErrs  []error
	updateReturnCalls int
	insertErrs        []error
}

func newFakeOrderStore(orders ...*models.Order) *fakeOrderStore {
	s := &fakeOrderStore{orders: make(map[int]*models.Order), nextID: 1}
	for _, o := range orders {
		if o.ID == 0 {
			o.ID = s.nextID
		}
		if o.Version == 0 {
			o.Version = 1
		}
		s.orders[o.ID] = o
		if o.ID >= s.nextID {
			s.nextID = o.ID + 1
		}
	}
	return s
}

func copyOrder(o *models.Order) *models.Order {
	c := *o
	return &c
}

func (s *fakeOrderStore) Insert(ctx context.Context, o *models.Order) error {
	if len(s.insertErrs) > 0 {
		err := s.insertErrs[0]
		s.insertErrs = s.insertErrs[1:]
		if err != nil {
			return err
		}
	}
	o.ID = s.nextID
	s.nextID++
	o.Version = 1
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	s.orders[o.ID] = copyOrder(o)
	return nil
}

func (s *fakeOrderStore) Get(ctx context.Context, id int) (*models.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, apperrors.NotFound("order not found")
	}
	return copyOrder(o), nil
}

func (s *fakeOrderStore) GetForUpdate(ctx context.Context, id int) (*models.Order, error) {
	return s.Get(ctx, id)
}

func (s *fakeOrderStore) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.Order, error) {
	for _, o := range s.orders {
		if o.InvoiceNumber == invoiceNumber {
			return copyOrder(o), nil
		}
	}
	return nil, apperrors.NotFound("order not found")
}

func (s *fakeOrderStore) List(ctx context.Context, filter repositories.OrderFilter) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range s.orders {
		if filter.CustomerID > 0 && o.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, copyOrder(o))
	}
	return out, nil
}

func (s *fakeOrderStore) UpdateReturn(ctx context.Context, o *models.Order, expectedVersion int) error {
	s.updateReturnCalls++
	if len(s.updateReturnErrs) > 0 {
		err := s.updateReturnErrs[0]
		s.updateReturnErrs = s.updateReturnErrs[1:]
		if err != nil {
			return err
		}
	}
	stored, ok := s.orders[o.ID]
	if !ok {
		return apperrors.NotFound("order not found")
	}
	if stored.Version != expectedVersion {
		return apperrors.Conflict("order %d was modified concurrently", o.ID)
	}
	o.Version = stored.Version + 1
	o.UpdatedAt = time.Now()
	s.orders[o.ID] = copyOrder(o)
	return nil
}

func (s *fakeOrderStore) UpdateDeposit(ctx context.Context, o *models.Order, expectedVersion int) error {
	stored, ok := s.orders[o.ID]
	if !ok {
		return apperrors.NotFound("order not found")
	}
	if stored.Version != expectedVersion {
		return apperrors.Conflict("order %d was modified concurrently", o.ID)
	}
	o.Version = stored.Version + 1
	o.UpdatedAt = time.Now()
	s.orders[o.ID] = copyOrder(o)
	return nil
}

func (s *fakeOrderStore) UpdateStatus(ctx context.Context, o *models.Order, status models.OrderStatus, expectedVersion int) error {
	stored, ok := s.orders[o.ID]
	if !ok {
		return apperrors.NotFound("order not found")
	}
	if stored.Version != expectedVersion {
		return apperrors.Conflict("order %d was modified concurrently", o.ID)
	}
	o.Status = status
	o.Version = stored.Version + 1
	s.orders[o.ID] = copyOrder(o)
	return nil
}

func (s *fakeOrderStore) MarkOverdueActive(ctx context.Context, dayStart time.Time) (int64, error) {
	var moved int64
	for _, o := range s.orders {
		if o.Status == models.StatusActive && o.EndDate.Before(dayStart) {
			o.Status = models.StatusPendingReturn
			o.Version++
			moved++
		}
	}
	return moved, nil
}

func (s *fakeOrderStore) SumOpenTotalsByCustomer(ctx context.Context, customerID int) (float64, error) {
	var due float64
	open := map[models.OrderStatus]bool{
		models.StatusActive:            true,
		models.StatusPendingReturn:     true,
		models.StatusPartiallyReturned: true,
		models.StatusFlagged:           true,
	}
	for _, o := range s.orders {
		if o.CustomerID == customerID && open[o.Status] {
			due += o.TotalAmount
		}
	}
	return due, nil
}

type fakeItemStore struct {
	items  []*models.OrderItem
	nextID int
}

func newFakeItemStore(items ...*models.OrderItem) *fakeItemStore {
	s := &fakeItemStore{nextID: 1}
	for _, it := range items {
		if it.ID == 0 {
			it.ID = s.nextID
		}
		if it.ID >= s.nextID {
			s.nextID = it.ID + 1
		}
		s.items = append(s.items, it)
	}
	return s
}

func (s *fakeItemStore) InsertBatch(ctx context.Context, items []*models.OrderItem) error {
	for _, it := range items {
		it.ID = s.nextID
		s.nextID++
		c := *it
		s.items = append(s.items, &c)
	}
	return nil
}

func (s *fakeItemStore) ListByOrder(ctx context.Context, orderID int) ([]*models.OrderItem, error) {
	var out []*models.OrderItem
	for _, it := range s.items {
		if it.OrderID == orderID {
			c := *it
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *fakeItemStore) find(itemID int) *models.OrderItem {
	for _, it := range s.items {
		if it.ID == itemID {
			return it
		}
	}
	return nil
}

func (s *fakeItemStore) UpdateReturnFields(ctx context.Context, orderID int, ret models.ItemReturn) error {
	it := s.find(ret.ItemID)
	if it == nil || it.OrderID != orderID {
		return apperrors.NotFound("order item %d not found on order %d", ret.ItemID, orderID)
	}
	it.ReturnStatus = ret.ReturnStatus
	if ret.ReturnedQuantity != nil {
		it.ReturnedQuantity = *ret.ReturnedQuantity
	}
	if ret.ActualReturnDate != nil {
		it.ActualReturnDate = ret.ActualReturnDate
	}
	if ret.DamageCost != nil {
		it.DamageFee = *ret.DamageCost
	}
	if ret.DamageDescription != "" {
		it.DamageDescription = ret.DamageDescription
	}
	if ret.MissingNote != "" {
		it.MissingNote = ret.MissingNote
	}
	return nil
}

type fakeLedger struct {
	txns   []*models.PaymentTransaction
	nextID int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{nextID: 1}
}

func (l *fakeLedger) Append(ctx context.Context, txn *models.PaymentTransaction) error {
	txn.ID = l.nextID
	l.nextID++
	txn.CreatedAt = time.Now()
	c := *txn
	l.txns = append(l.txns, &c)
	return nil
}

func (l *fakeLedger) ListByOrder(ctx context.Context, orderID int) ([]*models.PaymentTransaction, error) {
	var out []*models.PaymentTransaction
	for _, t := range l.txns {
		if t.OrderID == orderID {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (l *fakeLedger) Sums(ctx context.Context, orderID int) (float64, float64, error) {
	var collected, refunded float64
	for _, t := range l.txns {
		if t.OrderID != orderID {
			continue
		}
		switch t.Type {
		case models.TransactionTypeDepositCollection:
			collected += t.Amount
		case models.TransactionTypeDepositRefund:
			refunded += t.Amount
		}
	}
	return collected, refunded, nil
}

// RecalculateBalance reports unavailable so the services exercise the local
// fallback over Sums.
func (l *fakeLedger) RecalculateBalance(ctx context.Context, orderID int) (float64, bool) {
	return 0, false
}

type fakeUserStore struct {
	users map[int]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[int]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Get(ctx context.Context, id int) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return u, nil
}

type fakeCustomerStore struct {
	customers map[int]*models.Customer
}

func newFakeCustomerStore(customers ...*models.Customer) *fakeCustomerStore {
	s := &fakeCustomerStore{customers: make(map[int]*models.Customer)}
	for _, c := range customers {
		s.customers[c.ID] = c
	}
	return s
}

func (s *fakeCustomerStore) Get(ctx context.Context, id int) (*models.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, apperrors.NotFound("customer not found")
	}
	return c, nil
}

type fakeBranchStore struct {
	branches map[int]*models.Branch
}

func newFakeBranchStore(branches ...*models.Branch) *fakeBranchStore {
	s := &fakeBranchStore{branches: make(map[int]*models.Branch)}
	for _, b := range branches {
		s.branches[b.ID] = b
	}
	return s
}

func (s *fakeBranchStore) Get(ctx context.Context, id int) (*models.Branch, error) {
	b, ok := s.branches[id]
	if !ok {
		return nil, apperrors.NotFound("branch not found")
	}
	return b, nil
}
