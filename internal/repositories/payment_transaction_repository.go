package repositories

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentshop-backend/internal/models"
)

// PaymentTransactionRepository is the append-only money log. Rows are never
// updated or deleted here.
type PaymentTransactionRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentTransactionRepository(db *pgxpool.Pool) *PaymentTransactionRepository {
	return &PaymentTransactionRepository{DB: db}
}

func (r *PaymentTransactionRepository) Append(ctx context.Context, txn *models.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (order_id, type, amount, method, reference, notes, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := queryable(ctx, r.DB).QueryRow(ctx, query,
		txn.OrderID, txn.Type, txn.Amount, txn.Method, txn.Reference, txn.Notes, txn.ActorID,
	).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return mapError(err, "payment transaction")
	}
	return nil
}

func (r *PaymentTransactionRepository) ListByOrder(ctx context.Context, orderID int) ([]*models.PaymentTransaction, error) {
	query := `
		SELECT id, order_id, type, amount, COALESCE(method, ''), COALESCE(reference, ''),
		       COALESCE(notes, ''), actor_id, created_at
		FROM payment_transactions
		WHERE order_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := queryable(ctx, r.DB).Query(ctx, query, orderID)
	if err != nil {
		return nil, mapError(err, "payment transactions")
	}
	defer rows.Close()

	var txns []*models.PaymentTransaction
	for rows.Next() {
		t := &models.PaymentTransaction{}
		err := rows.Scan(&t.ID, &t.OrderID, &t.Type, &t.Amount, &t.Method, &t.Reference,
			&t.Notes, &t.ActorID, &t.CreatedAt)
		if err != nil {
			return nil, mapError(err, "payment transactions")
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// Sums returns total deposit collections and total refunds for an order,
// straight from the log. Used for the local deposit-balance fallback, so it
// must count exactly what recalculate_deposit_balance counts: outstanding
// and online collections are charge payments, not deposit money.
func (r *PaymentTransactionRepository) Sums(ctx context.Context, orderID int) (collected, refunded float64, err error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'deposit_collection'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'deposit_refund'), 0)
		FROM payment_transactions
		WHERE order_id = $1
	`
	if scanErr := queryable(ctx, r.DB).QueryRow(ctx, query, orderID).Scan(&collected, &refunded); scanErr != nil {
		return 0, 0, mapError(scanErr, "payment transaction sums")
	}
	return collected, refunded, nil
}

// RecalculateBalance invokes the server-side atomic recompute of an order's
// deposit balance. ok is false when the procedure is unavailable, in which
// case the caller must recompute locally from Sums.
func (r *PaymentTransactionRepository) RecalculateBalance(ctx context.Context, orderID int) (float64, bool) {
	var balance float64
	err := queryable(ctx, r.DB).QueryRow(ctx, `SELECT recalculate_deposit_balance($1)`, orderID).Scan(&balance)
	if err != nil {
		log.Printf("[Ledger] recalculate_deposit_balance unavailable for order %d: %v", orderID, err)
		return 0, false
	}
	return balance, true
}
