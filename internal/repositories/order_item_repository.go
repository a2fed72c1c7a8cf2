package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentshop-backend/internal/apperrors"
	"rentshop-backend/internal/models"
)

type OrderItemRepository struct {
	DB *pgxpool.Pool
}

func NewOrderItemRepository(db *pgxpool.Pool) *OrderItemRepository {
	return &OrderItemRepository{DB: db}
}

const itemColumns = `id, order_id, photo_url, product_name, quantity, price_per_day, days, line_total,
	return_status, returned_quantity, actual_return_date, damage_fee,
	COALESCE(damage_description, ''), COALESCE(missing_note, ''), created_at`

func scanItem(row interface{ Scan(dest ...any) error }) (*models.OrderItem, error) {
	it := &models.OrderItem{}
	err := row.Scan(
		&it.ID, &it.OrderID, &it.PhotoURL, &it.ProductName, &it.Quantity, &it.PricePerDay, &it.Days, &it.LineTotal,
		&it.ReturnStatus, &it.ReturnedQuantity, &it.ActualReturnDate, &it.DamageFee,
		&it.DamageDescription, &it.MissingNote, &it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// InsertBatch inserts all items for an order. Called inside the order
// creation transaction.
func (r *OrderItemRepository) InsertBatch(ctx context.Context, items []*models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, photo_url, product_name, quantity, price_per_day, days, line_total, return_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	q := queryable(ctx, r.DB)
	for _, it := range items {
		err := q.QueryRow(ctx, query,
			it.OrderID, it.PhotoURL, it.ProductName, it.Quantity, it.PricePerDay, it.Days, it.LineTotal,
			models.ReturnStatusNotYetReturned,
		).Scan(&it.ID, &it.CreatedAt)
		if err != nil {
			return mapError(err, "order item")
		}
		it.ReturnStatus = models.ReturnStatusNotYetReturned
	}
	return nil
}

func (r *OrderItemRepository) ListByOrder(ctx context.Context, orderID int) ([]*models.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := queryable(ctx, r.DB).Query(ctx, query, orderID)
	if err != nil {
		return nil, mapError(err, "order items")
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, mapError(err, "order items")
		}
		items = append(items, it)
	}
	return items, nil
}

// UpdateReturnFields applies one return decision to an item. The order id is
// part of the predicate so a decision can never touch another order's item.
func (r *OrderItemRepository) UpdateReturnFields(ctx context.Context, orderID int, ret models.ItemReturn) error {
	// Only overwrite quantity/date/fee when the decision carries them
	query := `
		UPDATE order_items
		SET return_status = $1,
		    returned_quantity = COALESCE($2, returned_quantity),
		    actual_return_date = COALESCE($3, actual_return_date),
		    damage_fee = COALESCE($4, damage_fee),
		    damage_description = CASE WHEN $5 <> '' THEN $5 ELSE damage_description END,
		    missing_note = CASE WHEN $6 <> '' THEN $6 ELSE missing_note END
		WHERE id = $7 AND order_id = $8
	`
	tag, err := queryable(ctx, r.DB).Exec(ctx, query,
		ret.ReturnStatus, ret.ReturnedQuantity, ret.ActualReturnDate, ret.DamageCost,
		ret.DamageDescription, ret.MissingNote,
		ret.ItemID, orderID,
	)
	if err != nil {
		return mapError(err, "order item")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order item %d not found on order %d", ret.ItemID, orderID)
	}
	return nil
}

// ReplaceForOrder deletes and re-inserts the full item set. Items are owned
// by their order, so order edits replace them wholesale.
func (r *OrderItemRepository) ReplaceForOrder(ctx context.Context, orderID int, items []*models.OrderItem) error {
	if _, err := queryable(ctx, r.DB).Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return mapError(err, "order items")
	}
	for _, it := range items {
		it.OrderID = orderID
	}
	return r.InsertBatch(ctx, items)
}
