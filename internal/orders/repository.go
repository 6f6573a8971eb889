package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/chamanbahar/cbm-sales/internal/platform/db"
	"github.com/chamanbahar/cbm-sales/internal/shared"
)

// Repository persists orders and their items.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	CreateOrder(ctx context.Context, order Order) (*Order, error)
	UpdateOrder(ctx context.Context, order Order) error
	DeleteOrder(ctx context.Context, id int64) error
	GetOrder(ctx context.Context, id int64) (*Order, error)
	GetDetail(ctx context.Context, id int64) (*Detail, error)
	ListDetails(ctx context.Context, status *Status) ([]Detail, error)

	ListItems(ctx context.Context, orderID int64) ([]Item, error)
	GetItem(ctx context.Context, orderID, itemID int64) (*Item, error)
	InsertItem(ctx context.Context, item Item) (*Item, error)
	UpdateItem(ctx context.Context, item Item) error
	DeleteItem(ctx context.Context, orderID, itemID int64) error

	UpdateStatus(ctx context.Context, id int64, status Status) error
	UpdateNotes(ctx context.Context, id int64, notes *string) error
	UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository builds a pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if _, inTx := r.db.(pgx.Tx); inTx {
		return fn(ctx, r)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const orderColumns = `o.id, o.retailer_id, o.order_date, o.discount, o.total_amount, o.notes, o.status, o.created_at, o.updated_at`

const itemColumns = `id, order_id, product_id, product_name, rate, quantity, unit, discount, subtotal, image_ref`

func scanOrder(row pgx.Row, extra ...any) (*Order, error) {
	var o Order
	dest := []any{&o.ID, &o.RetailerID, &o.OrderDate, &o.Discount, &o.TotalAmount, &o.Notes, &o.Status, &o.CreatedAt, &o.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	if err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Rate, &it.Quantity, &it.Unit, &it.Discount, &it.Subtotal, &it.ImageRef); err != nil {
		return nil, err
	}
	return &it, nil
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, shared.ErrNotFound)
}

func (r *repository) CreateOrder(ctx context.Context, order Order) (*Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `
		INSERT INTO orders AS o (retailer_id, order_date, discount, total_amount, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+orderColumns,
		order.RetailerID, order.OrderDate, order.Discount, order.TotalAmount, order.Notes, order.Status))
	if err != nil {
		if db.IsCode(err, db.CodeForeignKeyViolation) {
			return nil, shared.NewValidationError("retailer_id", "does not exist")
		}
		return nil, shared.Storage("insert order", err)
	}
	return o, nil
}

func (r *repository) UpdateOrder(ctx context.Context, order Order) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET retailer_id = $2, order_date = $3, discount = $4, total_amount = $5,
		    notes = $6, status = $7, updated_at = NOW()
		WHERE id = $1`,
		order.ID, order.RetailerID, order.OrderDate, order.Discount, order.TotalAmount, order.Notes, order.Status)
	if err != nil {
		if db.IsCode(err, db.CodeForeignKeyViolation) {
			return shared.NewValidationError("retailer_id", "does not exist")
		}
		return shared.Storage("update order", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("order", order.ID)
	}
	return nil
}

func (r *repository) DeleteOrder(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return shared.Storage("delete order", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("order", id)
	}
	return nil
}

func (r *repository) GetOrder(ctx context.Context, id int64) (*Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("order", id)
		}
		return nil, shared.Storage("get order", err)
	}
	return o, nil
}

const detailQuery = `
	SELECT ` + orderColumns + `,
	       r.id, r.name, r.phone, r.address, r.created_at, r.updated_at
	FROM orders o
	JOIN retailers r ON r.id = o.retailer_id`

func scanDetail(row pgx.Row) (*Detail, error) {
	var d Detail
	rt := &d.Retailer
	o, err := scanOrder(row, &rt.ID, &rt.Name, &rt.Phone, &rt.Address, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.Order = *o
	d.Items = []Item{}
	return &d, nil
}

func (r *repository) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	d, err := scanDetail(r.db.QueryRow(ctx, detailQuery+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("order", id)
		}
		return nil, shared.Storage("get order detail", err)
	}
	items, err := r.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Items = items
	return d, nil
}

func (r *repository) ListDetails(ctx context.Context, status *Status) ([]Detail, error) {
	query := detailQuery
	var args []any
	if status != nil {
		query += ` WHERE o.status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY o.order_date DESC, o.id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.Storage("list orders", err)
	}
	defer rows.Close()

	details := []Detail{}
	index := make(map[int64]int)
	var ids []int64
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, shared.Storage("scan order", err)
		}
		index[d.Order.ID] = len(details)
		ids = append(ids, d.Order.ID)
		details = append(details, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage("list orders", err)
	}
	if len(ids) == 0 {
		return details, nil
	}

	itemRows, err := r.db.Query(ctx, `SELECT `+itemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, id`, ids)
	if err != nil {
		return nil, shared.Storage("list order items", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		it, err := scanItem(itemRows)
		if err != nil {
			return nil, shared.Storage("scan order item", err)
		}
		i := index[it.OrderID]
		details[i].Items = append(details[i].Items, *it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, shared.Storage("list order items", err)
	}
	return details, nil
}

func (r *repository) ListItems(ctx context.Context, orderID int64) ([]Item, error) {
	rows, err := r.db.Query(ctx, `SELECT `+itemColumns+` FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, shared.Storage("list order items", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, shared.Storage("scan order item", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage("list order items", err)
	}
	return items, nil
}

func (r *repository) GetItem(ctx context.Context, orderID, itemID int64) (*Item, error) {
	it, err := scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM order_items WHERE order_id = $1 AND id = $2`, orderID, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("order item", itemID)
		}
		return nil, shared.Storage("get order item", err)
	}
	return it, nil
}

func (r *repository) InsertItem(ctx context.Context, item Item) (*Item, error) {
	it, err := scanItem(r.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, product_name, rate, quantity, unit, discount, subtotal, image_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+itemColumns,
		item.OrderID, item.ProductID, item.ProductName, item.Rate, item.Quantity, item.Unit, item.Discount, item.Subtotal, item.ImageRef))
	if err != nil {
		if db.IsCode(err, db.CodeUniqueViolation) {
			return nil, fmt.Errorf("product %d in %s already on order %d: %w", item.ProductID, item.Unit, item.OrderID, shared.ErrConflict)
		}
		return nil, shared.Storage("insert order item", err)
	}
	return it, nil
}

func (r *repository) UpdateItem(ctx context.Context, item Item) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE order_items
		SET product_name = $3, rate = $4, quantity = $5, discount = $6, subtotal = $7, image_ref = $8
		WHERE order_id = $1 AND id = $2`,
		item.OrderID, item.ID, item.ProductName, item.Rate, item.Quantity, item.Discount, item.Subtotal, item.ImageRef)
	if err != nil {
		return shared.Storage("update order item", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("order item", item.ID)
	}
	return nil
}

func (r *repository) DeleteItem(ctx context.Context, orderID, itemID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1 AND id = $2`, orderID, itemID)
	if err != nil {
		return shared.Storage("delete order item", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("order item", itemID)
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	return r.narrowUpdate(ctx, "update order status", `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
}

func (r *repository) UpdateNotes(ctx context.Context, id int64, notes *string) error {
	return r.narrowUpdate(ctx, "update order notes", `UPDATE orders SET notes = $2, updated_at = NOW() WHERE id = $1`, id, notes)
}

func (r *repository) UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) error {
	return r.narrowUpdate(ctx, "update order total", `UPDATE orders SET total_amount = $2, updated_at = NOW() WHERE id = $1`, id, total)
}

func (r *repository) narrowUpdate(ctx context.Context, op, query string, id int64, value any) error {
	tag, err := r.db.Exec(ctx, query, id, value)
	if err != nil {
		return shared.Storage(op, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("order", id)
	}
	return nil
}
