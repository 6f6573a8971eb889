package retailers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chamanbahar/cbm-sales/internal/platform/db"
	"github.com/chamanbahar/cbm-sales/internal/shared"
)

// Repository persists retailers.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Retailer, error)
	List(ctx context.Context) ([]Retailer, error)
	Create(ctx context.Context, retailer Retailer) (*Retailer, error)
	Update(ctx context.Context, retailer Retailer) (*Retailer, error)
	Delete(ctx context.Context, id int64) error
	CountOrders(ctx context.Context, id int64) (int, error)
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

const retailerColumns = `id, name, phone, address, created_at, updated_at`

func scanRetailer(row pgx.Row) (*Retailer, error) {
	var rt Retailer
	if err := row.Scan(&rt.ID, &rt.Name, &rt.Phone, &rt.Address, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Retailer, error) {
	rt, err := scanRetailer(r.db.QueryRow(ctx, `SELECT `+retailerColumns+` FROM retailers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("retailer %d: %w", id, shared.ErrNotFound)
		}
		return nil, shared.Storage("get retailer", err)
	}
	return rt, nil
}

func (r *repository) List(ctx context.Context) ([]Retailer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+retailerColumns+` FROM retailers ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, shared.Storage("list retailers", err)
	}
	defer rows.Close()

	out := []Retailer{}
	for rows.Next() {
		rt, err := scanRetailer(rows)
		if err != nil {
			return nil, shared.Storage("scan retailer", err)
		}
		out = append(out, *rt)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage("list retailers", err)
	}
	return out, nil
}

func (r *repository) Create(ctx context.Context, retailer Retailer) (*Retailer, error) {
	rt, err := scanRetailer(r.db.QueryRow(ctx, `
		INSERT INTO retailers (name, phone, address)
		VALUES ($1, $2, $3)
		RETURNING `+retailerColumns,
		retailer.Name, retailer.Phone, retailer.Address))
	if err != nil {
		return nil, shared.Storage("insert retailer", err)
	}
	return rt, nil
}

func (r *repository) Update(ctx context.Context, retailer Retailer) (*Retailer, error) {
	rt, err := scanRetailer(r.db.QueryRow(ctx, `
		UPDATE retailers
		SET name = $2, phone = $3, address = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+retailerColumns,
		retailer.ID, retailer.Name, retailer.Phone, retailer.Address))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("retailer %d: %w", retailer.ID, shared.ErrNotFound)
		}
		return nil, shared.Storage("update retailer", err)
	}
	return rt, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM retailers WHERE id = $1`, id)
	if err != nil {
		if db.IsCode(err, db.CodeForeignKeyViolation) {
			return fmt.Errorf("retailer %d has orders: %w", id, shared.ErrConflict)
		}
		return shared.Storage("delete retailer", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("retailer %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) CountOrders(ctx context.Context, id int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE retailer_id = $1`, id).Scan(&n); err != nil {
		return 0, shared.Storage("count retailer orders", err)
	}
	return n, nil
}
