package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/chamanbahar/cbm-sales/internal/app"
	"github.com/chamanbahar/cbm-sales/internal/cart"
	"github.com/chamanbahar/cbm-sales/internal/catalog"
	"github.com/chamanbahar/cbm-sales/internal/platform/db"
)

func main() {
	ctx := context.Background()
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	pool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	fmt.Println("→ Applying schema...")
	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	fmt.Println("→ Seeding retailers...")
	ids, err := seedRetailers(ctx, pool)
	if err != nil {
		log.Fatalf("seed retailers: %v", err)
	}

	fmt.Println("→ Seeding demo order...")
	if err := seedDemoOrder(ctx, pool, ids[0], catalog.Default()); err != nil {
		log.Fatalf("seed demo order: %v", err)
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func seedRetailers(ctx context.Context, pool *pgxpool.Pool) ([]int64, error) {
	retailers := []struct {
		Name, Phone, Address string
	}{
		{"Sharma General Store", "9876500001", "Station Road, Barabanki"},
		{"Gupta Kirana", "9876500002", "Main Bazaar, Lucknow"},
		{"Verma Traders", "9876500003", "Civil Lines, Sitapur"},
	}
	ids := make([]int64, 0, len(retailers))
	for _, r := range retailers {
		var id int64
		err := pool.QueryRow(ctx, `SELECT id FROM retailers WHERE name = $1 LIMIT 1`, r.Name).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			err = pool.QueryRow(ctx,
				`INSERT INTO retailers (name, phone, address) VALUES ($1, $2, $3) RETURNING id`,
				r.Name, r.Phone, r.Address).Scan(&id)
		}
		if err != nil {
			return nil, fmt.Errorf("retailer %s: %w", r.Name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// seedDemoOrder writes one pending order for retailerID unless it already has
// orders.
func seedDemoOrder(ctx context.Context, pool *pgxpool.Pool, retailerID int64, cat *catalog.Catalog) error {
	var existing int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE retailer_id = $1`, retailerID).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}
	products := cat.All()
	if len(products) < 2 {
		return nil
	}
	c := cart.New()
	if err := c.Upsert(products[0], 2, catalog.UnitBundle, decimal.Zero); err != nil {
		return err
	}
	if err := c.Upsert(products[1], 1, catalog.UnitBori, decimal.Zero); err != nil {
		return err
	}

	return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		var orderID int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO orders (retailer_id, order_date, total_amount, notes) VALUES ($1, NOW(), $2, $3) RETURNING id`,
			retailerID, c.Total(), "Demo order").Scan(&orderID); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, l := range c.Lines() {
			batch.Queue(`INSERT INTO order_items (order_id, product_id, product_name, rate, quantity, unit, discount, subtotal, image_ref)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				orderID, l.Product.ID, l.Product.Name, l.Rate(), l.Quantity, string(l.Unit), l.Discount, l.Subtotal(), l.Product.ImageRef)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}
