package sale

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"nimbus-pos/internal/db"
	"nimbus-pos/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const saleColumns = `id::text, store_id::text, cashier_id, total_cents, tax_cents, payment_method, status, notes, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func scanSale(row pgx.Row) (*domain.Sale, error) {
	var s domain.Sale
	if err := row.Scan(&s.ID, &s.StoreID, &s.CashierID, &s.TotalCents, &s.TaxCents, &s.PaymentMethod, &s.Status, &s.Notes, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) Create(ctx context.Context, in domain.Sale) (*domain.Sale, error) {
	const insertSale = `
INSERT INTO sales (store_id, cashier_id, total_cents, tax_cents, payment_method, status, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + saleColumns
	const takeStock = `
UPDATE products
SET current_stock = current_stock - $3, updated_at = now()
WHERE store_id = $1 AND id = $2 AND current_stock >= $3
`
	const insertItem = `
INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price_cents, subtotal_cents)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text, created_at
`
	status := in.Status
	if status == "" {
		status = domain.SaleCompleted
	}

	var out *domain.Sale
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		s, err := scanSale(tx.QueryRow(ctx, insertSale, in.StoreID, in.CashierID, in.TotalCents, in.TaxCents, in.PaymentMethod, status, in.Notes))
		if err != nil {
			return db.MapError(err)
		}

		for _, item := range in.Items {
			tag, err := tx.Exec(ctx, takeStock, in.StoreID, item.ProductID, item.Quantity)
			if err != nil {
				return db.MapError(err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: product %s", domain.ErrInsufficientStock, item.ProductID)
			}

			item.SaleID = s.ID
			if err := tx.QueryRow(ctx, insertItem, s.ID, item.ProductID, item.ProductName, item.Quantity,
				item.UnitPriceCents, item.SubtotalCents).Scan(&item.ID, &item.CreatedAt); err != nil {
				return db.MapError(err)
			}
			s.Items = append(s.Items, item)
		}
		out = s
		return nil
	})
	if err != nil {
		r.logger.Printf("sale repo: create store_id=%s cashier=%s items=%d error=%v", in.StoreID, in.CashierID, len(in.Items), err)
		return nil, err
	}
	r.logger.Printf("sale repo: created store_id=%s id=%s total_cents=%d", out.StoreID, out.ID, out.TotalCents)
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, storeID, id string) (*domain.Sale, error) {
	const q = `SELECT ` + saleColumns + ` FROM sales WHERE store_id = $1 AND id = $2`
	s, err := scanSale(r.pool.QueryRow(ctx, q, storeID, id))
	if err != nil {
		return nil, db.MapError(err)
	}
	sales := []domain.Sale{*s}
	if err := r.attachItems(ctx, sales); err != nil {
		return nil, err
	}
	return &sales[0], nil
}

func (r *postgresRepo) ListByRange(ctx context.Context, storeID string, from, to time.Time) ([]domain.Sale, error) {
	const q = `
SELECT ` + saleColumns + `
FROM sales
WHERE store_id = $1 AND created_at >= $2 AND created_at <= $3
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, storeID, from, to)
	if err != nil {
		r.logger.Printf("sale repo: list store_id=%s error=%v", storeID, err)
		return nil, err
	}
	defer rows.Close()

	sales := []domain.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, sales); err != nil {
		return nil, err
	}
	r.logger.Printf("sale repo: list store_id=%s from=%s to=%s count=%d", storeID, from.Format(time.RFC3339), to.Format(time.RFC3339), len(sales))
	return sales, nil
}

func (r *postgresRepo) attachItems(ctx context.Context, sales []domain.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, len(sales))
	index := make(map[string]int, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
		index[s.ID] = i
	}

	const q = `
SELECT id::text, sale_id::text, product_id::text, product_name, quantity, unit_price_cents, subtotal_cents, created_at
FROM sale_items
WHERE sale_id::text = ANY($1)
ORDER BY created_at ASC, id ASC
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPriceCents, &it.SubtotalCents, &it.CreatedAt); err != nil {
			return err
		}
		if i, ok := index[it.SaleID]; ok {
			sales[i].Items = append(sales[i].Items, it)
		}
	}
	return rows.Err()
}
