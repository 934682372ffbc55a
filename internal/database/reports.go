package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Sales reports count every order that was not cancelled. Days are cut in
// Asia/Jakarta time.
const getDailySales = `SELECT
    (o.created_at AT TIME ZONE 'Asia/Jakarta')::date AS sale_date,
    COUNT(*)::int8 AS order_count,
    COALESCE(SUM(o.subtotal), 0)::numeric(14,2) AS subtotal,
    COALESCE(SUM(o.delivery_fee), 0)::numeric(14,2) AS delivery_fees,
    COALESCE(SUM(o.total_amount), 0)::numeric(14,2) AS total_revenue
FROM orders o
WHERE o.status <> 'CANCELLED'
  AND o.created_at >= $1 AND o.created_at < $2
GROUP BY sale_date
ORDER BY sale_date`

type GetDailySalesParams struct {
	CreatedAt   time.Time
	CreatedAt_2 time.Time
}

type GetDailySalesRow struct {
	SaleDate     pgtype.Date
	OrderCount   int64
	Subtotal     pgtype.Numeric
	DeliveryFees pgtype.Numeric
	TotalRevenue pgtype.Numeric
}

func (q *Queries) GetDailySales(ctx context.Context, arg GetDailySalesParams) ([]GetDailySalesRow, error) {
	rows, err := q.db.Query(ctx, getDailySales, arg.CreatedAt, arg.CreatedAt_2)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetDailySalesRow
	for rows.Next() {
		var r GetDailySalesRow
		if err := rows.Scan(&r.SaleDate, &r.OrderCount, &r.Subtotal, &r.DeliveryFees, &r.TotalRevenue); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// Quantities are summed per unit, so a product whose unit changed appears
// once per unit.
const getProductSales = `SELECT
    oi.product_id,
    oi.product_name,
    oi.unit,
    SUM(oi.quantity)::int8 AS quantity_sold,
    SUM(oi.subtotal)::numeric(14,2) AS total_revenue
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.status <> 'CANCELLED'
  AND o.created_at >= $1 AND o.created_at < $2
GROUP BY oi.product_id, oi.product_name, oi.unit
ORDER BY total_revenue DESC
LIMIT $3`

type GetProductSalesParams struct {
	CreatedAt   time.Time
	CreatedAt_2 time.Time
	Limit       int32
}

type GetProductSalesRow struct {
	ProductID    uuid.UUID
	ProductName  string
	Unit         string
	QuantitySold int64
	TotalRevenue pgtype.Numeric
}

func (q *Queries) GetProductSales(ctx context.Context, arg GetProductSalesParams) ([]GetProductSalesRow, error) {
	rows, err := q.db.Query(ctx, getProductSales, arg.CreatedAt, arg.CreatedAt_2, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetProductSalesRow
	for rows.Next() {
		var r GetProductSalesRow
		if err := rows.Scan(&r.ProductID, &r.ProductName, &r.Unit, &r.QuantitySold, &r.TotalRevenue); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getOrderStatusSummary = `SELECT
    status,
    COUNT(*)::int8 AS order_count,
    COALESCE(SUM(total_amount), 0)::numeric(14,2) AS total_amount
FROM orders
WHERE created_at >= $1 AND created_at < $2
GROUP BY status
ORDER BY status`

type GetOrderStatusSummaryParams struct {
	CreatedAt   time.Time
	CreatedAt_2 time.Time
}

type GetOrderStatusSummaryRow struct {
	Status      string
	OrderCount  int64
	TotalAmount pgtype.Numeric
}

func (q *Queries) GetOrderStatusSummary(ctx context.Context, arg GetOrderStatusSummaryParams) ([]GetOrderStatusSummaryRow, error) {
	rows, err := q.db.Query(ctx, getOrderStatusSummary, arg.CreatedAt, arg.CreatedAt_2)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetOrderStatusSummaryRow
	for rows.Next() {
		var r GetOrderStatusSummaryRow
		if err := rows.Scan(&r.Status, &r.OrderCount, &r.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
