package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, user_id, order_number, status, subtotal, delivery_fee, total_amount,
delivery_address, notes, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.OrderNumber,
		&o.Status,
		&o.Subtotal,
		&o.DeliveryFee,
		&o.TotalAmount,
		&o.DeliveryAddress,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

// Order numbers look like GRC-00042; the numeric tail starts at offset 5.
const getNextOrderNumber = `SELECT (COALESCE(MAX(CAST(SUBSTRING(order_number FROM 5) AS INTEGER)), 0) + 1)::int4
FROM orders`

func (q *Queries) GetNextOrderNumber(ctx context.Context) (int32, error) {
	var n int32
	err := q.db.QueryRow(ctx, getNextOrderNumber).Scan(&n)
	return n, err
}

const getProductForOrder = `SELECT id, name, unit, price, in_stock
FROM products
WHERE id = $1 AND is_active`

type GetProductForOrderRow struct {
	ID      uuid.UUID
	Name    string
	Unit    string
	Price   pgtype.Numeric
	InStock bool
}

func (q *Queries) GetProductForOrder(ctx context.Context, id uuid.UUID) (GetProductForOrderRow, error) {
	var r GetProductForOrderRow
	err := q.db.QueryRow(ctx, getProductForOrder, id).Scan(&r.ID, &r.Name, &r.Unit, &r.Price, &r.InStock)
	return r, err
}

const createOrder = `INSERT INTO orders (user_id, order_number, subtotal, delivery_fee, total_amount, delivery_address, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	UserID          uuid.UUID
	OrderNumber     string
	Subtotal        pgtype.Numeric
	DeliveryFee     pgtype.Numeric
	TotalAmount     pgtype.Numeric
	DeliveryAddress string
	Notes           pgtype.Text
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.UserID,
		arg.OrderNumber,
		arg.Subtotal,
		arg.DeliveryFee,
		arg.TotalAmount,
		arg.DeliveryAddress,
		arg.Notes,
	)
	return scanOrder(row)
}

const orderItemColumns = `id, order_id, product_id, product_name, unit, quantity, unit_price, subtotal`

func scanOrderItem(row interface{ Scan(...interface{}) error }) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(&i.ID, &i.OrderID, &i.ProductID, &i.ProductName, &i.Unit, &i.Quantity, &i.UnitPrice, &i.Subtotal)
	return i, err
}

const createOrderItem = `INSERT INTO order_items (order_id, product_id, product_name, unit, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + orderItemColumns

type CreateOrderItemParams struct {
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Unit        string
	Quantity    int64
	UnitPrice   pgtype.Numeric
	Subtotal    pgtype.Numeric
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.ProductID,
		arg.ProductName,
		arg.Unit,
		arg.Quantity,
		arg.UnitPrice,
		arg.Subtotal,
	)
	return scanOrderItem(row)
}

const getOrder = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderForUser = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`

type GetOrderForUserParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) GetOrderForUser(ctx context.Context, arg GetOrderForUserParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUser, arg.ID, arg.UserID))
}

const listOrdersByUser = `SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

type ListOrdersByUserParams struct {
	UserID uuid.UUID
	Limit  int32
	Offset int32
}

func (q *Queries) ListOrdersByUser(ctx context.Context, arg ListOrdersByUserParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByUser, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const listOrderItemsByOrder = `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY id`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		i, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// Status_2 is the status the caller read; no row comes back if it has changed since.
const updateOrderStatus = `UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID       uuid.UUID
	Status   string
	Status_2 string
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status, arg.Status_2))
}
