package database

import (
	"context"

	"github.com/google/uuid"
)

const cartItemColumns = `c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at`

func scanCartItem(row interface{ Scan(...interface{}) error }) (CartItem, error) {
	var c CartItem
	err := row.Scan(&c.ID, &c.UserID, &c.ProductID, &c.Quantity, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const listCartItems = `SELECT ` + cartItemColumns + `, ` + productColumns + `
FROM cart_items c
JOIN products p ON p.id = c.product_id
WHERE c.user_id = $1
ORDER BY c.created_at, c.id`

type ListCartItemsRow struct {
	CartItem CartItem
	Product  Product
}

func (q *Queries) ListCartItems(ctx context.Context, userID uuid.UUID) ([]ListCartItemsRow, error) {
	rows, err := q.db.Query(ctx, listCartItems, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListCartItemsRow
	for rows.Next() {
		var i ListCartItemsRow
		c, p := &i.CartItem, &i.Product
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.ProductID, &c.Quantity, &c.CreatedAt, &c.UpdatedAt,
			&p.ID, &p.CategoryID, &p.SubcategoryID, &p.Name, &p.Description, &p.Unit,
			&p.Price, &p.ImageUrl, &p.InStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// Adding a product already in the cart merges into its line.
const addCartItem = `INSERT INTO cart_items AS c (user_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, product_id)
DO UPDATE SET quantity = c.quantity + EXCLUDED.quantity, updated_at = now()
RETURNING ` + cartItemColumns

type AddCartItemParams struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int64
}

func (q *Queries) AddCartItem(ctx context.Context, arg AddCartItemParams) (CartItem, error) {
	return scanCartItem(q.db.QueryRow(ctx, addCartItem, arg.UserID, arg.ProductID, arg.Quantity))
}

const updateCartItemQuantity = `UPDATE cart_items AS c
SET quantity = $3, updated_at = now()
WHERE c.id = $1 AND c.user_id = $2
RETURNING ` + cartItemColumns

type UpdateCartItemQuantityParams struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Quantity int64
}

func (q *Queries) UpdateCartItemQuantity(ctx context.Context, arg UpdateCartItemQuantityParams) (CartItem, error) {
	return scanCartItem(q.db.QueryRow(ctx, updateCartItemQuantity, arg.ID, arg.UserID, arg.Quantity))
}

const deleteCartItem = `DELETE FROM cart_items WHERE id = $1 AND user_id = $2 RETURNING id`

type DeleteCartItemParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) DeleteCartItem(ctx context.Context, arg DeleteCartItemParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deleteCartItem, arg.ID, arg.UserID).Scan(&id)
	return id, err
}

const clearCart = `DELETE FROM cart_items WHERE user_id = $1`

func (q *Queries) ClearCart(ctx context.Context, userID uuid.UUID) error {
	_, err := q.db.Exec(ctx, clearCart, userID)
	return err
}
