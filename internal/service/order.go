package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kiwari-pos/storefront/internal/database"
	"github.com/kiwari-pos/storefront/internal/quantity"
	"github.com/shopspring/decimal"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems       = errors.New("items are required")
	ErrInvalidQuantity  = errors.New("quantity must be > 0")
	ErrInvalidProductID = errors.New("invalid productId")
	ErrProductNotFound  = errors.New("product not found")
	ErrOutOfStock       = errors.New("product is out of stock")
	ErrUnknownUnit      = errors.New("product has an unknown unit")
	ErrMissingAddress   = errors.New("deliveryAddress is required")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextOrderNumber(ctx context.Context) (int32, error)
	GetProductForOrder(ctx context.Context, id uuid.UUID) (database.GetProductForOrderRow, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	UserID          uuid.UUID
	DeliveryAddress string
	Notes           string
	Items           []CreateOrderItemRequest
}

// CreateOrderItemRequest is one order line. Quantity is grams for weight
// units and a count for piece units.
type CreateOrderItemRequest struct {
	ProductID string
	Quantity  int64
}

// CreateOrderResult is the created order with its items.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles order business logic.
type OrderService struct {
	pool        TxBeginner
	newStore    NewOrderStore
	deliveryFee decimal.Decimal
}

func NewOrderService(pool TxBeginner, newStore NewOrderStore, deliveryFee decimal.Decimal) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, deliveryFee: deliveryFee}
}

// CreateOrder validates, prices and creates an order atomically, then empties
// the user's cart in the same transaction. Retries up to
// maxOrderNumberRetries times when a concurrent order took the same number.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return nil, ErrMissingAddress
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		if _, err := uuid.Parse(item.ProductID); err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidProductID)
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req)
		if err == nil {
			return result, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// isOrderNumberConflict checks if the error is a unique constraint violation
// on the order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key"
	}
	return false
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	nextNum, err := store.GetNextOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}
	orderNumber := fmt.Sprintf("GRC-%05d", nextNum)

	subtotal := decimal.Zero
	items := make([]database.CreateOrderItemParams, 0, len(req.Items))
	for i, item := range req.Items {
		params, err := priceItem(ctx, store, item)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
		subtotal = subtotal.Add(database.NumericToDecimal(params.Subtotal))
		items = append(items, params)
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		UserID:          req.UserID,
		OrderNumber:     orderNumber,
		Subtotal:        database.DecimalToNumeric(subtotal),
		DeliveryFee:     database.DecimalToNumeric(s.deliveryFee),
		TotalAmount:     database.DecimalToNumeric(subtotal.Add(s.deliveryFee)),
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		Notes:           database.Text(strings.TrimSpace(req.Notes)),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	created := make([]database.OrderItem, 0, len(items))
	for _, params := range items {
		params.OrderID = order.ID
		item, err := store.CreateOrderItem(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		created = append(created, item)
	}

	if err := store.ClearCart(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: created}, nil
}

// priceItem looks the product up and prices the line with the same engine the
// storefront uses: grams become kilograms, pieces stay counts.
func priceItem(ctx context.Context, store OrderStore, item CreateOrderItemRequest) (database.CreateOrderItemParams, error) {
	productID := uuid.MustParse(item.ProductID)
	product, err := store.GetProductForOrder(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.CreateOrderItemParams{}, ErrProductNotFound
		}
		return database.CreateOrderItemParams{}, fmt.Errorf("get product: %w", err)
	}
	if !product.InStock {
		return database.CreateOrderItemParams{}, ErrOutOfStock
	}
	unit, err := quantity.ParseUnit(product.Unit)
	if err != nil {
		return database.CreateOrderItemParams{}, ErrUnknownUnit
	}

	price := database.NumericToDecimal(product.Price)
	line := quantity.NewLineItem(item.ProductID, quantity.Product{
		ID:    item.ProductID,
		Name:  product.Name,
		Unit:  unit,
		Price: price,
	}, quantity.Codec{}.FromServer(unit, item.Quantity))

	return database.CreateOrderItemParams{
		ProductID:   productID,
		ProductName: product.Name,
		Unit:        product.Unit,
		Quantity:    item.Quantity,
		UnitPrice:   database.DecimalToNumeric(price),
		Subtotal:    database.DecimalToNumeric(quantity.Price(line)),
	}, nil
}
