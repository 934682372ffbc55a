package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kiwari-pos/storefront/internal/database"
	"github.com/kiwari-pos/storefront/internal/enum"
	"github.com/kiwari-pos/storefront/internal/middleware"
	"github.com/kiwari-pos/storefront/internal/service"
	"github.com/kiwari-pos/storefront/internal/ws"
	"go.uber.org/zap"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderStore defines the database methods needed by order read/update handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderForUser(ctx context.Context, arg database.GetOrderForUserParams) (database.Order, error)
	ListOrdersByUser(ctx context.Context, arg database.ListOrdersByUserParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// Broadcaster pushes order events to a user's open connections.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToUser(userID uuid.UUID, event ws.Event)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc    OrderServicer
	store  OrderStore
	hub    Broadcaster
	logger *zap.Logger
}

func NewOrderHandler(svc OrderServicer, store OrderStore, hub Broadcaster, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub, logger: orNop(logger)}
}

// RegisterRoutes registers the customer order endpoints. Mount behind Authenticate.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
}

// RegisterAdminRoutes registers order fulfilment endpoints.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Patch("/orders/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type createOrderRequest struct {
	DeliveryAddress string                   `json:"deliveryAddress"`
	Notes           string                   `json:"notes"`
	Items           []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	Status          string              `json:"status"`
	Subtotal        string              `json:"subtotal"`
	DeliveryFee     string              `json:"deliveryFee"`
	TotalAmount     string              `json:"totalAmount"`
	DeliveryAddress string              `json:"deliveryAddress"`
	Notes           string              `json:"notes,omitempty"`
	Items           []orderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

type orderItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	Unit        string    `json:"unit"`
	Quantity    int64     `json:"quantity"`
	UnitPrice   string    `json:"unitPrice"`
	Subtotal    string    `json:"subtotal"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func money(o database.Order) (subtotal, fee, total string) {
	return database.NumericToDecimal(o.Subtotal).StringFixed(2),
		database.NumericToDecimal(o.DeliveryFee).StringFixed(2),
		database.NumericToDecimal(o.TotalAmount).StringFixed(2)
}

func dbOrderToResponse(o database.Order) orderResponse {
	subtotal, fee, total := money(o)
	return orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		Subtotal:        subtotal,
		DeliveryFee:     fee,
		TotalAmount:     total,
		DeliveryAddress: o.DeliveryAddress,
		Notes:           o.Notes.String,
		Items:           []orderItemResponse{},
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func dbOrderItemToResponse(i database.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:          i.ID,
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		Unit:        i.Unit,
		Quantity:    i.Quantity,
		UnitPrice:   database.NumericToDecimal(i.UnitPrice).StringFixed(2),
		Subtotal:    database.NumericToDecimal(i.Subtotal).StringFixed(2),
	}
}

func withItems(o database.Order, items []database.OrderItem) orderResponse {
	resp := dbOrderToResponse(o)
	resp.Items = make([]orderItemResponse, len(items))
	for i, item := range items {
		resp.Items[i] = dbOrderItemToResponse(item)
	}
	return resp
}

// --- Handlers ---

// Create places an order from the submitted lines and empties the cart.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}
	for i, item := range req.Items {
		if item.ProductID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "productId is required"),
			})
			return
		}
		if item.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "quantity must be > 0"),
			})
			return
		}
	}

	svcItems := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		svcItems[i] = service.CreateOrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		UserID:          uid,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		Items:           svcItems,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOutOfStock):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case isValidationError(err):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			serverError(w, h.logger, "create order", err)
		}
		return
	}

	h.logger.Info("order placed",
		zap.String("order_number", result.Order.OrderNumber),
		zap.String("user_id", uid.String()),
		zap.Int("items", len(result.Items)))
	writeJSON(w, http.StatusCreated, withItems(result.Order, result.Items))
}

// List returns the caller's orders, newest first. Items are omitted; use Get.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	orders, err := h.store.ListOrdersByUser(r.Context(), database.ListOrdersByUserParams{
		UserID: uid,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		serverError(w, h.logger, "list orders", err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one order with its items. Customers only see their own orders.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	orderID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var (
		order database.Order
		err   error
	)
	if claims.Role == enum.UserRoleAdmin {
		order, err = h.store.GetOrder(r.Context(), orderID)
	} else {
		order, err = h.store.GetOrderForUser(r.Context(), database.GetOrderForUserParams{
			ID:     orderID,
			UserID: claims.UserID,
		})
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		serverError(w, h.logger, "get order", err)
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		serverError(w, h.logger, "list order items", err)
		return
	}

	writeJSON(w, http.StatusOK, withItems(order, items))
}

// UpdateStatus moves an order along its lifecycle and notifies the customer.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}
	if !isValidOrderStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	current, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		serverError(w, h.logger, "get order for status update", err)
		return
	}

	if err := validateStatusTransition(current.Status, req.Status); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:       orderID,
		Status:   req.Status,
		Status_2: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The status changed between our read and write.
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order status changed, please retry"})
			return
		}
		serverError(w, h.logger, "update order status", err)
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		serverError(w, h.logger, "list order items", err)
		return
	}
	resp := withItems(updated, items)

	if payload, err := json.Marshal(resp); err != nil {
		h.logger.Error("marshal order event", zap.Error(err))
	} else {
		h.hub.BroadcastToUser(updated.UserID, ws.Event{Type: enum.EventOrderUpdated, Payload: payload})
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func formatItemError(idx int, msg string) string {
	return "items[" + strconv.Itoa(idx) + "]: " + msg
}

// isValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidProductID) ||
		errors.Is(err, service.ErrProductNotFound) ||
		errors.Is(err, service.ErrUnknownUnit) ||
		errors.Is(err, service.ErrMissingAddress)
}

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusConfirmed, enum.OrderStatusOutForDelivery,
		enum.OrderStatusDelivered, enum.OrderStatusCancelled:
		return true
	}
	return false
}

// allowedTransitions defines valid status transitions.
// Key is current status, value is the set of statuses it can transition to.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending:        {enum.OrderStatusConfirmed, enum.OrderStatusCancelled},
	enum.OrderStatusConfirmed:      {enum.OrderStatusOutForDelivery, enum.OrderStatusCancelled},
	enum.OrderStatusOutForDelivery: {enum.OrderStatusDelivered},
}

// validateStatusTransition checks if the transition from current to next is allowed.
func validateStatusTransition(current, next string) error {
	allowed, ok := allowedTransitions[current]
	if !ok {
		return fmt.Errorf("cannot transition from %s", current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("cannot transition from %s to %s", current, next)
}
