package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kiwari-pos/storefront/internal/database"
	"go.uber.org/zap"
)

// CartStore defines the database methods needed by cart handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CartStore interface {
	ListCartItems(ctx context.Context, userID uuid.UUID) ([]database.ListCartItemsRow, error)
	AddCartItem(ctx context.Context, arg database.AddCartItemParams) (database.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, arg database.UpdateCartItemQuantityParams) (database.CartItem, error)
	DeleteCartItem(ctx context.Context, arg database.DeleteCartItemParams) (uuid.UUID, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
}

// CartHandler serves the signed-in user's server-side cart.
type CartHandler struct {
	store  CartStore
	logger *zap.Logger
}

func NewCartHandler(store CartStore, logger *zap.Logger) *CartHandler {
	return &CartHandler{store: store, logger: orNop(logger)}
}

// RegisterRoutes registers cart endpoints. Mount behind Authenticate.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cart", h.Get)
	r.Delete("/cart", h.Clear)
	r.Post("/cart/items", h.AddItem)
	r.Put("/cart/items/{id}", h.UpdateItem)
	r.Delete("/cart/items/{id}", h.RemoveItem)
}

// --- Request / Response types ---

// Quantities are grams for weight units and a count for piece units.
type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

type cartItemResponse struct {
	ID       uuid.UUID       `json:"id"`
	Quantity int64           `json:"quantity"`
	Product  productResponse `json:"product"`
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
}

func toCartItemResponse(item database.CartItem, product database.Product) cartItemResponse {
	return cartItemResponse{
		ID:       item.ID,
		Quantity: item.Quantity,
		Product:  toProductResponse(product),
	}
}

// --- Handlers ---

// Get returns the cart with each line's product.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	rows, err := h.store.ListCartItems(r.Context(), uid)
	if err != nil {
		serverError(w, h.logger, "list cart items", err)
		return
	}

	resp := cartResponse{Items: make([]cartItemResponse, len(rows))}
	for i, row := range rows {
		resp.Items[i] = toCartItemResponse(row.CartItem, row.Product)
	}
	writeJSON(w, http.StatusOK, resp)
}

// AddItem adds a product to the cart. Adding a product that is already in the
// cart increases that line instead of creating a second one.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid productId"})
		return
	}
	if req.Quantity <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be > 0"})
		return
	}

	product, err := h.store.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		serverError(w, h.logger, "get product", err)
		return
	}
	if !product.InStock {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "product is out of stock"})
		return
	}

	item, err := h.store.AddCartItem(r.Context(), database.AddCartItemParams{
		UserID:    uid,
		ProductID: productID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		serverError(w, h.logger, "add cart item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCartItemResponse(item, product))
}

// UpdateItem sets the quantity of one cart line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	itemID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Quantity <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be > 0"})
		return
	}

	item, err := h.store.UpdateCartItemQuantity(r.Context(), database.UpdateCartItemQuantityParams{
		ID:       itemID,
		UserID:   uid,
		Quantity: req.Quantity,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart item not found"})
			return
		}
		serverError(w, h.logger, "update cart item", err)
		return
	}

	product, err := h.store.GetProduct(r.Context(), item.ProductID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		serverError(w, h.logger, "get product", err)
		return
	}
	// A product delisted since it was added still shows up by id.
	product.ID = item.ProductID
	writeJSON(w, http.StatusOK, toCartItemResponse(item, product))
}

// RemoveItem deletes one cart line.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	itemID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	_, err := h.store.DeleteCartItem(r.Context(), database.DeleteCartItemParams{ID: itemID, UserID: uid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart item not found"})
			return
		}
		serverError(w, h.logger, "delete cart item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear empties the cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if err := h.store.ClearCart(r.Context(), uid); err != nil {
		serverError(w, h.logger, "clear cart", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
