package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kiwari-pos/storefront/internal/database"
	"github.com/kiwari-pos/storefront/internal/quantity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductStore defines the database methods needed by product handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ProductStore interface {
	ListProducts(ctx context.Context, arg database.ListProductsParams) ([]database.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	CreateProduct(ctx context.Context, arg database.CreateProductParams) (database.Product, error)
}

// ProductHandler serves the product catalog.
type ProductHandler struct {
	store  ProductStore
	logger *zap.Logger
}

func NewProductHandler(store ProductStore, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{store: store, logger: orNop(logger)}
}

// RegisterRoutes registers the read endpoints under /products.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.List)
	r.Get("/products/{id}", h.Get)
}

// RegisterAdminRoutes registers catalog maintenance endpoints.
func (h *ProductHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/products", h.Create)
}

// --- Request / Response types ---

type createProductRequest struct {
	CategoryID    string `json:"categoryId"`
	SubcategoryID string `json:"subcategoryId"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Unit          string `json:"unit"`
	Price         string `json:"price"`
	ImageURL      string `json:"imageUrl"`
	InStock       *bool  `json:"inStock"`
}

type productResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Unit          string     `json:"unit"`
	Price         string     `json:"price"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	CategoryID    uuid.UUID  `json:"categoryId"`
	SubcategoryID *uuid.UUID `json:"subcategoryId,omitempty"`
	InStock       bool       `json:"inStock"`
}

func toProductResponse(p database.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description.String,
		Unit:        p.Unit,
		// Always 2 decimal places for consistent money representation.
		Price:      database.NumericToDecimal(p.Price).StringFixed(2),
		ImageURL:   p.ImageUrl.String,
		CategoryID: p.CategoryID,
		InStock:    p.InStock,
	}
	if p.SubcategoryID.Valid {
		id := uuid.UUID(p.SubcategoryID.Bytes)
		resp.SubcategoryID = &id
	}
	return resp
}

// --- Handlers ---

// List returns active products, optionally narrowed by categoryId,
// subcategoryId and a case-insensitive name search.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var params database.ListProductsParams

	if v := q.Get("categoryId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid categoryId"})
			return
		}
		params.CategoryID = pgtype.UUID{Bytes: id, Valid: true}
	}
	if v := q.Get("subcategoryId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid subcategoryId"})
			return
		}
		params.SubcategoryID = pgtype.UUID{Bytes: id, Valid: true}
	}
	params.Search = database.Text(strings.TrimSpace(q.Get("search")))

	products, err := h.store.ListProducts(r.Context(), params)
	if err != nil {
		serverError(w, h.logger, "list products", err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single active product.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		serverError(w, h.logger, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Create adds a product to the catalog.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid categoryId"})
		return
	}
	subcategoryID := pgtype.UUID{}
	if req.SubcategoryID != "" {
		id, err := uuid.Parse(req.SubcategoryID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid subcategoryId"})
			return
		}
		subcategoryID = pgtype.UUID{Bytes: id, Valid: true}
	}
	unit, err := quantity.ParseUnit(req.Unit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unit must be kg, g or piece"})
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be a non-negative decimal"})
		return
	}
	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	product, err := h.store.CreateProduct(r.Context(), database.CreateProductParams{
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		Name:          req.Name,
		Description:   database.Text(strings.TrimSpace(req.Description)),
		Unit:          string(unit),
		Price:         database.DecimalToNumeric(price),
		ImageUrl:      database.Text(req.ImageURL),
		InStock:       inStock,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category or subcategory not found"})
			return
		}
		serverError(w, h.logger, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(product))
}
