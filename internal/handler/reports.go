package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kiwari-pos/storefront/internal/database"
	"go.uber.org/zap"
)

// ReportsStore defines the database methods needed by report handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportsStore interface {
	GetDailySales(ctx context.Context, arg database.GetDailySalesParams) ([]database.GetDailySalesRow, error)
	GetProductSales(ctx context.Context, arg database.GetProductSalesParams) ([]database.GetProductSalesRow, error)
	GetOrderStatusSummary(ctx context.Context, arg database.GetOrderStatusSummaryParams) ([]database.GetOrderStatusSummaryRow, error)
}

// ReportsHandler handles the admin sales reports.
type ReportsHandler struct {
	store  ReportsStore
	logger *zap.Logger
	now    func() time.Time
}

func NewReportsHandler(store ReportsStore, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{store: store, logger: orNop(logger), now: time.Now}
}

// RegisterRoutes registers report endpoints. Mount behind RequireRole(ADMIN).
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/daily-sales", h.DailySales)
	r.Get("/reports/product-sales", h.ProductSales)
	r.Get("/reports/order-status", h.OrderStatus)
}

// --- Response types ---

type dailySalesResponse struct {
	Date         string `json:"date"`
	OrderCount   int64  `json:"orderCount"`
	Subtotal     string `json:"subtotal"`
	DeliveryFees string `json:"deliveryFees"`
	TotalRevenue string `json:"totalRevenue"`
}

type productSalesResponse struct {
	ProductID    uuid.UUID `json:"productId"`
	ProductName  string    `json:"productName"`
	Unit         string    `json:"unit"`
	QuantitySold int64     `json:"quantitySold"`
	TotalRevenue string    `json:"totalRevenue"`
}

type orderStatusResponse struct {
	Status      string `json:"status"`
	OrderCount  int64  `json:"orderCount"`
	TotalAmount string `json:"totalAmount"`
}

// --- Handlers ---

// DailySales returns per-day totals of non-cancelled orders for a date range.
func (h *ReportsHandler) DailySales(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := parseDateRange(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, err := h.store.GetDailySales(r.Context(), database.GetDailySalesParams{
		CreatedAt:   startDate,
		CreatedAt_2: endDate,
	})
	if err != nil {
		serverError(w, h.logger, "get daily sales", err)
		return
	}

	resp := make([]dailySalesResponse, len(rows))
	for i, row := range rows {
		date := "N/A"
		if row.SaleDate.Valid {
			date = row.SaleDate.Time.Format("2006-01-02")
		}
		resp[i] = dailySalesResponse{
			Date:         date,
			OrderCount:   row.OrderCount,
			Subtotal:     numericString(row.Subtotal),
			DeliveryFees: numericString(row.DeliveryFees),
			TotalRevenue: numericString(row.TotalRevenue),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ProductSales returns the best selling products by revenue. Quantities are
// grams for weight units and counts for piece units.
func (h *ReportsHandler) ProductSales(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := parseDateRange(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
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

	rows, err := h.store.GetProductSales(r.Context(), database.GetProductSalesParams{
		CreatedAt:   startDate,
		CreatedAt_2: endDate,
		Limit:       int32(limit),
	})
	if err != nil {
		serverError(w, h.logger, "get product sales", err)
		return
	}

	resp := make([]productSalesResponse, len(rows))
	for i, row := range rows {
		resp[i] = productSalesResponse{
			ProductID:    row.ProductID,
			ProductName:  row.ProductName,
			Unit:         row.Unit,
			QuantitySold: row.QuantitySold,
			TotalRevenue: numericString(row.TotalRevenue),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// OrderStatus returns order counts and amounts per status, cancelled included.
func (h *ReportsHandler) OrderStatus(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := parseDateRange(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, err := h.store.GetOrderStatusSummary(r.Context(), database.GetOrderStatusSummaryParams{
		CreatedAt:   startDate,
		CreatedAt_2: endDate,
	})
	if err != nil {
		serverError(w, h.logger, "get order status summary", err)
		return
	}

	resp := make([]orderStatusResponse, len(rows))
	for i, row := range rows {
		resp[i] = orderStatusResponse{
			Status:      row.Status,
			OrderCount:  row.OrderCount,
			TotalAmount: numericString(row.TotalAmount),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func numericString(n pgtype.Numeric) string {
	return database.NumericToDecimal(n).StringFixed(2)
}

// reportLocation is the store's business timezone (WIB, UTC+7).
func reportLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		return time.FixedZone("WIB", 7*3600)
	}
	return loc
}

// parseDateRange parses startDate and endDate (YYYY-MM-DD) in Asia/Jakarta
// time, defaulting to the last 30 days. The returned end is exclusive (the
// midnight after endDate).
func parseDateRange(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	const layout = "2006-01-02"
	loc := reportLocation()
	now = now.In(loc)

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	startDate := today.AddDate(0, 0, -30)
	endDate := today.AddDate(0, 0, 1)

	if s := r.URL.Query().Get("startDate"); s != "" {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid startDate, want YYYY-MM-DD")
		}
		startDate = t
	}
	if s := r.URL.Query().Get("endDate"); s != "" {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid endDate, want YYYY-MM-DD")
		}
		endDate = t.AddDate(0, 0, 1)
	}

	if !startDate.Before(endDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("startDate must not be after endDate")
	}
	return startDate, endDate, nil
}
