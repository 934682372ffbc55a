package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kiwari-pos/storefront/internal/database"
	"github.com/kiwari-pos/storefront/internal/enum"
	"go.uber.org/zap"
)

// SupportStore defines the database methods needed by complaint and contact
// handlers. Satisfied by *database.Queries; narrow interface for testability.
type SupportStore interface {
	CreateComplaint(ctx context.Context, arg database.CreateComplaintParams) (database.Complaint, error)
	ListComplaintsByUser(ctx context.Context, userID uuid.UUID) ([]database.Complaint, error)
	GetOrderForUser(ctx context.Context, arg database.GetOrderForUserParams) (database.Order, error)
	CreateContactMessage(ctx context.Context, arg database.CreateContactMessageParams) (database.ContactMessage, error)
	ListComplaints(ctx context.Context, arg database.ListComplaintsParams) ([]database.Complaint, error)
	UpdateComplaintStatus(ctx context.Context, arg database.UpdateComplaintStatusParams) (database.Complaint, error)
}

// SupportHandler handles complaints and the public contact form.
type SupportHandler struct {
	store  SupportStore
	logger *zap.Logger
}

func NewSupportHandler(store SupportStore, logger *zap.Logger) *SupportHandler {
	return &SupportHandler{store: store, logger: orNop(logger)}
}

// RegisterRoutes registers the public contact endpoint.
func (h *SupportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/contact", h.Contact)
}

// RegisterComplaintRoutes registers complaint endpoints. Mount behind Authenticate.
func (h *SupportHandler) RegisterComplaintRoutes(r chi.Router) {
	r.Post("/complaints", h.CreateComplaint)
	r.Get("/complaints", h.ListComplaints)
}

// RegisterAdminRoutes registers complaint triage. Mount behind RequireRole(ADMIN).
func (h *SupportHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/admin/complaints", h.ListAllComplaints)
	r.Patch("/admin/complaints/{id}/status", h.UpdateComplaintStatus)
}

// --- Request / Response types ---

type complaintRequest struct {
	OrderID string `json:"orderId"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type complaintResponse struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	OrderID   *uuid.UUID `json:"orderId,omitempty"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func toComplaintResponse(c database.Complaint) complaintResponse {
	resp := complaintResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Subject:   c.Subject,
		Message:   c.Message,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
	if c.OrderID.Valid {
		id := uuid.UUID(c.OrderID.Bytes)
		resp.OrderID = &id
	}
	return resp
}

// --- Handlers ---

// CreateComplaint files a complaint, optionally about one of the caller's orders.
func (h *SupportHandler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req complaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if req.Subject == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "subject and message are required"})
		return
	}

	orderID := pgtype.UUID{}
	if req.OrderID != "" {
		id, err := uuid.Parse(req.OrderID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid orderId"})
			return
		}
		if _, err := h.store.GetOrderForUser(r.Context(), database.GetOrderForUserParams{ID: id, UserID: uid}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
				return
			}
			serverError(w, h.logger, "get order for complaint", err)
			return
		}
		orderID = pgtype.UUID{Bytes: id, Valid: true}
	}

	complaint, err := h.store.CreateComplaint(r.Context(), database.CreateComplaintParams{
		UserID:  uid,
		OrderID: orderID,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		serverError(w, h.logger, "create complaint", err)
		return
	}
	writeJSON(w, http.StatusCreated, toComplaintResponse(complaint))
}

// ListComplaints returns the caller's complaints, newest first.
func (h *SupportHandler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	complaints, err := h.store.ListComplaintsByUser(r.Context(), uid)
	if err != nil {
		serverError(w, h.logger, "list complaints", err)
		return
	}

	resp := make([]complaintResponse, len(complaints))
	for i, c := range complaints {
		resp[i] = toComplaintResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListAllComplaints lists every customer's complaints, optionally filtered by
// status, newest first.
func (h *SupportHandler) ListAllComplaints(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !isValidComplaintStatus(status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 200 {
		limit = 200
	}
	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	complaints, err := h.store.ListComplaints(r.Context(), database.ListComplaintsParams{
		Status: status,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		serverError(w, h.logger, "list all complaints", err)
		return
	}

	resp := make([]complaintResponse, len(complaints))
	for i, c := range complaints {
		resp[i] = toComplaintResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateComplaintStatus resolves or reopens a complaint.
func (h *SupportHandler) UpdateComplaintStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !isValidComplaintStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	c, err := h.store.UpdateComplaintStatus(r.Context(), database.UpdateComplaintStatusParams{ID: id, Status: req.Status})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "complaint not found"})
			return
		}
		serverError(w, h.logger, "update complaint status", err)
		return
	}

	h.logger.Info("complaint status changed",
		zap.String("complaint_id", c.ID.String()),
		zap.String("status", c.Status))
	writeJSON(w, http.StatusOK, toComplaintResponse(c))
}

func isValidComplaintStatus(s string) bool {
	return s == enum.ComplaintStatusOpen || s == enum.ComplaintStatusResolved
}

// Contact stores a message from the public contact form.
func (h *SupportHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, email and message are required"})
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email"})
		return
	}

	if _, err := h.store.CreateContactMessage(r.Context(), database.CreateContactMessageParams{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}); err != nil {
		serverError(w, h.logger, "create contact message", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "received"})
}
