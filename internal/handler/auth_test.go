package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kiwari-pos/storefront/internal/auth"
	"github.com/kiwari-pos/storefront/internal/database"
	"github.com/kiwari-pos/storefront/internal/handler"
	"github.com/kiwari-pos/storefront/internal/middleware"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

// --- Mock store ---

type mockAuthStore struct {
	userByEmail map[string]database.User
	userByID    map[uuid.UUID]database.User
}

func newMockStore() *mockAuthStore {
	return &mockAuthStore{
		userByEmail: make(map[string]database.User),
		userByID:    make(map[uuid.UUID]database.User),
	}
}

func (m *mockAuthStore) addUser(u database.User) {
	m.userByEmail[strings.ToLower(u.Email)] = u
	m.userByID[u.ID] = u
}

func (m *mockAuthStore) CreateUser(_ context.Context, arg database.CreateUserParams) (database.User, error) {
	if _, ok := m.userByEmail[strings.ToLower(arg.Email)]; ok {
		return database.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	}
	u := database.User{
		ID:             uuid.New(),
		Name:           arg.Name,
		Email:          arg.Email,
		Phone:          arg.Phone,
		HashedPassword: arg.HashedPassword,
		Role:           arg.Role,
	}
	m.addUser(u)
	return u, nil
}

func (m *mockAuthStore) GetUserByEmail(_ context.Context, email string) (database.User, error) {
	u, ok := m.userByEmail[strings.ToLower(email)]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockAuthStore) GetUserByID(_ context.Context, id uuid.UUID) (database.User, error) {
	u, ok := m.userByID[id]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockAuthStore) UpdateUserProfile(_ context.Context, arg database.UpdateUserProfileParams) (database.User, error) {
	u, ok := m.userByID[arg.ID]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	u.Name, u.Phone, u.Address = arg.Name, arg.Phone, arg.Address
	m.addUser(u)
	return u, nil
}

// --- Helpers ---

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func makeTestUser(t *testing.T) database.User {
	t.Helper()
	return database.User{
		ID:             uuid.New(),
		Name:           "Siti Customer",
		Email:          "siti@test.com",
		HashedPassword: hashPassword(t, "correct-password"),
		Role:           "CUSTOMER",
		Address:        pgtype.Text{String: "Jl. Merdeka 1", Valid: true},
	}
}

// asUser attaches claims for the given user the way Authenticate would.
func asUser(id uuid.UUID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &auth.Claims{UserID: id, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("marshal request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, router, http.MethodPost, path, body)
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func authRouter(store *mockAuthStore, claims func(http.Handler) http.Handler) http.Handler {
	h := handler.NewAuthHandler(store, testSecret, nil)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.Group(func(r chi.Router) {
		if claims != nil {
			r.Use(claims)
		}
		h.RegisterProfileRoutes(r)
	})
	return r
}

// --- Register tests ---

func TestRegister_CreatesCustomerAndSignsIn(t *testing.T) {
	store := newMockStore()
	r := authRouter(store, nil)

	rr := postJSON(t, r, "/auth/register", map[string]string{
		"name":     " Budi ",
		"email":    "budi@test.com",
		"phone":    "0812",
		"password": "s3cret-pass",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	token, _ := resp["token"].(string)
	claims, err := auth.ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("token should validate: %v", err)
	}
	if claims.Role != "CUSTOMER" {
		t.Errorf("role: got %q, want CUSTOMER", claims.Role)
	}

	user := resp["user"].(map[string]interface{})
	if user["name"] != "Budi" {
		t.Errorf("name: got %v, want trimmed Budi", user["name"])
	}
	if user["id"] != claims.UserID.String() {
		t.Errorf("user id %v does not match token subject %s", user["id"], claims.UserID)
	}

	stored := store.userByEmail["budi@test.com"]
	if bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("s3cret-pass")) != nil {
		t.Error("stored password is not a bcrypt hash of the submitted one")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newMockStore()
	store.addUser(makeTestUser(t))
	r := authRouter(store, nil)

	rr := postJSON(t, r, "/auth/register", map[string]string{
		"name":     "Siti Again",
		"email":    "SITI@test.com",
		"password": "another-pass",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
	}{
		{"malformed body", "not an object"},
		{"missing name", map[string]string{"email": "a@test.com", "password": "long-enough"}},
		{"missing email", map[string]string{"name": "A", "password": "long-enough"}},
		{"bad email", map[string]string{"name": "A", "email": "nope", "password": "long-enough"}},
		{"short password", map[string]string{"name": "A", "email": "a@test.com", "password": "short"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := authRouter(newMockStore(), nil)
			rr := postJSON(t, r, "/auth/register", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
			}
		})
	}
}

// --- Login tests ---

func TestLogin_ValidCredentials(t *testing.T) {
	store := newMockStore()
	user := makeTestUser(t)
	store.addUser(user)
	r := authRouter(store, nil)

	rr := postJSON(t, r, "/auth/login", map[string]string{
		"email":    "siti@test.com",
		"password": "correct-password",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	claims, err := auth.ValidateToken(testSecret, resp["token"].(string))
	if err != nil {
		t.Fatalf("token should validate: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("user id: got %s, want %s", claims.UserID, user.ID)
	}
	u := resp["user"].(map[string]interface{})
	if u["address"] != "Jl. Merdeka 1" {
		t.Errorf("address: got %v", u["address"])
	}
	if _, leaked := u["hashedPassword"]; leaked {
		t.Error("password hash must not be returned")
	}
}

func TestLogin_Rejects(t *testing.T) {
	store := newMockStore()
	store.addUser(makeTestUser(t))
	r := authRouter(store, nil)

	tests := []struct {
		name     string
		email    string
		password string
		want     int
	}{
		{"wrong password", "siti@test.com", "wrong-password", http.StatusUnauthorized},
		{"unknown email", "nobody@test.com", "correct-password", http.StatusUnauthorized},
		{"missing password", "siti@test.com", "", http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := postJSON(t, r, "/auth/login", map[string]string{"email": tc.email, "password": tc.password})
			if rr.Code != tc.want {
				t.Fatalf("status: got %d, want %d", rr.Code, tc.want)
			}
			if tc.want == http.StatusUnauthorized {
				if got := decodeResponse(t, rr)["error"]; got != "invalid credentials" {
					t.Errorf("error: got %v, want invalid credentials", got)
				}
			}
		})
	}
}

// --- Profile tests ---

func TestMe(t *testing.T) {
	store := newMockStore()
	user := makeTestUser(t)
	store.addUser(user)

	rr := doJSON(t, authRouter(store, asUser(user.ID, "CUSTOMER")), http.MethodGet, "/auth/me", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if got := decodeResponse(t, rr)["email"]; got != user.Email {
		t.Errorf("email: got %v, want %s", got, user.Email)
	}
}

func TestMe_UnknownUser(t *testing.T) {
	rr := doJSON(t, authRouter(newMockStore(), asUser(uuid.New(), "CUSTOMER")), http.MethodGet, "/auth/me", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestMe_NoClaims(t *testing.T) {
	rr := doJSON(t, authRouter(newMockStore(), nil), http.MethodGet, "/auth/me", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestUpdateMe(t *testing.T) {
	store := newMockStore()
	user := makeTestUser(t)
	store.addUser(user)
	r := authRouter(store, asUser(user.ID, "CUSTOMER"))

	rr := doJSON(t, r, http.MethodPut, "/auth/me", map[string]string{
		"name":    "Siti N.",
		"phone":   "0813",
		"address": "",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["name"] != "Siti N." || resp["phone"] != "0813" {
		t.Errorf("profile not updated: %v", resp)
	}
	if _, ok := resp["address"]; ok {
		t.Errorf("cleared address should be omitted, got %v", resp["address"])
	}
	if store.userByID[user.ID].Address.Valid {
		t.Error("cleared address should be stored as NULL")
	}

	rr = doJSON(t, r, http.MethodPut, "/auth/me", map[string]string{"name": "  "})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("blank name: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
