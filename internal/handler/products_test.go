package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kiwari-pos/storefront/internal/database"
	"github.com/shopspring/decimal"
)

func (m *mockCatalogStore) addProduct(categoryID uuid.UUID, name, unit, price string) database.Product {
	p := database.Product{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Name:       name,
		Unit:       unit,
		Price:      database.DecimalToNumeric(decimal.RequireFromString(price)),
		InStock:    true,
		IsActive:   true,
	}
	m.products[p.ID] = p
	return p
}

func TestListProducts_Filters(t *testing.T) {
	store := newMockCatalogStore()
	staples := store.addCategory("Sembako", 1)
	veg := store.addCategory("Sayur", 2)
	store.addProduct(staples.ID, "Beras Pandan", "kg", "15000")
	store.addProduct(staples.ID, "Telur Ayam", "piece", "2500")
	store.addProduct(veg.ID, "Cabai Rawit", "g", "60000")
	r := catalogRouter(store)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"no filter", "", []string{"Beras Pandan", "Cabai Rawit", "Telur Ayam"}},
		{"category", "?categoryId=" + staples.ID.String(), []string{"Beras Pandan", "Telur Ayam"}},
		{"search is case-insensitive", "?search=BERAS", []string{"Beras Pandan"}},
		{"category and search", "?categoryId=" + veg.ID.String() + "&search=beras", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, r, http.MethodGet, "/products"+tc.query, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
			}
			got := decodeList(t, rr)
			if len(got) != len(tc.want) {
				t.Fatalf("products: got %d, want %d", len(got), len(tc.want))
			}
			for i, name := range tc.want {
				if got[i]["name"] != name {
					t.Errorf("product[%d]: got %v, want %s", i, got[i]["name"], name)
				}
			}
		})
	}
}

func TestListProducts_BlankSearchIsNoFilter(t *testing.T) {
	store := newMockCatalogStore()
	doJSON(t, catalogRouter(store), http.MethodGet, "/products?search=%20%20", nil)
	if store.lastFilter.Search.Valid {
		t.Fatalf("blank search should not filter, got %+v", store.lastFilter.Search)
	}
}

func TestListProducts_InvalidFilter(t *testing.T) {
	r := catalogRouter(newMockCatalogStore())
	for _, q := range []string{"?categoryId=x", "?subcategoryId=y"} {
		rr := doJSON(t, r, http.MethodGet, "/products"+q, nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want %d", q, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestGetProduct(t *testing.T) {
	store := newMockCatalogStore()
	cat := store.addCategory("Sembako", 1)
	rice := store.addProduct(cat.ID, "Beras Pandan", "kg", "15000")
	r := catalogRouter(store)

	rr := doJSON(t, r, http.MethodGet, "/products/"+rice.ID.String(), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if resp["price"] != "15000.00" {
		t.Errorf("price: got %v, want 15000.00", resp["price"])
	}
	if resp["unit"] != "kg" || resp["inStock"] != true {
		t.Errorf("unexpected product: %v", resp)
	}
	if _, ok := resp["subcategoryId"]; ok {
		t.Errorf("subcategoryId should be omitted when unset")
	}

	rr = doJSON(t, r, http.MethodGet, "/products/"+uuid.New().String(), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown product: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestCreateProduct(t *testing.T) {
	store := newMockCatalogStore()
	cat := store.addCategory("Sayur", 1)
	sub := uuid.New()
	r := catalogRouter(store)

	rr := postJSON(t, r, "/products", map[string]interface{}{
		"categoryId":    cat.ID.String(),
		"subcategoryId": sub.String(),
		"name":          "Bayam",
		"unit":          "g",
		"price":         "12000.5",
		"inStock":       false,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["price"] != "12000.50" || resp["inStock"] != false || resp["subcategoryId"] != sub.String() {
		t.Errorf("unexpected product: %v", resp)
	}

	var stored database.Product
	for _, p := range store.products {
		stored = p
	}
	if stored.SubcategoryID != (pgtype.UUID{Bytes: sub, Valid: true}) {
		t.Errorf("subcategory not stored: %+v", stored.SubcategoryID)
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	store := newMockCatalogStore()
	cat := store.addCategory("Sayur", 1)
	r := catalogRouter(store)

	valid := func() map[string]interface{} {
		return map[string]interface{}{"categoryId": cat.ID.String(), "name": "Bayam", "unit": "kg", "price": "1000"}
	}
	tests := []struct {
		name  string
		key   string
		value interface{}
		want  int
	}{
		{"blank name", "name", " ", http.StatusBadRequest},
		{"bad unit", "unit", "box", http.StatusBadRequest},
		{"bad price", "price", "cheap", http.StatusBadRequest},
		{"negative price", "price", "-1", http.StatusBadRequest},
		{"bad category", "categoryId", "x", http.StatusBadRequest},
		{"unknown category", "categoryId", uuid.New().String(), http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := valid()
			body[tc.key] = tc.value
			rr := postJSON(t, r, "/products", body)
			if rr.Code != tc.want {
				t.Fatalf("status: got %d, want %d; body: %s", rr.Code, tc.want, rr.Body.String())
			}
		})
	}
}
