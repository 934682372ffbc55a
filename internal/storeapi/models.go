package storeapi

import (
	"time"

	"github.com/kiwari-pos/storefront/internal/quantity"
	"github.com/shopspring/decimal"
)

// User is the signed-in customer profile.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Role    string `json:"role"`
}

// Session is returned by Login and Register.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type ProfileUpdate struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ImageURL  string `json:"imageUrl,omitempty"`
	SortOrder int    `json:"sortOrder"`
}

type Subcategory struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
}

type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Unit          quantity.Unit   `json:"unit"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	CategoryID    string          `json:"categoryId"`
	SubcategoryID string          `json:"subcategoryId,omitempty"`
	InStock       bool            `json:"inStock"`
}

// Ref converts the wire product into the reference carried by line items.
func (p Product) Ref() quantity.Product {
	return quantity.Product{
		ID:       p.ID,
		Name:     p.Name,
		Unit:     p.Unit,
		Price:    p.Price,
		ImageURL: p.ImageURL,
	}
}

// CartItem is one cart record. Quantity is grams for weight units and a
// count for piece units.
type CartItem struct {
	ID       string  `json:"id"`
	Quantity int64   `json:"quantity"`
	Product  Product `json:"product"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

type OrderRequest struct {
	Items           []quantity.OrderLine `json:"items"`
	DeliveryAddress string               `json:"deliveryAddress"`
	Notes           string               `json:"notes,omitempty"`
}

type OrderItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Unit        quantity.Unit   `json:"unit"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	Status          string          `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryFee     decimal.Decimal `json:"deliveryFee"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	DeliveryAddress string          `json:"deliveryAddress"`
	Notes           string          `json:"notes,omitempty"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// OrderEvent is pushed over the order stream when an order changes.
type OrderEvent struct {
	Type  string `json:"type"`
	Order Order  `json:"payload"`
}

type ComplaintRequest struct {
	OrderID string `json:"orderId,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type Complaint struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
