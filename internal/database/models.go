package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID             uuid.UUID
	Name           string
	Email          string
	Phone          pgtype.Text
	Address        pgtype.Text
	HashedPassword string
	Role           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Category struct {
	ID        uuid.UUID
	Name      string
	ImageUrl  pgtype.Text
	SortOrder int32
	IsActive  bool
	CreatedAt time.Time
}

type Subcategory struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
	Name       string
	SortOrder  int32
}

type Product struct {
	ID            uuid.UUID
	CategoryID    uuid.UUID
	SubcategoryID pgtype.UUID
	Name          string
	Description   pgtype.Text
	Unit          string
	Price         pgtype.Numeric
	ImageUrl      pgtype.Text
	InStock       bool
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CartItem.Quantity is grams for weight units and a count for piece units.
type CartItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	OrderNumber     string
	Status          string
	Subtotal        pgtype.Numeric
	DeliveryFee     pgtype.Numeric
	TotalAmount     pgtype.Numeric
	DeliveryAddress string
	Notes           pgtype.Text
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Unit        string
	Quantity    int64
	UnitPrice   pgtype.Numeric
	Subtotal    pgtype.Numeric
}

type Complaint struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	OrderID   pgtype.UUID
	Subject   string
	Message   string
	Status    string
	CreatedAt time.Time
}

type ContactMessage struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}
