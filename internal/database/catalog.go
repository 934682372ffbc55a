package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listCategories = `SELECT id, name, image_url, sort_order, is_active, created_at
FROM categories
WHERE is_active
ORDER BY sort_order, name`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ImageUrl, &c.SortOrder, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const categoryExists = `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND is_active)`

func (q *Queries) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := q.db.QueryRow(ctx, categoryExists, id).Scan(&ok)
	return ok, err
}

const createCategory = `INSERT INTO categories (name, image_url, sort_order)
VALUES ($1, $2, $3)
RETURNING id, name, image_url, sort_order, is_active, created_at`

type CreateCategoryParams struct {
	Name      string
	ImageUrl  pgtype.Text
	SortOrder int32
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	var c Category
	err := q.db.QueryRow(ctx, createCategory, arg.Name, arg.ImageUrl, arg.SortOrder).Scan(
		&c.ID, &c.Name, &c.ImageUrl, &c.SortOrder, &c.IsActive, &c.CreatedAt)
	return c, err
}

const listSubcategoriesByCategory = `SELECT id, category_id, name, sort_order
FROM subcategories
WHERE category_id = $1
ORDER BY sort_order, name`

func (q *Queries) ListSubcategoriesByCategory(ctx context.Context, categoryID uuid.UUID) ([]Subcategory, error) {
	rows, err := q.db.Query(ctx, listSubcategoriesByCategory, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Subcategory
	for rows.Next() {
		var s Subcategory
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.SortOrder); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const createSubcategory = `INSERT INTO subcategories (category_id, name, sort_order)
VALUES ($1, $2, $3)
RETURNING id, category_id, name, sort_order`

type CreateSubcategoryParams struct {
	CategoryID uuid.UUID
	Name       string
	SortOrder  int32
}

func (q *Queries) CreateSubcategory(ctx context.Context, arg CreateSubcategoryParams) (Subcategory, error) {
	var s Subcategory
	err := q.db.QueryRow(ctx, createSubcategory, arg.CategoryID, arg.Name, arg.SortOrder).Scan(
		&s.ID, &s.CategoryID, &s.Name, &s.SortOrder)
	return s, err
}

const productColumns = `p.id, p.category_id, p.subcategory_id, p.name, p.description, p.unit,
p.price, p.image_url, p.in_stock, p.is_active, p.created_at, p.updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.CategoryID,
		&p.SubcategoryID,
		&p.Name,
		&p.Description,
		&p.Unit,
		&p.Price,
		&p.ImageUrl,
		&p.InStock,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// Unset filters match everything; search is a case-insensitive substring of the name.
const listProducts = `SELECT ` + productColumns + `
FROM products p
WHERE p.is_active
  AND ($1::uuid IS NULL OR p.category_id = $1)
  AND ($2::uuid IS NULL OR p.subcategory_id = $2)
  AND ($3::text IS NULL OR p.name ILIKE '%' || $3 || '%')
ORDER BY p.name`

type ListProductsParams struct {
	CategoryID    pgtype.UUID
	SubcategoryID pgtype.UUID
	Search        pgtype.Text
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts, arg.CategoryID, arg.SubcategoryID, arg.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const getProduct = `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1 AND p.is_active`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, getProduct, id))
}

const createProduct = `INSERT INTO products AS p (category_id, subcategory_id, name, description, unit, price, image_url, in_stock)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + productColumns

type CreateProductParams struct {
	CategoryID    uuid.UUID
	SubcategoryID pgtype.UUID
	Name          string
	Description   pgtype.Text
	Unit          string
	Price         pgtype.Numeric
	ImageUrl      pgtype.Text
	InStock       bool
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct,
		arg.CategoryID,
		arg.SubcategoryID,
		arg.Name,
		arg.Description,
		arg.Unit,
		arg.Price,
		arg.ImageUrl,
		arg.InStock,
	)
	return scanProduct(row)
}
