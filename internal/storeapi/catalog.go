package storeapi

import (
	"context"
	"net/url"
)

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.get(ctx, "/api/categories", nil, &out)
	return out, err
}

func (c *Client) ListSubcategories(ctx context.Context, categoryID string) ([]Subcategory, error) {
	var out []Subcategory
	err := c.get(ctx, "/api/categories/"+url.PathEscape(categoryID)+"/subcategories", nil, &out)
	return out, err
}

// ProductFilter narrows ListProducts. Empty fields are ignored.
type ProductFilter struct {
	CategoryID    string
	SubcategoryID string
	Search        string
}

func (f ProductFilter) values() url.Values {
	q := url.Values{}
	if f.CategoryID != "" {
		q.Set("categoryId", f.CategoryID)
	}
	if f.SubcategoryID != "" {
		q.Set("subcategoryId", f.SubcategoryID)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

func (c *Client) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	var out []Product
	err := c.get(ctx, "/api/products", filter.values(), &out)
	return out, err
}

func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	err := c.get(ctx, "/api/products/"+url.PathEscape(id), nil, &p)
	return p, err
}
