package bluemedix

import (
	"context"

	"bluemedix-workflow/internal/common/validation"
	"bluemedix-workflow/internal/models"
)

func (c *Client) CreateCategory(ctx context.Context, input models.CategoryInput) (*models.Category, error) {
	var out struct {
		Category models.Category `json:"category"`
	}
	if err := c.call(ctx, "POST", "/api/categories", input, validation.Envelope("category", validation.Category), &out); err != nil {
		return nil, err
	}
	return &out.Category, nil
}

func (c *Client) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	var out struct {
		Product models.Product `json:"product"`
	}
	if err := c.call(ctx, "POST", "/api/products", input, validation.Envelope("product", validation.Product), &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out struct {
		Products []models.Product `json:"products"`
	}
	if err := c.call(ctx, "GET", "/api/products", nil, validation.Envelope("products", validation.ListOf(validation.Product)), &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var out struct {
		Product models.Product `json:"product"`
	}
	if err := c.call(ctx, "GET", entityPath("/api/products/%s", id), nil, validation.Envelope("product", validation.Product), &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	var out struct {
		Product models.Product `json:"product"`
	}
	if err := c.call(ctx, "PUT", entityPath("/api/products/%s", id), update, validation.Envelope("product", validation.Product), &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

func (c *Client) UpdateProductStock(ctx context.Context, id string, adj models.StockAdjustment) (*models.Product, error) {
	var out struct {
		Product models.Product `json:"product"`
	}
	if err := c.call(ctx, "PATCH", entityPath("/api/products/%s/stock", id), adj, validation.Envelope("product", validation.Product), &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}
