package bluemedix

import (
	"context"

	"bluemedix-workflow/internal/common/validation"
	"bluemedix-workflow/internal/models"
)

func (c *Client) CreateAddress(ctx context.Context, input models.AddressInput) (*models.Address, error) {
	var out struct {
		Address models.Address `json:"address"`
	}
	if err := c.call(ctx, "POST", "/api/addresses", input, validation.Envelope("address", validation.Address), &out); err != nil {
		return nil, err
	}
	return &out.Address, nil
}

func (c *Client) CreateOrder(ctx context.Context, input models.OrderInput) (*models.Order, error) {
	var out struct {
		Order models.Order `json:"order"`
	}
	if err := c.call(ctx, "POST", "/api/orders", input, validation.Envelope("order", validation.Order), &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	return c.listOrders(ctx, "/api/orders")
}

// MyOrders lists the orders placed by the logged-in user.
func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	return c.listOrders(ctx, "/api/orders/my-orders")
}

func (c *Client) listOrders(ctx context.Context, path string) ([]models.Order, error) {
	var out struct {
		Orders []models.Order `json:"orders"`
	}
	if err := c.call(ctx, "GET", path, nil, validation.Envelope("orders", validation.ListOf(validation.Order)), &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var out struct {
		Order models.Order `json:"order"`
	}
	if err := c.call(ctx, "GET", entityPath("/api/orders/%s", id), nil, validation.Envelope("order", validation.Order), &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

// UpdateDeliveryStatus sends the target state as-is; legality is decided by the backend.
func (c *Client) UpdateDeliveryStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	var out struct {
		Order models.Order `json:"order"`
	}
	body := models.DeliveryStatusUpdate{DeliveryStatus: status}
	if err := c.call(ctx, "PATCH", entityPath("/api/orders/%s/status", orderID), body, validation.Envelope("order", validation.Order), &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

// UpdatePaymentStatus sends the target payment state with its reference id.
// An empty paymentID is sent as-is so the backend can reject it.
func (c *Client) UpdatePaymentStatus(ctx context.Context, orderID, status, paymentID string) (*models.Order, error) {
	var out struct {
		Order models.Order `json:"order"`
	}
	body := models.PaymentStatusUpdate{PaymentStatus: status, PaymentID: paymentID}
	if err := c.call(ctx, "PATCH", entityPath("/api/orders/%s/payment", orderID), body, validation.Envelope("order", validation.Order), &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}
