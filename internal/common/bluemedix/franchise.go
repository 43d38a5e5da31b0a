package bluemedix

import (
	"context"

	"bluemedix-workflow/internal/common/validation"
	"bluemedix-workflow/internal/models"
)

// CreateManager registers a manager user with no franchise binding.
func (c *Client) CreateManager(ctx context.Context, input models.ManagerInput) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.call(ctx, "POST", "/api/users/manager", input, validation.Envelope("user", validation.User), &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// CreateFranchise creates a franchise with no manager binding.
func (c *Client) CreateFranchise(ctx context.Context, input models.FranchiseInput) (*models.Franchise, error) {
	var out struct {
		Franchise models.Franchise `json:"franchise"`
	}
	if err := c.call(ctx, "POST", "/api/franchises", input, validation.Envelope("franchise", validation.Franchise), &out); err != nil {
		return nil, err
	}
	return &out.Franchise, nil
}

func (c *Client) ListFranchises(ctx context.Context) ([]models.Franchise, error) {
	var out struct {
		Franchises []models.Franchise `json:"franchises"`
	}
	if err := c.call(ctx, "GET", "/api/franchises", nil, validation.Envelope("franchises", validation.ListOf(validation.Franchise)), &out); err != nil {
		return nil, err
	}
	return out.Franchises, nil
}

// AssignManager binds managerID to franchiseID, replacing any previous manager.
func (c *Client) AssignManager(ctx context.Context, franchiseID, managerID string) (*models.Franchise, error) {
	req := models.AssignManagerRequest{FranchiseID: franchiseID, ManagerID: managerID}
	var out struct {
		Franchise models.Franchise `json:"franchise"`
	}
	if err := c.call(ctx, "POST", "/api/franchises/assign-manager", req, validation.Envelope("franchise", validation.Franchise), &out); err != nil {
		return nil, err
	}
	return &out.Franchise, nil
}

func (c *Client) FranchiseOrders(ctx context.Context, franchiseID string) ([]models.Order, error) {
	var out struct {
		Orders []models.Order `json:"orders"`
	}
	if err := c.call(ctx, "GET", entityPath("/api/franchises/%s/orders", franchiseID), nil, validation.Envelope("orders", validation.ListOf(validation.Order)), &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) FranchiseStats(ctx context.Context, franchiseID string) (*models.FranchiseStats, error) {
	var out struct {
		Stats models.FranchiseStats `json:"stats"`
	}
	if err := c.call(ctx, "GET", entityPath("/api/franchises/%s/stats", franchiseID), nil, validation.Envelope("stats", validation.FranchiseStats), &out); err != nil {
		return nil, err
	}
	return &out.Stats, nil
}
