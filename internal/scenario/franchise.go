package scenario

import (
	"context"

	"bluemedix-workflow/internal/common/errors"
	"bluemedix-workflow/internal/models"
	"bluemedix-workflow/internal/workflow"
)

func (s *Scenario) createManager(ctx context.Context, st workflow.State) (workflow.State, error) {
	u, err := s.api.CreateManager(ctx, models.ManagerInput{
		Name:     "Test Manager " + s.runTag,
		Email:    "manager." + s.runTag + "@bluemedix.test",
		Password: "manager123",
		Phone:    "9876543210",
	})
	if err != nil {
		return st, err
	}
	if u.ID == "" {
		return st, errors.NewAssertionError("created manager has no id")
	}
	if u.Role != models.RoleManager {
		return st, errors.NewAssertionError("created user has role %q, want %q", u.Role, models.RoleManager)
	}
	return st.With(KeyManagerID, u.ID), nil
}

func (s *Scenario) createFranchise(ctx context.Context, st workflow.State) (workflow.State, error) {
	f, err := s.api.CreateFranchise(ctx, models.FranchiseInput{
		Name:          "Test Franchise " + s.runTag,
		Address:       "221 Health Street, Pune",
		ContactNumber: "9123456780",
		Email:         "franchise." + s.runTag + "@bluemedix.test",
	})
	if err != nil {
		return st, err
	}
	if f.ID == "" {
		return st, errors.NewAssertionError("created franchise has no id")
	}
	return st.With(KeyFranchiseID, f.ID), nil
}

func (s *Scenario) assignManager(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyFranchiseID, KeyManagerID)
	if err != nil {
		return st, err
	}
	f, err := s.api.AssignManager(ctx, ids[0], ids[1])
	if err != nil {
		return st, err
	}
	if f.Manager.ID != ids[1] {
		return st, errors.NewAssertionError("franchise manager is %q after assignment, want %q", f.Manager.ID, ids[1])
	}
	return st, nil
}

func (s *Scenario) listFranchises(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyFranchiseID, KeyManagerID)
	if err != nil {
		return st, err
	}
	franchises, err := s.api.ListFranchises(ctx)
	if err != nil {
		return st, err
	}
	for _, f := range franchises {
		if f.ID != ids[0] {
			continue
		}
		if f.Manager.ID != ids[1] {
			return st, errors.NewAssertionError("franchise %s lists manager %q, want %q", f.ID, f.Manager.ID, ids[1])
		}
		return st, nil
	}
	return st, errors.NewAssertionError("franchise %s missing from a list of %d franchises", ids[0], len(franchises))
}

func (s *Scenario) franchiseOrders(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyFranchiseID, KeyOrderID)
	if err != nil {
		return st, err
	}
	orders, err := s.api.FranchiseOrders(ctx, ids[0])
	if err != nil {
		return st, err
	}
	for _, o := range orders {
		if o.Franchise.ID != "" && o.Franchise.ID != ids[0] {
			return st, errors.NewAssertionError("order %s belongs to franchise %s", o.ID, o.Franchise.ID)
		}
	}
	if !containsOrder(orders, ids[1]) {
		return st, errors.NewAssertionError("order %s missing from franchise %s orders", ids[1], ids[0])
	}
	return st, nil
}

func (s *Scenario) franchiseStats(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyFranchiseID)
	if err != nil {
		return st, err
	}
	stats, err := s.api.FranchiseStats(ctx, ids[0])
	if err != nil {
		return st, err
	}
	if stats.TotalOrders < 1 {
		return st, errors.NewAssertionError("franchise stats count %d orders, want at least 1", stats.TotalOrders)
	}
	if stats.TotalRevenue+models.AmountTolerance < s.OrderTotal() {
		return st, errors.NewAssertionError("franchise revenue %.2f is below the order total %.2f", stats.TotalRevenue, s.OrderTotal())
	}
	return st, nil
}
