package scenario

import (
	"context"

	"bluemedix-workflow/internal/common/errors"
	"bluemedix-workflow/internal/models"
	"bluemedix-workflow/internal/workflow"
)

func (s *Scenario) login(ctx context.Context, st workflow.State) (workflow.State, error) {
	session, err := s.api.Login(ctx, s.credentials.Email, s.credentials.Password)
	if err != nil {
		return st, err
	}
	if session.Token == "" {
		return st, errors.NewAssertionError("login returned no token")
	}
	if session.User.ID == "" {
		return st, errors.NewAssertionError("login returned no user id")
	}
	return st.With(KeyUserID, session.User.ID), nil
}

func (s *Scenario) categoryName() string {
	return "Test Category " + s.runTag
}

func (s *Scenario) productName() string {
	return "Test Product " + s.runTag
}

func (s *Scenario) updatedDescription() string {
	return "Updated by workflow run " + s.runTag
}

func (s *Scenario) createCategory(ctx context.Context, st workflow.State) (workflow.State, error) {
	cat, err := s.api.CreateCategory(ctx, models.CategoryInput{Name: s.categoryName()})
	if err != nil {
		return st, err
	}
	if cat.ID == "" {
		return st, errors.NewAssertionError("created category has no id")
	}
	if cat.Name != s.categoryName() {
		return st, errors.NewAssertionError("category name is %q, want %q", cat.Name, s.categoryName())
	}
	return st.With(KeyCategoryID, cat.ID), nil
}

func (s *Scenario) createProduct(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyCategoryID)
	if err != nil {
		return st, err
	}
	p, err := s.api.CreateProduct(ctx, models.ProductInput{
		Name:              s.productName(),
		Description:       "Created by workflow run " + s.runTag,
		Price:             s.cfg.ProductPrice,
		Discount:          s.cfg.ProductDiscount,
		WarehouseStock:    s.cfg.InitialStock,
		LowStockThreshold: 10,
		Category:          ids[0],
	})
	if err != nil {
		return st, err
	}
	if p.ID == "" {
		return st, errors.NewAssertionError("created product has no id")
	}
	if p.WarehouseStock != s.cfg.InitialStock {
		return st, errors.NewAssertionError("product stock is %d, want %d", p.WarehouseStock, s.cfg.InitialStock)
	}
	return st.With(KeyProductID, p.ID), nil
}

func (s *Scenario) listProducts(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyProductID)
	if err != nil {
		return st, err
	}
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return st, err
	}
	for _, p := range products {
		if p.ID == ids[0] {
			return st, nil
		}
	}
	return st, errors.NewAssertionError("product %s missing from a list of %d products", ids[0], len(products))
}

func (s *Scenario) getProduct(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyProductID, KeyCategoryID)
	if err != nil {
		return st, err
	}
	p, err := s.api.GetProduct(ctx, ids[0])
	if err != nil {
		return st, err
	}
	if err := checkProduct(p, ids[0], ids[1], s.productName(), s.cfg.ProductPrice, s.cfg.ProductDiscount); err != nil {
		return st, err
	}
	return st, nil
}

func checkProduct(p *models.Product, id, categoryID, name string, price, discount float64) error {
	switch {
	case p.ID != id:
		return errors.NewAssertionError("read product %s, got %s", id, p.ID)
	case p.Name != name:
		return errors.NewAssertionError("product name is %q, want %q", p.Name, name)
	case !models.AmountsEqual(p.Price, price):
		return errors.NewAssertionError("product price is %.2f, want %.2f", p.Price, price)
	case !models.AmountsEqual(p.Discount, discount):
		return errors.NewAssertionError("product discount is %.2f, want %.2f", p.Discount, discount)
	case p.Category.ID != categoryID:
		return errors.NewAssertionError("product category is %q, want %q", p.Category.ID, categoryID)
	}
	return nil
}

func (s *Scenario) updateProduct(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyProductID)
	if err != nil {
		return st, err
	}
	description := s.updatedDescription()
	threshold := updatedLowStockLimit
	p, err := s.api.UpdateProduct(ctx, ids[0], models.ProductUpdate{
		Description:       &description,
		LowStockThreshold: &threshold,
	})
	if err != nil {
		return st, err
	}
	if p.Description != description {
		return st, errors.NewAssertionError("update returned description %q, want %q", p.Description, description)
	}
	return st, nil
}

func (s *Scenario) verifyProductUpdate(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyProductID)
	if err != nil {
		return st, err
	}
	p, err := s.api.GetProduct(ctx, ids[0])
	if err != nil {
		return st, err
	}
	switch {
	case p.Description != s.updatedDescription():
		return st, errors.NewAssertionError("product description is %q after update", p.Description)
	case p.LowStockThreshold != updatedLowStockLimit:
		return st, errors.NewAssertionError("low stock threshold is %d, want %d", p.LowStockThreshold, updatedLowStockLimit)
	case !models.AmountsEqual(p.Price, s.cfg.ProductPrice):
		return st, errors.NewAssertionError("partial update changed price to %.2f", p.Price)
	}
	return st, nil
}

func (s *Scenario) updateProductStock(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyProductID)
	if err != nil {
		return st, err
	}
	before, err := s.api.GetProduct(ctx, ids[0])
	if err != nil {
		return st, err
	}
	p, err := s.api.UpdateProductStock(ctx, ids[0], models.StockAdjustment{Quantity: stockIncrement, Operation: models.StockAdd})
	if err != nil {
		return st, err
	}
	want := before.WarehouseStock + stockIncrement
	if p.WarehouseStock != want {
		return st, errors.NewAssertionError("warehouse stock is %d after adding %d to %d", p.WarehouseStock, stockIncrement, before.WarehouseStock)
	}
	return st, nil
}
