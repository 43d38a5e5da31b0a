// internal/models/catalog.go
package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNegativeStock = errors.New("warehouse stock cannot go negative")

type Category struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type CategoryInput struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type Product struct {
	ID                string  `json:"_id"`
	Name              string  `json:"name"`
	Description       string  `json:"description,omitempty"`
	Price             float64 `json:"price"`
	Discount          float64 `json:"discount"`
	WarehouseStock    int     `json:"warehouseStock"`
	LowStockThreshold int     `json:"lowStockThreshold"`
	Category          Ref     `json:"category"`
}

// DiscountedPrice applies the percentage discount to the list price.
func (p Product) DiscountedPrice() float64 {
	return p.Price * (1 - p.Discount/100)
}

func (p Product) IsLowStock() bool {
	return p.WarehouseStock <= p.LowStockThreshold
}

type ProductInput struct {
	Name              string  `json:"name"`
	Description       string  `json:"description,omitempty"`
	Price             float64 `json:"price"`
	Discount          float64 `json:"discount"`
	WarehouseStock    int     `json:"warehouseStock"`
	LowStockThreshold int     `json:"lowStockThreshold"`
	Category          string  `json:"category"`
}

// ProductUpdate is a partial update; nil fields are left unchanged.
type ProductUpdate struct {
	Name              *string  `json:"name,omitempty"`
	Description       *string  `json:"description,omitempty"`
	Price             *float64 `json:"price,omitempty"`
	Discount          *float64 `json:"discount,omitempty"`
	LowStockThreshold *int     `json:"lowStockThreshold,omitempty"`
}

type StockOperation string

const (
	StockSet      StockOperation = "set"
	StockAdd      StockOperation = "add"
	StockSubtract StockOperation = "subtract"
)

type StockAdjustment struct {
	Quantity  int            `json:"quantity"`
	Operation StockOperation `json:"operation"`
}

// Apply returns the stock level after the adjustment.
func (a StockAdjustment) Apply(current int) (int, error) {
	if a.Quantity < 0 {
		return current, fmt.Errorf("quantity must not be negative, got %d", a.Quantity)
	}

	var next int
	switch StockOperation(strings.ToLower(string(a.Operation))) {
	case StockSet, "":
		next = a.Quantity
	case StockAdd:
		next = current + a.Quantity
	case StockSubtract:
		next = current - a.Quantity
	default:
		return current, fmt.Errorf("unknown stock operation %q", a.Operation)
	}

	if next < 0 {
		return current, ErrNegativeStock
	}
	return next, nil
}
