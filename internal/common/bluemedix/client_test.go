package bluemedix

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bluemedix-workflow/internal/common/errors"
	"bluemedix-workflow/internal/common/logger"
	"bluemedix-workflow/internal/models"
	"bluemedix-workflow/internal/stub"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newClient(t *testing.T) *Client {
	t.Helper()
	backend := stub.New(stub.Options{AdminEmail: "admin@bluemedix.com", AdminPassword: "admin123"}, logger.NewTestLogger(t))
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	c := New(srv.URL, 5*time.Second, logger.NewTestLogger(t))
	_, err := c.Login(context.Background(), "admin@bluemedix.com", "admin123")
	require.NoError(t, err)
	return c
}

func TestLogin(t *testing.T) {
	c := newClient(t)
	assert.NotEmpty(t, c.Token())

	_, err := c.Login(context.Background(), "admin@bluemedix.com", "nope")
	require.Error(t, err)
	stdErr, ok := errors.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeBackendRejected, stdErr.Code)
	assert.Equal(t, http.StatusUnauthorized, stdErr.HTTPStatus)
	assert.Equal(t, "Invalid email or password", stdErr.Message)
}

func TestCatalogRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	cat, err := c.CreateCategory(ctx, models.CategoryInput{Name: "Gloves"})
	require.NoError(t, err)
	require.NotEmpty(t, cat.ID)

	created, err := c.CreateProduct(ctx, models.ProductInput{
		Name: "Nitrile Gloves", Price: 99.99, Discount: 10, WarehouseStock: 100, LowStockThreshold: 10, Category: cat.ID,
	})
	require.NoError(t, err)

	fetched, err := c.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, cat.ID, fetched.Category.ID)
	assert.Equal(t, "Gloves", fetched.Category.Name)

	price := 79.5
	updated, err := c.UpdateProduct(ctx, created.ID, models.ProductUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 79.5, updated.Price)
	assert.Equal(t, "Nitrile Gloves", updated.Name)

	stocked, err := c.UpdateProductStock(ctx, created.ID, models.StockAdjustment{Quantity: 20, Operation: models.StockSubtract})
	require.NoError(t, err)
	assert.Equal(t, 80, stocked.WarehouseStock)

	products, err := c.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, created.ID, products[0].ID)
}

func TestFranchiseRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	f, err := c.CreateFranchise(ctx, models.FranchiseInput{Name: "Central", Address: "1 Main St", ContactNumber: "9876543210", Email: "central@bluemedix.com"})
	require.NoError(t, err)
	assert.True(t, f.Manager.IsZero())

	m, err := c.CreateManager(ctx, models.ManagerInput{Name: "Asha", Email: "asha@bluemedix.com", Password: "secret123", Phone: "9876543210"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, m.Role)

	bound, err := c.AssignManager(ctx, f.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, bound.Manager.ID)

	list, err := c.ListFranchises(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, m.ID, list[0].Manager.ID)
	assert.Equal(t, "Asha", list[0].Manager.Name)

	successor, err := c.CreateManager(ctx, models.ManagerInput{
		Name: "Ravi", Email: "ravi@bluemedix.com", Password: "secret123", Franchise: f.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, f.ID, successor.Franchise.ID)

	list, err = c.ListFranchises(ctx)
	require.NoError(t, err)
	assert.Equal(t, successor.ID, list[0].Manager.ID)
	assert.Equal(t, "Ravi", list[0].Manager.Name)

	bound, err = c.AssignManager(ctx, f.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, bound.Manager.ID)

	stats, err := c.FranchiseStats(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalOrders)

	orders, err := c.FranchiseOrders(ctx, f.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	_, err = c.AssignManager(ctx, primitive.NewObjectID().Hex(), m.ID)
	assert.True(t, errors.IsBackendRejection(err))
	assert.Equal(t, http.StatusNotFound, errors.HTTPStatusOf(err))
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	cat, err := c.CreateCategory(ctx, models.CategoryInput{Name: "Masks"})
	require.NoError(t, err)
	p, err := c.CreateProduct(ctx, models.ProductInput{Name: "N95", Price: 99.99, Discount: 10, WarehouseStock: 5, Category: cat.ID})
	require.NoError(t, err)
	f, err := c.CreateFranchise(ctx, models.FranchiseInput{Name: "East", Address: "2 East St"})
	require.NoError(t, err)
	a, err := c.CreateAddress(ctx, models.AddressInput{Street: "3 Lake Rd", City: "Pune", State: "MH", Pincode: "411001", Country: "India", Phone: "9876543210"})
	require.NoError(t, err)

	o, err := c.CreateOrder(ctx, models.OrderInput{
		Product: p.ID, Address: a.ID, Franchise: f.ID, Quantity: 1,
		SubtotalAmount: 89.99, DeliveryCharge: 10, TotalAmount: 99.99,
	})
	require.NoError(t, err)
	assert.True(t, o.TotalMatches())
	assert.Equal(t, "pending", o.DeliveryStatus)

	_, err = c.UpdateDeliveryStatus(ctx, o.ID, "accepted")
	require.NoError(t, err)
	_, err = c.UpdatePaymentStatus(ctx, o.ID, "Paid", "pay_abc")
	require.NoError(t, err)

	got, err := c.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "accepted", got.DeliveryStatus)
	assert.Equal(t, "Paid", got.PaymentStatus)
	assert.Equal(t, "pay_abc", got.PaymentID)
	assert.Equal(t, p.ID, got.Product.ID)
	assert.Equal(t, "N95", got.Product.Name)

	all, err := c.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	mine, err := c.MyOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = c.UpdatePaymentStatus(ctx, o.ID, "Paid", "")
	require.Error(t, err)
	assert.True(t, errors.IsBackendRejection(err))

	_, err = c.UpdateDeliveryStatus(ctx, primitive.NewObjectID().Hex(), "accepted")
	stdErr, ok := errors.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, "Order not found", stdErr.Message)
}

func TestShapeMismatchIsAssertionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"category":{"name":"no id"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	_, err := c.CreateCategory(context.Background(), models.CategoryInput{Name: "x"})
	stdErr, ok := errors.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAssertionFailed, stdErr.Code)
	assert.Equal(t, http.StatusOK, stdErr.HTTPStatus)
	assert.Contains(t, stdErr.Body, "no id")
}
