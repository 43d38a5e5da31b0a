package stub

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bluemedix-workflow/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	adminEmail    = "admin@bluemedix.com"
	adminPassword = "admin123"
)

type harness struct {
	t     *testing.T
	h     http.Handler
	token string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := New(Options{AdminEmail: adminEmail, AdminPassword: adminPassword}, logger.NewTestLogger(t))
	hs := &harness{t: t, h: srv.Handler()}

	status, body := hs.do(http.MethodPost, "/api/auth/login", map[string]string{"email": adminEmail, "password": adminPassword})
	require.Equal(t, http.StatusOK, status)
	hs.token = body["token"].(string)
	return hs
}

func (hs *harness) do(method, path string, payload interface{}) (int, map[string]interface{}) {
	hs.t.Helper()
	var buf bytes.Buffer
	if payload != nil {
		require.NoError(hs.t, json.NewEncoder(&buf).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &buf)
	if hs.token != "" {
		req.Header.Set("Authorization", "Bearer "+hs.token)
	}
	rec := httptest.NewRecorder()
	hs.h.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	require.NoError(hs.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func (hs *harness) create(path, key string, payload interface{}) string {
	hs.t.Helper()
	status, body := hs.do(http.MethodPost, path, payload)
	require.Equal(hs.t, http.StatusCreated, status, body)
	return body[key].(map[string]interface{})["_id"].(string)
}

// seedOrder creates the full chain of prerequisites and one order.
func (hs *harness) seedOrder(stock int) (productID, franchiseID, orderID string) {
	categoryID := hs.create("/api/categories", "category", map[string]interface{}{"name": "PPE"})
	productID = hs.create("/api/products", "product", map[string]interface{}{
		"name": "Mask", "price": 99.99, "discount": 10, "warehouseStock": stock, "lowStockThreshold": 5, "category": categoryID,
	})
	franchiseID = hs.create("/api/franchises", "franchise", map[string]interface{}{"name": "Outlet", "address": "1 Main St"})
	addressID := hs.create("/api/addresses", "address", map[string]interface{}{"street": "1 Main St", "city": "Pune", "pincode": "411001"})
	orderID = hs.create("/api/orders", "order", map[string]interface{}{
		"product": productID, "address": addressID, "franchise": franchiseID, "quantity": 1,
		"subtotalAmount": 89.99, "deliveryCharge": 10, "totalAmount": 99.99,
	})
	return productID, franchiseID, orderID
}

func TestLogin(t *testing.T) {
	hs := &harness{t: t, h: New(Options{AdminEmail: adminEmail, AdminPassword: adminPassword}, nil).Handler()}

	status, body := hs.do(http.MethodPost, "/api/auth/login", map[string]string{"email": adminEmail, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid email or password", body["message"])

	status, body = hs.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ADMIN@bluemedix.com", "password": adminPassword})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin", body["user"].(map[string]interface{})["role"])
}

func TestAuthRequired(t *testing.T) {
	hs := &harness{t: t, h: New(Options{AdminEmail: adminEmail, AdminPassword: adminPassword}, nil).Handler()}

	status, _ := hs.do(http.MethodPost, "/api/categories", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)

	hs.token = "bogus"
	status, _ = hs.do(http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	hs.token = ""
	status, body := hs.do(http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
}

func TestCategory_DuplicateRejected(t *testing.T) {
	hs := newHarness(t)
	hs.create("/api/categories", "category", map[string]string{"name": "Test Category 1"})

	status, body := hs.do(http.MethodPost, "/api/categories", map[string]string{"name": "test category 1"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Category already exists", body["message"])
}

func TestProduct_RequiresExistingCategory(t *testing.T) {
	hs := newHarness(t)
	status, body := hs.do(http.MethodPost, "/api/products", map[string]interface{}{
		"name": "Mask", "price": 10, "category": primitive.NewObjectID().Hex(),
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Category not found", body["message"])
}

func TestProduct_GetPopulatesCategory(t *testing.T) {
	hs := newHarness(t)
	productID, _, _ := hs.seedOrder(10)

	status, body := hs.do(http.MethodGet, "/api/products/"+productID, nil)
	require.Equal(t, http.StatusOK, status)
	category := body["product"].(map[string]interface{})["category"].(map[string]interface{})
	assert.Equal(t, "PPE", category["name"])

	status, _ = hs.do(http.MethodGet, "/api/products/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStock_NeverNegative(t *testing.T) {
	hs := newHarness(t)
	productID, _, _ := hs.seedOrder(3)

	status, body := hs.do(http.MethodPatch, "/api/products/"+productID+"/stock", map[string]interface{}{"quantity": 5, "operation": "subtract"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "warehouse stock cannot go negative", body["message"])

	status, body = hs.do(http.MethodPatch, "/api/products/"+productID+"/stock", map[string]interface{}{"quantity": 8, "operation": "add"})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 10, body["product"].(map[string]interface{})["warehouseStock"])
}

func TestOrder_DecrementsStockAndChecksTotal(t *testing.T) {
	hs := newHarness(t)
	productID, franchiseID, _ := hs.seedOrder(1)

	_, body := hs.do(http.MethodGet, "/api/products/"+productID, nil)
	assert.EqualValues(t, 0, body["product"].(map[string]interface{})["warehouseStock"])

	addressID := hs.create("/api/addresses", "address", map[string]interface{}{"street": "2 Main St", "city": "Pune", "pincode": "411001"})
	status, body := hs.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"product": productID, "address": addressID, "franchise": franchiseID, "quantity": 1,
		"subtotalAmount": 89.99, "deliveryCharge": 10, "totalAmount": 99.99,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Insufficient stock", body["message"])

	status, body = hs.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"product": productID, "address": addressID, "franchise": franchiseID,
		"subtotalAmount": 89.99, "deliveryCharge": 10, "totalAmount": 120,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Total amount must equal subtotal plus delivery charge", body["message"])
}

func TestDeliveryStatus_Transitions(t *testing.T) {
	hs := newHarness(t)
	productID, _, orderID := hs.seedOrder(5)
	path := "/api/orders/" + orderID + "/status"

	steps := []struct {
		target     string
		wantStatus int
	}{
		{"accepted", http.StatusOK},
		{"ACCEPTED", http.StatusOK},
		{"delivered", http.StatusBadRequest},
		{"teleported", http.StatusBadRequest},
		{"cancelled", http.StatusOK},
		{"shipped", http.StatusBadRequest},
	}
	for _, step := range steps {
		status, body := hs.do(http.MethodPatch, path, map[string]string{"deliverystatus": step.target})
		assert.Equal(t, step.wantStatus, status, "%s: %v", step.target, body)
	}

	_, body := hs.do(http.MethodGet, "/api/products/"+productID, nil)
	assert.EqualValues(t, 5, body["product"].(map[string]interface{})["warehouseStock"], "cancellation restocks")

	status, body := hs.do(http.MethodPatch, "/api/orders/"+primitive.NewObjectID().Hex()+"/status", map[string]string{"deliverystatus": "accepted"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Order not found", body["message"])
}

func TestPaymentStatus_RequiresReference(t *testing.T) {
	hs := newHarness(t)
	_, _, orderID := hs.seedOrder(5)
	path := "/api/orders/" + orderID + "/payment"

	status, body := hs.do(http.MethodPatch, path, map[string]string{"paymentStatus": "Paid"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, body = hs.do(http.MethodPatch, path, map[string]string{"paymentStatus": "paid", "paymentid": "pay_1"})
	require.Equal(t, http.StatusOK, status)
	order := body["order"].(map[string]interface{})
	assert.Equal(t, "Paid", order["paymentStatus"])
	assert.Equal(t, "pay_1", order["paymentId"])

	status, _ = hs.do(http.MethodPatch, path, map[string]string{"paymentStatus": "Unpaid"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAssignManager_ReplacesPreviousBinding(t *testing.T) {
	hs := newHarness(t)
	f1 := hs.create("/api/franchises", "franchise", map[string]string{"name": "North", "address": "1 North Rd"})
	f2 := hs.create("/api/franchises", "franchise", map[string]string{"name": "South", "address": "1 South Rd"})
	m1 := hs.create("/api/users/manager", "user", map[string]string{"name": "M1", "email": "m1@bluemedix.com", "password": "secret1"})
	m2 := hs.create("/api/users/manager", "user", map[string]string{"name": "M2", "email": "m2@bluemedix.com", "password": "secret2"})

	assign := func(f, m string) int {
		status, _ := hs.do(http.MethodPost, "/api/franchises/assign-manager", map[string]string{"franchiseId": f, "managerId": m})
		return status
	}
	require.Equal(t, http.StatusOK, assign(f1, m1))
	require.Equal(t, http.StatusOK, assign(f1, m2))
	require.Equal(t, http.StatusOK, assign(f2, m2))

	_, body := hs.do(http.MethodGet, "/api/franchises", nil)
	managers := map[string]interface{}{}
	for _, raw := range body["franchises"].([]interface{}) {
		f := raw.(map[string]interface{})
		managers[f["_id"].(string)] = f["manager"]
	}
	assert.Nil(t, managers[f1])
	assert.Equal(t, m2, managers[f2].(map[string]interface{})["_id"])

	assert.Equal(t, http.StatusNotFound, assign(primitive.NewObjectID().Hex(), m1))
	assert.Equal(t, http.StatusNotFound, assign(f1, primitive.NewObjectID().Hex()))

	_, login := hs.do(http.MethodPost, "/api/auth/login", map[string]string{"email": adminEmail, "password": adminPassword})
	adminID := login["user"].(map[string]interface{})["_id"].(string)
	assert.Equal(t, http.StatusBadRequest, assign(f1, adminID))
}

func TestCreateManager_BindsFranchiseAtCreation(t *testing.T) {
	hs := newHarness(t)
	f1 := hs.create("/api/franchises", "franchise", map[string]string{"name": "North", "address": "1 North Rd"})
	m1 := hs.create("/api/users/manager", "user", map[string]string{"name": "M1", "email": "m1@bluemedix.com", "password": "secret1"})
	status, _ := hs.do(http.MethodPost, "/api/franchises/assign-manager", map[string]string{"franchiseId": f1, "managerId": m1})
	require.Equal(t, http.StatusOK, status)

	status, body := hs.do(http.MethodPost, "/api/users/manager", map[string]string{
		"name": "M2", "email": "m2@bluemedix.com", "password": "secret2", "franchise": f1,
	})
	require.Equal(t, http.StatusCreated, status, body)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, f1, user["franchise"])

	_, body = hs.do(http.MethodGet, "/api/franchises", nil)
	franchises := body["franchises"].([]interface{})
	require.Len(t, franchises, 1)
	assert.Equal(t, user["_id"], franchises[0].(map[string]interface{})["manager"].(map[string]interface{})["_id"])

	status, _ = hs.do(http.MethodPost, "/api/users/manager", map[string]string{
		"name": "M3", "email": "m3@bluemedix.com", "password": "secret3", "franchise": primitive.NewObjectID().Hex(),
	})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = hs.do(http.MethodPost, "/api/users/manager", map[string]string{
		"name": "M4", "email": "m4@bluemedix.com", "password": "secret4", "franchise": "not-an-id",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = hs.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "m3@bluemedix.com", "password": "secret3"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestManagerAccess_ScopedToOwnFranchise(t *testing.T) {
	hs := newHarness(t)
	_, franchiseID, _ := hs.seedOrder(5)
	other := hs.create("/api/franchises", "franchise", map[string]string{"name": "Other", "address": "9 Side St"})
	managerID := hs.create("/api/users/manager", "user", map[string]string{"name": "M", "email": "m@bluemedix.com", "password": "secret1"})
	status, _ := hs.do(http.MethodPost, "/api/franchises/assign-manager", map[string]string{"franchiseId": franchiseID, "managerId": managerID})
	require.Equal(t, http.StatusOK, status)

	_, login := hs.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "m@bluemedix.com", "password": "secret1"})
	hs.token = login["token"].(string)

	status, body := hs.do(http.MethodGet, "/api/franchises/"+franchiseID+"/orders", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["orders"], 1)

	status, _ = hs.do(http.MethodGet, "/api/franchises/"+other+"/stats", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = hs.do(http.MethodPost, "/api/categories", map[string]string{"name": "Nope"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestFranchiseStats(t *testing.T) {
	hs := newHarness(t)
	_, franchiseID, orderID := hs.seedOrder(5)

	status, _ := hs.do(http.MethodPatch, "/api/orders/"+orderID+"/status", map[string]string{"deliverystatus": "accepted"})
	require.Equal(t, http.StatusOK, status)

	status, body := hs.do(http.MethodGet, "/api/franchises/"+franchiseID+"/stats", nil)
	require.Equal(t, http.StatusOK, status)
	stats := body["stats"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["totalOrders"])
	assert.EqualValues(t, 0, stats["pendingOrders"])
	assert.InDelta(t, 99.99, stats["totalRevenue"], 1e-9)
}

func TestMyOrdersAndGetOrder(t *testing.T) {
	hs := newHarness(t)
	productID, _, orderID := hs.seedOrder(5)

	status, body := hs.do(http.MethodGet, "/api/orders/my-orders", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["orders"], 1)

	status, body = hs.do(http.MethodGet, "/api/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, status)
	order := body["order"].(map[string]interface{})
	assert.Equal(t, productID, order["product"].(map[string]interface{})["_id"])
	assert.Equal(t, "pending", order["deliveryStatus"])
	assert.Equal(t, "Unpaid", order["paymentStatus"])
}

func TestUnknownRoute(t *testing.T) {
	hs := newHarness(t)
	status, body := hs.do(http.MethodGet, "/api/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}
