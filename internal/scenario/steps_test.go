package scenario

import (
	"context"
	stderrors "errors"
	"testing"

	"bluemedix-workflow/internal/common/config"
	"bluemedix-workflow/internal/common/errors"
	"bluemedix-workflow/internal/models"
	"bluemedix-workflow/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAPI mocks the calls these tests exercise; any other call panics on the
// nil embedded API.
type MockAPI struct {
	API
	mock.Mock
}

func (m *MockAPI) CreateOrder(ctx context.Context, input models.OrderInput) (*models.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockAPI) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockAPI) UpdateDeliveryStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	args := m.Called(ctx, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockAPI) UpdatePaymentStatus(ctx context.Context, orderID, status, paymentID string) (*models.Order, error) {
	args := m.Called(ctx, orderID, status, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func orderState() workflow.State {
	return workflow.NewState().
		With(KeyProductID, "p1").
		With(KeyAddressID, "a1").
		With(KeyFranchiseID, "f1").
		With(KeyOrderID, "o1")
}

func assertionCode(t *testing.T, err error) errors.ErrorCode {
	t.Helper()
	stdErr, ok := errors.AsStandard(err)
	require.True(t, ok, "expected a StandardError, got %v", err)
	return stdErr.Code
}

func TestCreateOrder_SendsAmountsAndChecksInvariant(t *testing.T) {
	api := new(MockAPI)
	s := New(api, config.DefaultScenario(), adminCreds)

	want := models.OrderInput{
		Product: "p1", Address: "a1", Franchise: "f1", Quantity: 1,
		SubtotalAmount: 89.99, DeliveryCharge: 10, TotalAmount: 99.99,
	}
	api.On("CreateOrder", mock.Anything, want).Return(&models.Order{
		ID: "o2", SubtotalAmount: 89.99, DeliveryCharge: 10, TotalAmount: 120,
	}, nil).Once()

	next, err := s.createOrder(context.Background(), orderState())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAssertionFailed, assertionCode(t, err))
	assert.Contains(t, err.Error(), "does not equal subtotal")
	assert.Equal(t, "o1", next.Value(KeyOrderID), "failed step must not change state")
	api.AssertExpectations(t)
}

func TestCreateOrder_MissingID(t *testing.T) {
	api := new(MockAPI)
	api.On("CreateOrder", mock.Anything, mock.Anything).Return(&models.Order{
		SubtotalAmount: 89.99, DeliveryCharge: 10, TotalAmount: 99.99,
	}, nil)

	_, err := New(api, config.DefaultScenario(), adminCreds).createOrder(context.Background(), orderState())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created order has no id")
}

func TestCreateOrder_RequiresEarlierIDs(t *testing.T) {
	_, err := New(new(MockAPI), config.DefaultScenario(), adminCreds).createOrder(context.Background(), workflow.NewState())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required value "productId"`)
}

func TestUpdatePaymentStatus_RecordsGeneratedReference(t *testing.T) {
	api := new(MockAPI)
	s := New(api, config.DefaultScenario(), adminCreds, WithPaymentIDs(func() string { return "pay_1" }))

	api.On("UpdatePaymentStatus", mock.Anything, "o1", "Paid", "pay_1").
		Return(&models.Order{ID: "o1", PaymentStatus: "paid", PaymentID: "pay_1"}, nil).Once()

	next, err := s.updatePaymentStatus(context.Background(), orderState())
	require.NoError(t, err)
	assert.Equal(t, "pay_1", next.Value(KeyPaymentID))
	api.AssertExpectations(t)
}

func TestUpdateDeliveryStatus_BackendReasonSurfaces(t *testing.T) {
	api := new(MockAPI)
	rejection := errors.NewBackendError("PATCH /api/orders/o1/status", 400, "Cannot change delivery status from delivered to accepted", "")
	api.On("UpdateDeliveryStatus", mock.Anything, "o1", "accepted").Return(nil, rejection).Once()

	_, err := New(api, config.DefaultScenario(), adminCreds).updateDeliveryStatus(context.Background(), orderState())
	assert.Same(t, rejection, err)
	api.AssertNumberOfCalls(t, "UpdateDeliveryStatus", 1)
}

func TestVerifyOrderStatus(t *testing.T) {
	state := orderState().With(KeyPaymentID, "pay_1")
	tests := []struct {
		name    string
		order   *models.Order
		wantErr string
	}{
		{"matches", &models.Order{ID: "o1", DeliveryStatus: "Accepted", PaymentStatus: "PAID", PaymentID: "pay_1", SubtotalAmount: 89.99, DeliveryCharge: 10, TotalAmount: 99.99}, ""},
		{"still pending", &models.Order{ID: "o1", DeliveryStatus: "pending", PaymentStatus: "Paid", PaymentID: "pay_1"}, "stored delivery status"},
		{"unpaid", &models.Order{ID: "o1", DeliveryStatus: "accepted", PaymentStatus: "Unpaid"}, "stored payment status"},
		{"wrong reference", &models.Order{ID: "o1", DeliveryStatus: "accepted", PaymentStatus: "Paid", PaymentID: "pay_2"}, "stored payment id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			api.On("GetOrder", mock.Anything, "o1").Return(tt.order, nil)

			_, err := New(api, config.DefaultScenario(), adminCreds).verifyOrderStatus(context.Background(), state)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNegativeChecks(t *testing.T) {
	t.Run("accepted paid without reference fails", func(t *testing.T) {
		api := new(MockAPI)
		api.On("UpdatePaymentStatus", mock.Anything, "o1", "Paid", "").Return(&models.Order{ID: "o1", PaymentStatus: "Paid"}, nil)

		_, err := New(api, config.DefaultScenario(), adminCreds).rejectPaidWithoutReference(context.Background(), orderState())
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeAssertionFailed, assertionCode(t, err))
		assert.Contains(t, err.Error(), "backend accepted Paid without a payment reference")
	})

	t.Run("rejected paid without reference passes", func(t *testing.T) {
		api := new(MockAPI)
		api.On("UpdatePaymentStatus", mock.Anything, "o1", "Paid", "").
			Return(nil, errors.NewBackendError("PATCH /api/orders/o1/payment", 400, "payment id is required to mark an order paid", ""))

		_, err := New(api, config.DefaultScenario(), adminCreds).rejectPaidWithoutReference(context.Background(), orderState())
		assert.NoError(t, err)
	})

	t.Run("missing order uses a fresh object id", func(t *testing.T) {
		api := new(MockAPI)
		api.On("UpdateDeliveryStatus", mock.Anything, mock.MatchedBy(func(id string) bool { return len(id) == 24 }), "accepted").
			Return(nil, errors.NewBackendError("PATCH", 404, "Order not found", ""))

		_, err := New(api, config.DefaultScenario(), adminCreds).rejectStatusOnMissingOrder(context.Background(), workflow.NewState())
		assert.NoError(t, err)
		api.AssertExpectations(t)
	})

	t.Run("transport failure is not a rejection", func(t *testing.T) {
		transport := errors.NewTransportError("PATCH /api/orders/x/status", stderrors.New("connection reset by peer"))
		err := expectRejection(transport, "anything")
		assert.Same(t, transport, err)
	})
}
