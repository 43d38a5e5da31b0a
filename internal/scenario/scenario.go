// Package scenario builds the BlueMedix order-lifecycle workflow: the ordered
// list of steps that create, bind, transition and re-read every entity.
package scenario

import (
	"context"
	"math"
	"strconv"
	"time"

	"bluemedix-workflow/internal/common/config"
	"bluemedix-workflow/internal/models"
	"bluemedix-workflow/internal/workflow"

	"github.com/google/uuid"
)

// State keys threaded between steps.
const (
	KeyUserID      = "userId"
	KeyCategoryID  = "categoryId"
	KeyProductID   = "productId"
	KeyManagerID   = "managerId"
	KeyFranchiseID = "franchiseId"
	KeyAddressID   = "addressId"
	KeyOrderID     = "orderId"
	KeyPaymentID   = "paymentId"
)

// Step names.
const (
	StepLogin                = "login"
	StepCreateCategory       = "create-category"
	StepCreateProduct        = "create-product"
	StepListProducts         = "list-products"
	StepGetProduct           = "get-product"
	StepUpdateProduct        = "update-product"
	StepVerifyProductUpdate  = "verify-product-update"
	StepUpdateProductStock   = "update-product-stock"
	StepCreateManager        = "create-manager"
	StepCreateFranchise      = "create-franchise"
	StepAssignManager        = "assign-manager"
	StepListFranchises       = "list-franchises"
	StepCreateAddress        = "create-address"
	StepCreateOrder          = "create-order"
	StepListOrders           = "list-orders"
	StepGetOrder             = "get-order"
	StepUpdateDeliveryStatus = "update-delivery-status"
	StepUpdatePaymentStatus  = "update-payment-status"
	StepVerifyOrderStatus    = "verify-order-status"
	StepFranchiseOrders      = "franchise-orders"
	StepFranchiseStats       = "franchise-stats"
	StepMyOrders             = "my-orders"
	StepRejectMissingOrder   = "reject-status-missing-order"
	StepRejectPaidWithoutRef = "reject-paid-without-reference"
)

const (
	stockIncrement       = 5
	updatedLowStockLimit = 15
	orderQuantity        = 1
)

// API is the slice of the BlueMedix client the workflow drives.
type API interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)

	CreateCategory(ctx context.Context, input models.CategoryInput) (*models.Category, error)
	CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error)
	UpdateProductStock(ctx context.Context, id string, adj models.StockAdjustment) (*models.Product, error)

	CreateManager(ctx context.Context, input models.ManagerInput) (*models.User, error)
	CreateFranchise(ctx context.Context, input models.FranchiseInput) (*models.Franchise, error)
	ListFranchises(ctx context.Context) ([]models.Franchise, error)
	AssignManager(ctx context.Context, franchiseID, managerID string) (*models.Franchise, error)
	FranchiseOrders(ctx context.Context, franchiseID string) ([]models.Order, error)
	FranchiseStats(ctx context.Context, franchiseID string) (*models.FranchiseStats, error)

	CreateAddress(ctx context.Context, input models.AddressInput) (*models.Address, error)
	CreateOrder(ctx context.Context, input models.OrderInput) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	MyOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateDeliveryStatus(ctx context.Context, orderID, status string) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID, status, paymentID string) (*models.Order, error)
}

// Scenario holds everything one run needs to build its steps.
type Scenario struct {
	api          API
	cfg          config.ScenarioConfig
	credentials  models.Credentials
	runTag       string
	newPaymentID func() string
}

type Option func(*Scenario)

// WithRunTag sets the suffix that keeps this run's entity names unique.
func WithRunTag(tag string) Option {
	return func(s *Scenario) { s.runTag = tag }
}

// WithPaymentIDs replaces the uuid payment reference generator.
func WithPaymentIDs(gen func() string) Option {
	return func(s *Scenario) { s.newPaymentID = gen }
}

func New(api API, cfg config.ScenarioConfig, creds models.Credentials, opts ...Option) *Scenario {
	s := &Scenario{
		api:          api,
		cfg:          cfg,
		credentials:  creds,
		runTag:       strconv.FormatInt(time.Now().UnixMilli(), 10),
		newPaymentID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scenario) RunTag() string {
	return s.runTag
}

// OrderTotal is subtotal plus delivery charge, rounded to cents.
func (s *Scenario) OrderTotal() float64 {
	return math.Round((s.cfg.OrderSubtotal+s.cfg.OrderDeliveryCharge)*100) / 100
}

// Steps returns the workflow in execution order.
func (s *Scenario) Steps() []workflow.Step {
	steps := []workflow.Step{
		{Name: StepLogin, Description: "Log in as admin and keep the bearer token", Endpoint: "POST /api/auth/login", Run: s.login},

		{Name: StepCreateCategory, Description: "Create a uniquely named category", Endpoint: "POST /api/categories",
			DependsOn: []string{StepLogin}, Run: s.createCategory},
		{Name: StepCreateProduct, Description: "Create a product in the new category", Endpoint: "POST /api/products",
			DependsOn: []string{StepCreateCategory}, Run: s.createProduct},
		{Name: StepListProducts, Description: "List products and find the new one", Endpoint: "GET /api/products",
			DependsOn: []string{StepCreateProduct}, Run: s.listProducts},
		{Name: StepGetProduct, Description: "Read the product back by id", Endpoint: "GET /api/products/:id",
			DependsOn: []string{StepCreateProduct}, Run: s.getProduct},
		{Name: StepUpdateProduct, Description: "Update description and low-stock threshold", Endpoint: "PUT /api/products/:id",
			DependsOn: []string{StepCreateProduct}, Run: s.updateProduct},
		{Name: StepVerifyProductUpdate, Description: "Re-read the product and check the update", Endpoint: "GET /api/products/:id",
			DependsOn: []string{StepUpdateProduct}, Run: s.verifyProductUpdate},
		{Name: StepUpdateProductStock, Description: "Add warehouse stock", Endpoint: "PATCH /api/products/:id/stock",
			DependsOn: []string{StepCreateProduct}, Run: s.updateProductStock},
	}

	manager := workflow.Step{Name: StepCreateManager, Description: "Create an unbound manager", Endpoint: "POST /api/users/manager",
		DependsOn: []string{StepLogin}, Run: s.createManager}
	franchise := workflow.Step{Name: StepCreateFranchise, Description: "Create a franchise without a manager", Endpoint: "POST /api/franchises",
		DependsOn: []string{StepLogin}, Run: s.createFranchise}
	if s.cfg.FranchiseFirst {
		steps = append(steps, franchise, manager)
	} else {
		steps = append(steps, manager, franchise)
	}

	steps = append(steps,
		workflow.Step{Name: StepAssignManager, Description: "Bind the manager to the franchise", Endpoint: "POST /api/franchises/assign-manager",
			DependsOn: []string{StepCreateManager, StepCreateFranchise}, Run: s.assignManager},
		workflow.Step{Name: StepListFranchises, Description: "List franchises and check the manager binding", Endpoint: "GET /api/franchises",
			DependsOn: []string{StepAssignManager}, Run: s.listFranchises},

		workflow.Step{Name: StepCreateAddress, Description: "Create a delivery address", Endpoint: "POST /api/addresses",
			DependsOn: []string{StepLogin}, Run: s.createAddress},
		workflow.Step{Name: StepCreateOrder, Description: "Place an order for the product", Endpoint: "POST /api/orders",
			DependsOn: []string{StepCreateProduct, StepCreateAddress, StepCreateFranchise}, Run: s.createOrder},
		workflow.Step{Name: StepListOrders, Description: "List all orders and find the new one", Endpoint: "GET /api/orders",
			DependsOn: []string{StepCreateOrder}, Run: s.listOrders},
		workflow.Step{Name: StepGetOrder, Description: "Read the order back and check its amounts", Endpoint: "GET /api/orders/:id",
			DependsOn: []string{StepCreateOrder}, Run: s.getOrder},
		workflow.Step{Name: StepUpdateDeliveryStatus, Description: "Move the order to accepted", Endpoint: "PATCH /api/orders/:id/status",
			DependsOn: []string{StepCreateOrder}, Run: s.updateDeliveryStatus},
		workflow.Step{Name: StepUpdatePaymentStatus, Description: "Mark the order paid with a payment reference", Endpoint: "PATCH /api/orders/:id/payment",
			DependsOn: []string{StepCreateOrder}, Run: s.updatePaymentStatus},
		workflow.Step{Name: StepVerifyOrderStatus, Description: "Re-read the order and check both statuses", Endpoint: "GET /api/orders/:id",
			DependsOn: []string{StepUpdateDeliveryStatus, StepUpdatePaymentStatus}, Run: s.verifyOrderStatus},
		workflow.Step{Name: StepFranchiseOrders, Description: "List the franchise's orders", Endpoint: "GET /api/franchises/:id/orders",
			DependsOn: []string{StepCreateOrder}, Run: s.franchiseOrders},
		workflow.Step{Name: StepFranchiseStats, Description: "Read the franchise's order statistics", Endpoint: "GET /api/franchises/:id/stats",
			DependsOn: []string{StepCreateOrder}, Run: s.franchiseStats},
		workflow.Step{Name: StepMyOrders, Description: "List the caller's own orders", Endpoint: "GET /api/orders/my-orders",
			DependsOn: []string{StepCreateOrder}, Run: s.myOrders},
	)

	if !s.cfg.SkipNegativeChecks {
		steps = append(steps,
			workflow.Step{Name: StepRejectMissingOrder, Description: "A status change on an unknown order must be rejected", Endpoint: "PATCH /api/orders/:id/status",
				DependsOn: []string{StepLogin}, Run: s.rejectStatusOnMissingOrder},
			workflow.Step{Name: StepRejectPaidWithoutRef, Description: "Paid without a payment reference must be rejected", Endpoint: "PATCH /api/orders/:id/payment",
				DependsOn: []string{StepCreateOrder}, Run: s.rejectPaidWithoutReference},
		)
	}

	return steps
}
