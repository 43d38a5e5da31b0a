package stub

import (
	"net/http"
	"strings"

	"bluemedix-workflow/internal/models"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	var in models.AddressInput
	if err := decodeBody(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(in.Street) == "" || strings.TrimSpace(in.City) == "" || strings.TrimSpace(in.Pincode) == "" {
		fail(w, http.StatusBadRequest, "Street, city and pincode are required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	id, seq := s.store.nextID()
	addr := models.Address{
		ID:      id,
		Street:  in.Street,
		City:    in.City,
		State:   in.State,
		Pincode: in.Pincode,
		Country: in.Country,
		Phone:   in.Phone,
	}
	s.store.addresses.put(id, seq, addr)
	respond(w, http.StatusCreated, map[string]interface{}{"address": addr})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var in models.OrderInput
	if err := decodeBody(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	switch {
	case in.Quantity < 0:
		fail(w, http.StatusBadRequest, "Quantity must be positive")
		return
	case in.SubtotalAmount < 0 || in.DeliveryCharge < 0:
		fail(w, http.StatusBadRequest, "Amounts must not be negative")
		return
	case !models.AmountsEqual(in.TotalAmount, in.SubtotalAmount+in.DeliveryCharge):
		fail(w, http.StatusBadRequest, "Total amount must equal subtotal plus delivery charge")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	product, ok := s.store.products.get(in.Product)
	if !ok {
		fail(w, http.StatusNotFound, "Product not found")
		return
	}
	if _, ok := s.store.addresses.get(in.Address); !ok {
		fail(w, http.StatusNotFound, "Address not found")
		return
	}
	if _, ok := s.store.franchises.get(in.Franchise); !ok {
		fail(w, http.StatusNotFound, "Franchise not found")
		return
	}

	remaining, err := models.StockAdjustment{Quantity: in.Quantity, Operation: models.StockSubtract}.Apply(product.WarehouseStock)
	if err != nil {
		fail(w, http.StatusBadRequest, "Insufficient stock")
		return
	}
	product.WarehouseStock = remaining
	s.store.products.put(product.ID, 0, product)

	id, seq := s.store.nextID()
	order := models.Order{
		ID:             id,
		User:           models.NewRef(currentUser(r).ID),
		Product:        models.NewRef(in.Product),
		Address:        models.NewRef(in.Address),
		Franchise:      models.NewRef(in.Franchise),
		Quantity:       in.Quantity,
		SubtotalAmount: in.SubtotalAmount,
		DeliveryCharge: in.DeliveryCharge,
		TotalAmount:    in.TotalAmount,
		DeliveryStatus: string(models.DeliveryPending),
		PaymentStatus:  string(models.PaymentUnpaid),
	}
	s.store.orders.put(id, seq, order)
	respond(w, http.StatusCreated, map[string]interface{}{"order": order})
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	respond(w, http.StatusOK, map[string]interface{}{"orders": s.store.orders.list(nil)})
}

func (s *Server) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	callerID := currentUser(r).ID

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	orders := s.store.orders.list(func(o models.Order) bool { return o.User.ID == callerID })
	respond(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	o, ok := s.lookupOrder(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	caller := currentUser(r)
	if caller.Role == models.RoleCustomer && o.User.ID != caller.ID {
		fail(w, http.StatusForbidden, "Not authorized to view this order")
		return
	}

	var product interface{}
	if p, ok := s.store.products.get(o.Product.ID); ok {
		product = map[string]interface{}{"_id": p.ID, "name": p.Name, "price": p.Price}
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"order": populate(o, map[string]interface{}{"product": product}),
	})
}

func (s *Server) handleUpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	var in models.DeliveryStatusUpdate
	if err := decodeBody(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	o, ok := s.lookupOrder(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	target, err := models.ParseDeliveryStatus(in.DeliveryStatus)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid delivery status")
		return
	}
	current := models.DeliveryStatus(o.DeliveryStatus)
	if !current.CanTransition(target) {
		fail(w, http.StatusBadRequest, "Cannot change delivery status from "+string(current)+" to "+string(target))
		return
	}

	if target == models.DeliveryCancelled && current != models.DeliveryCancelled {
		if p, ok := s.store.products.get(o.Product.ID); ok {
			p.WarehouseStock += o.Quantity
			s.store.products.put(p.ID, 0, p)
		}
	}

	o.DeliveryStatus = string(target)
	s.store.orders.put(o.ID, 0, o)
	respond(w, http.StatusOK, map[string]interface{}{"order": o})
}

func (s *Server) handleUpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var in models.PaymentStatusUpdate
	if err := decodeBody(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	o, ok := s.lookupOrder(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	target, err := models.ParsePaymentStatus(in.PaymentStatus)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid payment status")
		return
	}
	current, err := models.ParsePaymentStatus(o.PaymentStatus)
	if err != nil {
		current = models.PaymentUnpaid
	}
	if err := models.ValidatePaymentTransition(current, target, in.PaymentID); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	o.PaymentStatus = string(target)
	if in.PaymentID != "" {
		o.PaymentID = in.PaymentID
	}
	s.store.orders.put(o.ID, 0, o)
	respond(w, http.StatusOK, map[string]interface{}{"order": o})
}

func (s *Server) lookupOrder(w http.ResponseWriter, id string) (models.Order, bool) {
	if !validID(id) {
		fail(w, http.StatusBadRequest, "Invalid order id")
		return models.Order{}, false
	}
	o, ok := s.store.orders.get(id)
	if !ok {
		fail(w, http.StatusNotFound, "Order not found")
		return models.Order{}, false
	}
	return o, true
}
