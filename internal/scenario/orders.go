package scenario

import (
	"context"

	"bluemedix-workflow/internal/common/errors"
	"bluemedix-workflow/internal/models"
	"bluemedix-workflow/internal/workflow"
)

func (s *Scenario) createAddress(ctx context.Context, st workflow.State) (workflow.State, error) {
	addr, err := s.api.CreateAddress(ctx, models.AddressInput{
		Street:  "42 Wellness Avenue",
		City:    "Pune",
		State:   "Maharashtra",
		Pincode: "411001",
		Country: "India",
		Phone:   "9988776655",
	})
	if err != nil {
		return st, err
	}
	if addr.ID == "" {
		return st, errors.NewAssertionError("created address has no id")
	}
	return st.With(KeyAddressID, addr.ID), nil
}

func (s *Scenario) createOrder(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyProductID, KeyAddressID, KeyFranchiseID)
	if err != nil {
		return st, err
	}
	o, err := s.api.CreateOrder(ctx, models.OrderInput{
		Product:        ids[0],
		Address:        ids[1],
		Franchise:      ids[2],
		Quantity:       orderQuantity,
		SubtotalAmount: s.cfg.OrderSubtotal,
		DeliveryCharge: s.cfg.OrderDeliveryCharge,
		TotalAmount:    s.OrderTotal(),
	})
	if err != nil {
		return st, err
	}
	if o.ID == "" {
		return st, errors.NewAssertionError("created order has no id")
	}
	if err := checkAmounts(o, s.cfg.OrderSubtotal, s.cfg.OrderDeliveryCharge); err != nil {
		return st, err
	}
	return st.With(KeyOrderID, o.ID), nil
}

// checkAmounts asserts the stored amounts and the total invariant.
func checkAmounts(o *models.Order, subtotal, delivery float64) error {
	if !o.TotalMatches() {
		return errors.NewAssertionError("order total %.2f does not equal subtotal %.2f plus delivery %.2f",
			o.TotalAmount, o.SubtotalAmount, o.DeliveryCharge)
	}
	if !models.AmountsEqual(o.SubtotalAmount, subtotal) {
		return errors.NewAssertionError("order subtotal is %.2f, want %.2f", o.SubtotalAmount, subtotal)
	}
	if !models.AmountsEqual(o.DeliveryCharge, delivery) {
		return errors.NewAssertionError("order delivery charge is %.2f, want %.2f", o.DeliveryCharge, delivery)
	}
	return nil
}

func containsOrder(orders []models.Order, id string) bool {
	for _, o := range orders {
		if o.ID == id {
			return true
		}
	}
	return false
}

func (s *Scenario) listOrders(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyOrderID)
	if err != nil {
		return st, err
	}
	orders, err := s.api.ListOrders(ctx)
	if err != nil {
		return st, err
	}
	if !containsOrder(orders, ids[0]) {
		return st, errors.NewAssertionError("order %s missing from a list of %d orders", ids[0], len(orders))
	}
	return st, nil
}

func (s *Scenario) getOrder(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyOrderID, KeyProductID)
	if err != nil {
		return st, err
	}
	o, err := s.api.GetOrder(ctx, ids[0])
	if err != nil {
		return st, err
	}
	if o.ID != ids[0] {
		return st, errors.NewAssertionError("read order %s, got %s", ids[0], o.ID)
	}
	if o.Product.ID != ids[1] {
		return st, errors.NewAssertionError("order product is %q, want %q", o.Product.ID, ids[1])
	}
	if err := checkAmounts(o, s.cfg.OrderSubtotal, s.cfg.OrderDeliveryCharge); err != nil {
		return st, err
	}
	return st, nil
}

func (s *Scenario) updateDeliveryStatus(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyOrderID)
	if err != nil {
		return st, err
	}
	o, err := s.api.UpdateDeliveryStatus(ctx, ids[0], string(models.DeliveryAccepted))
	if err != nil {
		return st, err
	}
	if !models.SameStatus(o.DeliveryStatus, string(models.DeliveryAccepted)) {
		return st, errors.NewAssertionError("delivery status is %q, want %q", o.DeliveryStatus, models.DeliveryAccepted)
	}
	return st, nil
}

func (s *Scenario) updatePaymentStatus(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyOrderID)
	if err != nil {
		return st, err
	}
	paymentID := s.newPaymentID()
	o, err := s.api.UpdatePaymentStatus(ctx, ids[0], string(models.PaymentPaid), paymentID)
	if err != nil {
		return st, err
	}
	if !models.SameStatus(o.PaymentStatus, string(models.PaymentPaid)) {
		return st, errors.NewAssertionError("payment status is %q, want %q", o.PaymentStatus, models.PaymentPaid)
	}
	return st.With(KeyPaymentID, paymentID), nil
}

func (s *Scenario) verifyOrderStatus(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyOrderID, KeyPaymentID)
	if err != nil {
		return st, err
	}
	o, err := s.api.GetOrder(ctx, ids[0])
	if err != nil {
		return st, err
	}
	switch {
	case !models.SameStatus(o.DeliveryStatus, string(models.DeliveryAccepted)):
		return st, errors.NewAssertionError("stored delivery status is %q, want %q", o.DeliveryStatus, models.DeliveryAccepted)
	case !models.SameStatus(o.PaymentStatus, string(models.PaymentPaid)):
		return st, errors.NewAssertionError("stored payment status is %q, want %q", o.PaymentStatus, models.PaymentPaid)
	case o.PaymentID != ids[1]:
		return st, errors.NewAssertionError("stored payment id is %q, want %q", o.PaymentID, ids[1])
	case !o.TotalMatches():
		return st, errors.NewAssertionError("order total %.2f drifted from subtotal plus delivery", o.TotalAmount)
	}
	return st, nil
}

func (s *Scenario) myOrders(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyOrderID, KeyUserID)
	if err != nil {
		return st, err
	}
	orders, err := s.api.MyOrders(ctx)
	if err != nil {
		return st, err
	}
	for _, o := range orders {
		if o.User.ID != "" && o.User.ID != ids[1] {
			return st, errors.NewAssertionError("my-orders returned order %s of user %s", o.ID, o.User.ID)
		}
	}
	if !containsOrder(orders, ids[0]) {
		return st, errors.NewAssertionError("order %s missing from the caller's orders", ids[0])
	}
	return st, nil
}
