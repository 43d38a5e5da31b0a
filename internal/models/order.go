// internal/models/order.go
package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// AmountTolerance bounds float drift when comparing order amounts.
const AmountTolerance = 1e-2

var (
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrPaymentIDRequired  = errors.New("payment id is required to mark an order paid")
	ErrUnknownStatusValue = errors.New("unknown status value")
)

type Address struct {
	ID      string `json:"_id"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

type AddressInput struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

type Order struct {
	ID             string  `json:"_id"`
	User           Ref     `json:"user"`
	Product        Ref     `json:"product"`
	Address        Ref     `json:"address"`
	Franchise      Ref     `json:"franchise"`
	Quantity       int     `json:"quantity"`
	SubtotalAmount float64 `json:"subtotalAmount"`
	DeliveryCharge float64 `json:"deliveryCharge"`
	TotalAmount    float64 `json:"totalAmount"`
	DeliveryStatus string  `json:"deliveryStatus"`
	PaymentStatus  string  `json:"paymentStatus"`
	PaymentID      string  `json:"paymentId,omitempty"`
}

// TotalMatches reports whether totalAmount equals subtotal plus delivery charge.
func (o Order) TotalMatches() bool {
	return AmountsEqual(o.TotalAmount, o.SubtotalAmount+o.DeliveryCharge)
}

type OrderInput struct {
	Product        string  `json:"product"`
	Address        string  `json:"address"`
	Franchise      string  `json:"franchise"`
	Quantity       int     `json:"quantity"`
	SubtotalAmount float64 `json:"subtotalAmount"`
	DeliveryCharge float64 `json:"deliveryCharge"`
	TotalAmount    float64 `json:"totalAmount"`
}

func AmountsEqual(a, b float64) bool {
	return math.Abs(a-b) <= AmountTolerance
}

// DeliveryStatusUpdate is the body of PATCH /api/orders/:id/status.
type DeliveryStatusUpdate struct {
	DeliveryStatus string `json:"deliverystatus"`
}

// PaymentStatusUpdate is the body of PATCH /api/orders/:id/payment.
type PaymentStatusUpdate struct {
	PaymentStatus string `json:"paymentStatus"`
	PaymentID     string `json:"paymentid,omitempty"`
}

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryAccepted  DeliveryStatus = "accepted"
	DeliveryShipped   DeliveryStatus = "shipped"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryCancelled DeliveryStatus = "cancelled"
)

var deliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryPending:  {DeliveryAccepted, DeliveryCancelled},
	DeliveryAccepted: {DeliveryShipped, DeliveryCancelled},
	DeliveryShipped:  {DeliveryDelivered},
}

func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	status := DeliveryStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case DeliveryPending, DeliveryAccepted, DeliveryShipped, DeliveryDelivered, DeliveryCancelled:
		return status, nil
	}
	return "", fmt.Errorf("%w: delivery status %q", ErrUnknownStatusValue, s)
}

// CanTransition reports whether the backend accepts moving from s to target.
// Re-applying the current state is allowed.
func (s DeliveryStatus) CanTransition(target DeliveryStatus) bool {
	if s == target {
		return true
	}
	for _, next := range deliveryTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "Unpaid"
	PaymentPaid   PaymentStatus = "Paid"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unpaid":
		return PaymentUnpaid, nil
	case "paid":
		return PaymentPaid, nil
	}
	return "", fmt.Errorf("%w: payment status %q", ErrUnknownStatusValue, s)
}

// ValidatePaymentTransition checks a payment update against the current state.
func ValidatePaymentTransition(current, target PaymentStatus, paymentID string) error {
	if target == PaymentPaid && strings.TrimSpace(paymentID) == "" {
		return ErrPaymentIDRequired
	}
	if current == PaymentPaid && target == PaymentUnpaid {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, target)
	}
	return nil
}

// SameStatus compares status strings the way the backend does.
func SameStatus(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
