package scenario

import (
	"context"

	"bluemedix-workflow/internal/common/errors"
	"bluemedix-workflow/internal/models"
	"bluemedix-workflow/internal/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// expectRejection passes only when the backend answered with a rejection.
// Acceptance is an assertion failure; transport errors pass through.
func expectRejection(err error, action string) error {
	if err == nil {
		return errors.NewAssertionError("backend accepted %s", action)
	}
	if errors.IsBackendRejection(err) {
		return nil
	}
	return err
}

func (s *Scenario) rejectStatusOnMissingOrder(ctx context.Context, st workflow.State) (workflow.State, error) {
	missing := primitive.NewObjectID().Hex()
	_, err := s.api.UpdateDeliveryStatus(ctx, missing, string(models.DeliveryAccepted))
	return st, expectRejection(err, "a status change on unknown order "+missing)
}

func (s *Scenario) rejectPaidWithoutReference(ctx context.Context, st workflow.State) (workflow.State, error) {
	ids, err := st.Require(KeyOrderID)
	if err != nil {
		return st, err
	}
	_, err = s.api.UpdatePaymentStatus(ctx, ids[0], string(models.PaymentPaid), "")
	return st, expectRejection(err, "Paid without a payment reference")
}
