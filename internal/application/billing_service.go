package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/coursewire/coursewire/internal/domain/entity"
	"github.com/coursewire/coursewire/internal/domain/repository"
	"github.com/coursewire/coursewire/pkg/apperr"
	"github.com/coursewire/coursewire/pkg/payments"
)

// BillingService purchases subscriptions through the external processor.
type BillingService struct {
	Users     repository.UserRepository
	Processor payments.Processor
	PriceID   string
	Logger    *logrus.Logger
}

// BuySubscription creates a subscription for the user and persists the
// returned id and status. A failed external call surfaces immediately; there
// is no retry and nothing to roll back.
func (s *BillingService) BuySubscription(ctx context.Context, u *entity.User) (payments.Subscription, error) {
	if u.IsAdmin() {
		return payments.Subscription{}, apperr.BadRequest("admins are not billable")
	}
	if u.StripeCustomerID == nil || u.PaymentMethodID == nil {
		return payments.Subscription{}, apperr.BadRequest("please add a payment method before purchasing a subscription")
	}

	sub, err := s.Processor.CreateSubscription(ctx, *u.StripeCustomerID, s.PriceID, *u.PaymentMethodID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("subscription create failed")
		return payments.Subscription{}, err
	}

	if err := s.Users.UpdateSubscription(ctx, u.ID, sub.ID, sub.Status); err != nil {
		return payments.Subscription{}, err
	}
	return sub, nil
}
