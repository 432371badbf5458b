package payments

import "context"

// Subscription is the processor's view of a created subscription.
type Subscription struct {
	ID     string
	Status string
}

// Processor is the external billing collaborator. The processor holds the
// customer's stored payment method out of band; this API only creates
// subscriptions against it.
type Processor interface {
	CreateSubscription(ctx context.Context, customerID, priceID, paymentMethod string) (Subscription, error)
}
