package services

import (
	"context"
	"log"

	"phsar/pkg/stripeclient"
)

// EventPublisher publishes order events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	PublishEvent(eventType string, payload interface{}) error
}

// EventLedger remembers processed gateway event ids.
// *eventledger.RedisLedger satisfies it.
type EventLedger interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// PaymentGateway creates checkout sessions and verifies webhook deliveries.
// *stripeclient.Client satisfies it.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req stripeclient.SessionRequest) (*stripeclient.Session, error)
	ParseWebhookEvent(payload []byte, signature string) (*stripeclient.WebhookEvent, error)
}

// publish sends an event when a publisher is configured. Failures are logged
// and never fail the caller.
func publish(pub EventPublisher, eventType string, payload interface{}) {
	if pub == nil {
		return
	}
	if err := pub.PublishEvent(eventType, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", eventType, err)
	}
}
