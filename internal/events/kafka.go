package events

import (
	"context"
	"errors"

	"tourism/pkg/kafka"
	"tourism/pkg/middleware"
)

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	bookings producer
	reviews  producer
	source   string
}

// NewKafkaPublisher takes ownership of both producers.
func NewKafkaPublisher(bookings, reviews *kafka.Producer, source string) *KafkaPublisher {
	return &KafkaPublisher{bookings: bookings, reviews: reviews, source: source}
}

func (p *KafkaPublisher) PublishBooking(ctx context.Context, eventType string, e BookingEvent) error {
	return p.publish(ctx, p.bookings, e.BookingID, eventType, e)
}

func (p *KafkaPublisher) PublishReview(ctx context.Context, eventType string, e ReviewEvent) error {
	return p.publish(ctx, p.reviews, e.PropertyID, eventType, e)
}

func (p *KafkaPublisher) publish(ctx context.Context, to producer, key, eventType string, payload any) error {
	msg, err := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		Build()
	if err != nil {
		return err
	}
	return to.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return errors.Join(p.bookings.Close(), p.reviews.Close())
}
