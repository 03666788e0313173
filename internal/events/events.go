// Package events publishes booking and review domain events. Publishing is
// best effort: callers log a failure and carry on, since the write that
// produced the event has already been committed.
package events

import (
	"context"
	"time"

	"tourism/pkg/model"
)

const (
	BookingCreated        = "booking.created"
	BookingStatusChanged  = "booking.status_changed"
	BookingPaymentUpdated = "booking.payment_updated"

	ReviewCreated = "review.created"
	ReviewUpdated = "review.updated"
	ReviewDeleted = "review.deleted"

	SchemaVersion = "1"
)

type BookingEvent struct {
	BookingID     string              `json:"bookingId"`
	Reference     string              `json:"reference"`
	UserID        string              `json:"userId"`
	ResourceType  model.ResourceType  `json:"resourceType"`
	ResourceID    string              `json:"resourceId"`
	Status        model.BookingStatus `json:"status"`
	PreviousState model.BookingStatus `json:"previousStatus,omitempty"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
	Total         float64             `json:"total"`
	Currency      string              `json:"currency"`
	ActorID       string              `json:"actorId,omitempty"`
	OccurredAt    time.Time           `json:"occurredAt"`
}

// NewBookingEvent snapshots b. previous is empty for creation events.
func NewBookingEvent(b *model.Booking, previous model.BookingStatus, actorID string) BookingEvent {
	return BookingEvent{
		BookingID:     b.ID,
		Reference:     b.Reference,
		UserID:        b.UserID,
		ResourceType:  b.ResourceType,
		ResourceID:    b.ResourceID,
		Status:        b.Status,
		PreviousState: previous,
		PaymentStatus: b.Payment.Status,
		Total:         b.Pricing.Total,
		Currency:      b.Pricing.Currency,
		ActorID:       actorID,
		OccurredAt:    time.Now().UTC(),
	}
}

// ReviewEvent is keyed by property so every event for one property lands on
// the same partition and is recomputed in order.
type ReviewEvent struct {
	ReviewID   string    `json:"reviewId"`
	PropertyID string    `json:"propertyId"`
	BookingID  string    `json:"bookingId"`
	UserID     string    `json:"userId"`
	Rating     int       `json:"rating"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewReviewEvent(r *model.Review) ReviewEvent {
	return ReviewEvent{
		ReviewID:   r.ID,
		PropertyID: r.PropertyID,
		BookingID:  r.BookingID,
		UserID:     r.UserID,
		Rating:     r.Rating,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	PublishBooking(ctx context.Context, eventType string, e BookingEvent) error
	PublishReview(ctx context.Context, eventType string, e ReviewEvent) error
	Close() error
}

// Noop discards every event. Used when Kafka is disabled.
type Noop struct{}

func (Noop) PublishBooking(context.Context, string, BookingEvent) error { return nil }
func (Noop) PublishReview(context.Context, string, ReviewEvent) error   { return nil }
func (Noop) Close() error                                               { return nil }
