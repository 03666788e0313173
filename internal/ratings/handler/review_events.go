package handler

import (
	"context"
	"fmt"

	"tourism/internal/events"
	"tourism/internal/ratings/service"
	apperrors "tourism/pkg/errors"
	"tourism/pkg/kafka"
	"tourism/pkg/logger"
)

// ReviewEventHandler recomputes a property's rating for every review event
// consumed from the reviews topic.
type ReviewEventHandler struct {
	ratings service.RatingService
	log     *logger.Logger
}

func NewReviewEventHandler(ratings service.RatingService, log *logger.Logger) *ReviewEventHandler {
	return &ReviewEventHandler{ratings: ratings, log: log}
}

// Handle satisfies kafka.MessageHandler. Payload and lookup problems are
// permanent; anything else is retried by the consumer.
func (h *ReviewEventHandler) Handle(ctx context.Context, msg kafka.Message) error {
	switch msg.GetEventType() {
	case events.ReviewCreated, events.ReviewUpdated, events.ReviewDeleted:
	default:
		h.log.Debug("Skipping unrelated event", "event_type", msg.GetEventType(), "event_id", msg.GetEventID())
		return nil
	}

	var e events.ReviewEvent
	if err := msg.DecodeValue(&e); err != nil {
		return err
	}
	if e.PropertyID == "" {
		return kafka.NewPermanentError("review event without property id", kafka.ErrInvalidMessage)
	}

	stats, err := h.ratings.Recompute(ctx, e.PropertyID, service.SourceEvent)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) || apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			return kafka.NewPermanentError(fmt.Sprintf("cannot recompute property %s", e.PropertyID), err)
		}
		return kafka.NewTransientError(fmt.Sprintf("recompute of property %s failed", e.PropertyID), err)
	}

	h.log.Info("Rating converged from event",
		"event_id", msg.GetEventID(),
		"property_id", e.PropertyID,
		"rating", stats.Average,
		"review_count", stats.Count,
	)
	return nil
}
