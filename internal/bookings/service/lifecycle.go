package service

import (
	"context"
	"fmt"
	"math"
	"slices"

	"tourism/internal/bookings/repository"
	"tourism/internal/events"
	apperrors "tourism/pkg/errors"
	"tourism/pkg/model"
	"tourism/pkg/validation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var transitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingPending:   {model.BookingConfirmed, model.BookingCancelled},
	model.BookingConfirmed: {model.BookingCompleted, model.BookingCancelled, model.BookingNoShow},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to model.BookingStatus) bool {
	return slices.Contains(transitions[from], to)
}

// LoyaltyPoints awarded for a completed booking: one per whole unit of the
// amount charged.
func LoyaltyPoints(total float64) int {
	return int(math.Floor(max(total, 0)))
}

type transitionOptions struct {
	authorize func(p *model.Principal, b *model.Booking) error
	reason    string
	// prepare checks preconditions beyond the status and adds fields to the
	// conditional update.
	prepare func(b *model.Booking, t *repository.Transition) error
	// apply mirrors prepare's fields onto the in-memory booking.
	apply func(b *model.Booking)
	// inTx runs inside the same transaction as the status update.
	inTx func(ctx context.Context, b *model.Booking) error
}

func (s *bookingService) Confirm(ctx context.Context, p *model.Principal, id string) (*model.Booking, error) {
	return s.transition(ctx, p, id, model.BookingConfirmed, transitionOptions{authorize: authorizeHost})
}

func (s *bookingService) Cancel(ctx context.Context, p *model.Principal, id string, req *model.CancelRequest) (*model.Booking, error) {
	if req == nil {
		req = &model.CancelRequest{}
	}
	if err := s.validator.ValidateCancel(req); err != nil {
		return nil, validation.ToAppError(err)
	}

	var cancellation model.Cancellation
	b, err := s.transition(ctx, p, id, model.BookingCancelled, transitionOptions{
		authorize: authorizeParticipant,
		reason:    req.Reason,
		prepare: func(b *model.Booking, t *repository.Transition) error {
			cancellation = model.Cancellation{At: t.Change.At, By: t.Change.By, Reason: req.Reason}
			t.Set = bson.M{"cancellation": cancellation}
			return nil
		},
		apply: func(b *model.Booking) { b.Cancellation = &cancellation },
	})
	if err != nil {
		return nil, err
	}

	if b.ResourceType == model.ResourceFlight && b.FareClass != "" {
		if err := s.inventory.ReleaseSeats(ctx, b.ResourceID, b.FareClass, b.Guests); err != nil {
			s.cfg.Log.Error("Failed to release seats of cancelled booking",
				"id", b.ID,
				"flight_id", b.ResourceID,
				"seats", b.Guests,
				"error", err,
			)
		} else {
			s.invalidateFlights(ctx)
		}
	}
	return b, nil
}

// CheckIn records arrival on a confirmed booking. The status stays confirmed
// until check-out.
func (s *bookingService) CheckIn(ctx context.Context, p *model.Principal, id string) (*model.Booking, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeHost(p, b); err != nil {
		return nil, err
	}
	if b.Status != model.BookingConfirmed {
		return nil, apperrors.Conflict(fmt.Sprintf("Only confirmed bookings can be checked in, booking is %s", b.Status))
	}
	if b.CheckInRecord != nil {
		return nil, apperrors.Conflict("Booking is already checked in")
	}

	rec := model.StayRecord{At: s.now().UTC(), By: principalID(p)}
	if err := s.repo.RecordCheckIn(ctx, id, rec); err != nil {
		return nil, s.writeError(id, "CheckIn", err)
	}

	b.CheckInRecord = &rec
	b.UpdatedAt = rec.At
	s.cfg.Log.Info("Booking checked in", "id", id, "by", rec.By)
	return b, nil
}

// CheckOut completes a checked-in booking and credits the guest's loyalty
// account in the same transaction.
func (s *bookingService) CheckOut(ctx context.Context, p *model.Principal, id string) (*model.Booking, error) {
	var rec model.StayRecord
	return s.transition(ctx, p, id, model.BookingCompleted, transitionOptions{
		authorize: authorizeHost,
		prepare: func(b *model.Booking, t *repository.Transition) error {
			if b.CheckInRecord == nil {
				return apperrors.Conflict("Guest has not checked in")
			}
			rec = model.StayRecord{At: t.Change.At, By: t.Change.By}
			t.Filter = bson.M{"check_in_record": bson.M{"$exists": true}}
			t.Set = bson.M{"check_out_record": rec}
			return nil
		},
		apply: func(b *model.Booking) { b.CheckOutRecord = &rec },
		inTx: func(ctx context.Context, b *model.Booking) error {
			loyalty, err := s.loyalty.AwardStay(ctx, b.UserID, LoyaltyPoints(b.Pricing.Total))
			if err != nil {
				return err
			}
			s.cfg.Log.Info("Loyalty points awarded",
				"user_id", b.UserID,
				"points", loyalty.Points,
				"tier", loyalty.Tier,
			)
			return nil
		},
	})
}

func (s *bookingService) MarkNoShow(ctx context.Context, p *model.Principal, id string) (*model.Booking, error) {
	return s.transition(ctx, p, id, model.BookingNoShow, transitionOptions{
		authorize: authorizeHost,
		prepare: func(b *model.Booking, t *repository.Transition) error {
			if b.CheckInRecord != nil {
				return apperrors.Conflict("Guest has already checked in")
			}
			t.Filter = bson.M{"check_in_record": bson.M{"$exists": false}}
			return nil
		},
	})
}

func (s *bookingService) transition(ctx context.Context, p *model.Principal, id string, to model.BookingStatus, opts transitionOptions) (*model.Booking, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := opts.authorize(p, b); err != nil {
		s.cfg.Log.Warn("Booking transition rejected", "id", id, "to", to, "error", err)
		return nil, err
	}

	from := b.Status
	if !CanTransition(from, to) {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot change booking status from %s to %s", from, to))
	}

	t := repository.Transition{
		Change: model.StatusChange{
			From:   from,
			To:     to,
			At:     s.now().UTC(),
			By:     principalID(p),
			Reason: opts.reason,
		},
	}
	if opts.prepare != nil {
		if err := opts.prepare(b, &t); err != nil {
			return nil, err
		}
	}

	if opts.inTx == nil {
		err = s.repo.Transition(ctx, id, t)
	} else {
		err = s.repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
			if err := s.repo.Transition(sc, id, t); err != nil {
				return err
			}
			return opts.inTx(sc, b)
		})
	}
	if err != nil {
		return nil, s.writeError(id, "Transition", err)
	}

	b.Status = to
	b.UpdatedAt = t.Change.At
	b.StatusHistory = append(b.StatusHistory, t.Change)
	if opts.apply != nil {
		opts.apply(b)
	}

	s.metrics.BookingTransitions.WithLabelValues(string(from), string(to)).Inc()
	s.publish(ctx, events.BookingStatusChanged, b, from, principalID(p))
	s.cfg.Log.Info("Booking status changed",
		"id", id,
		"from", from,
		"to", to,
		"by", principalID(p),
	)
	return b, nil
}
