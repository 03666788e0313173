package service

import (
	"context"
	"errors"
	"strings"

	"tourism/internal/access"
	bookingserrors "tourism/internal/bookings/errors"
	"tourism/internal/bookings/flow"
	"tourism/internal/bookings/repository"
	"tourism/internal/events"
	apperrors "tourism/pkg/errors"
	"tourism/pkg/model"
	"tourism/pkg/validation"

	"github.com/google/uuid"
)

const (
	CreateFlowName = "create_booking"

	StepValidate = "validate"
	StepQuote    = "quote"
	StepLock     = "lock"
	StepReserve  = "reserve"
	StepPersist  = "persist"
	StepPublish  = "publish"
)

type createState struct {
	principal *model.Principal
	req       *model.BookingRequest
	res       *resolved
	pricing   model.PricingBreakdown
	lockKey   string
	seatsHeld int
	booking   *model.Booking
}

func (s *bookingService) Quote(ctx context.Context, p *model.Principal, req *model.BookingRequest) (*model.Quote, error) {
	if err := s.validate(p, req); err != nil {
		return nil, err
	}

	res, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.price(ctx, req, res)
	if err != nil {
		return nil, err
	}
	remaining, err := s.remaining(ctx, req, res)
	if err != nil {
		s.cfg.Log.Error("Failed to check availability", "resource_id", req.ResourceID, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	return &model.Quote{
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		ResourceName: res.name,
		CheckIn:      res.checkIn,
		CheckOut:     res.checkOut,
		Pricing:      breakdown,
		Available:    res.quantity <= remaining,
		Remaining:    remaining,
	}, nil
}

// Create runs validate, quote, lock, reserve, persist and publish. The lock
// is released whatever the outcome.
func (s *bookingService) Create(ctx context.Context, p *model.Principal, req *model.BookingRequest) (*model.Booking, error) {
	state := &createState{principal: p, req: req}

	err := s.limiter.Do(ctx, func() error {
		defer s.releaseLock(ctx, state)
		return s.create.Run(ctx, s.cfg.Log, state)
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			s.cfg.Log.Error("Booking creation failed", "step", flow.StepName(err), "error", err)
			return nil, apperrors.Internal("Failed to create booking", err)
		}
		return nil, apperrors.AsAppError(err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", state.booking.ID,
		"reference", state.booking.Reference,
		"user_id", state.booking.UserID,
		"resource_type", state.booking.ResourceType,
		"resource_id", state.booking.ResourceID,
		"total", state.booking.Pricing.Total,
	)
	return state.booking, nil
}

func (s *bookingService) newCreateFlow() *flow.Flow[*createState] {
	return flow.New(CreateFlowName,
		flow.NewStep(StepValidate, s.stepValidate),
		flow.NewStep(StepQuote, s.stepQuote),
		flow.NewStep(StepLock, s.stepLock),
		flow.NewStep(StepReserve, s.stepReserve).WithCompensation(s.releaseSeats),
		flow.NewStep(StepPersist, s.stepPersist),
		flow.NewStep(StepPublish, s.stepPublish),
	)
}

func (s *bookingService) validate(p *model.Principal, req *model.BookingRequest) error {
	if err := access.Check(p, ""); err != nil {
		return err
	}

	req.DiscountCode = strings.ToUpper(strings.TrimSpace(req.DiscountCode))
	req.RoomID = strings.TrimSpace(req.RoomID)
	req.SpecialRequests = strings.TrimSpace(req.SpecialRequests)

	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"resource_type", req.ResourceType,
			"resource_id", req.ResourceID,
			"error", err,
		)
		return validation.ToAppError(err)
	}
	return nil
}

func (s *bookingService) stepValidate(_ context.Context, st *createState) error {
	return s.validate(st.principal, st.req)
}

func (s *bookingService) stepQuote(ctx context.Context, st *createState) error {
	res, err := s.resolve(ctx, st.req)
	if err != nil {
		return err
	}
	breakdown, err := s.price(ctx, st.req, res)
	if err != nil {
		return err
	}
	st.res = res
	st.pricing = breakdown
	return nil
}

func (s *bookingService) stepLock(ctx context.Context, st *createState) error {
	key := repository.LockKey(st.req)
	if _, err := s.locks.Acquire(ctx, key, s.cfg.BookingLockTTL); err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return apperrors.Conflict("This item is currently being booked by another request. Please try again.").
				WithDetails(map[string]any{"resourceType": st.req.ResourceType, "resourceId": st.req.ResourceID})
		}
		return apperrors.Internal("Failed to acquire booking lock", err)
	}
	st.lockKey = key
	return nil
}

// stepReserve re-checks availability under the lock. Flight seats are taken
// here with a conditional decrement.
func (s *bookingService) stepReserve(ctx context.Context, st *createState) error {
	if st.res.fare != nil {
		if err := s.inventory.ReserveSeats(ctx, st.req.ResourceID, st.req.FareClass, st.res.quantity); err != nil {
			if errors.Is(err, bookingserrors.ErrSeatsUnavailable) {
				return s.unavailable(st.req, st.res.quantity, st.res.fare.SeatsAvailable)
			}
			return apperrors.Internal("Failed to reserve seats", err)
		}
		st.seatsHeld = st.res.quantity
		s.invalidateFlights(ctx)
		return nil
	}

	remaining, err := s.remaining(ctx, st.req, st.res)
	if err != nil {
		return apperrors.Internal("Failed to check availability", err)
	}
	if st.res.quantity > remaining {
		return s.unavailable(st.req, st.res.quantity, remaining)
	}
	return nil
}

func (s *bookingService) releaseSeats(ctx context.Context, st *createState) error {
	if st.seatsHeld == 0 {
		return nil
	}
	if err := s.inventory.ReleaseSeats(ctx, st.req.ResourceID, st.req.FareClass, st.seatsHeld); err != nil {
		return err
	}
	st.seatsHeld = 0
	s.invalidateFlights(ctx)
	return nil
}

func (s *bookingService) stepPersist(ctx context.Context, st *createState) error {
	now := s.now().UTC()
	actor := principalID(st.principal)

	b := &model.Booking{
		Reference:       NewReference(),
		UserID:          st.principal.UserID,
		ResourceType:    st.req.ResourceType,
		ResourceID:      st.req.ResourceID,
		ResourceOwnerID: st.res.ownerID,
		ResourceName:    st.res.name,
		RoomID:          st.req.RoomID,
		CheckIn:         st.res.checkIn,
		CheckOut:        st.res.checkOut,
		Guests:          st.req.Guests,
		SpecialRequests: st.req.SpecialRequests,
		Pricing:         st.pricing,
		Payment: model.Payment{
			Status:          model.PaymentUnpaid,
			Method:          st.req.PaymentMethod,
			RemainingAmount: st.pricing.Total,
			Transactions:    []model.PaymentTransaction{},
		},
		Status: model.BookingPending,
		StatusHistory: []model.StatusChange{
			{To: model.BookingPending, At: now, By: actor},
		},
	}
	if st.res.fare != nil {
		b.FareClass = st.req.FareClass
	}
	if st.res.property != nil && st.res.property.Features.InstantConfirmation {
		b.Status = model.BookingConfirmed
		b.StatusHistory = append(b.StatusHistory, model.StatusChange{
			From:   model.BookingPending,
			To:     model.BookingConfirmed,
			At:     now,
			By:     actor,
			Reason: "instant confirmation",
		})
	}

	if err := s.repo.Create(ctx, b); err != nil {
		s.cfg.Log.Error("Failed to persist booking", "resource_id", b.ResourceID, "error", err)
		return apperrors.Internal("Failed to create booking", err)
	}
	st.booking = b
	return nil
}

// stepPublish never fails the flow: the booking is already stored.
func (s *bookingService) stepPublish(ctx context.Context, st *createState) error {
	s.metrics.BookingsCreated.WithLabelValues(string(st.booking.ResourceType)).Inc()
	s.publish(ctx, events.BookingCreated, st.booking, "", principalID(st.principal))
	return nil
}

func (s *bookingService) releaseLock(ctx context.Context, st *createState) {
	if st.lockKey == "" {
		return
	}
	if err := s.locks.Release(context.WithoutCancel(ctx), st.lockKey); err != nil {
		s.cfg.Log.Warn("Failed to release booking lock", "lock_id", st.lockKey, "error", err)
	}
}

// NewReference returns a short human readable booking code.
func NewReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK-" + strings.ToUpper(id[:10])
}
