package service

import (
	"context"
	"errors"
	"time"

	"tourism/internal/access"
	bookingserrors "tourism/internal/bookings/errors"
	"tourism/internal/bookings/flow"
	"tourism/internal/bookings/repository"
	"tourism/internal/bookings/validator"
	"tourism/internal/events"
	"tourism/internal/pricing"
	"tourism/pkg/cache"
	"tourism/pkg/config"
	apperrors "tourism/pkg/errors"
	"tourism/pkg/metrics"
	"tourism/pkg/model"
)

// FlightsCacheNamespace is bumped whenever seat counts change so flight
// search results never advertise sold seats for long.
const FlightsCacheNamespace = "flights"

// DefaultMaxConcurrentCreates bounds concurrent creation flows per process.
const DefaultMaxConcurrentCreates = 40

type DiscountLookup interface {
	Lookup(ctx context.Context, code string) (*model.DiscountCode, error)
}

type BookingService interface {
	Quote(ctx context.Context, p *model.Principal, req *model.BookingRequest) (*model.Quote, error)
	Create(ctx context.Context, p *model.Principal, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, p *model.Principal, id string) (*model.Booking, error)

	Confirm(ctx context.Context, p *model.Principal, id string) (*model.Booking, error)
	Cancel(ctx context.Context, p *model.Principal, id string, req *model.CancelRequest) (*model.Booking, error)
	CheckIn(ctx context.Context, p *model.Principal, id string) (*model.Booking, error)
	CheckOut(ctx context.Context, p *model.Principal, id string) (*model.Booking, error)
	MarkNoShow(ctx context.Context, p *model.Principal, id string) (*model.Booking, error)

	RecordPayment(ctx context.Context, p *model.Principal, id string, req *model.PaymentRequest) (*model.Booking, error)
	Refund(ctx context.Context, p *model.Principal, id string) (*model.Booking, error)
	MarkPaymentFailed(ctx context.Context, p *model.Principal, id string, req *model.PaymentFailureRequest) (*model.Booking, error)
}

// Dependencies groups the collaborators of the booking service.
type Dependencies struct {
	Bookings   repository.BookingRepository
	Locks      repository.BookingLockRepository
	Inventory  repository.InventoryRepository
	Catalog    repository.CatalogRepository
	Loyalty    repository.LoyaltyRepository
	Discounts  DiscountLookup
	Calculator *pricing.Calculator
	Validator  *validator.BookingValidator
	Publisher  events.Publisher
	Cache      cache.Cache
	Limiter    *flow.Limiter
	Metrics    *metrics.Metrics
}

type bookingService struct {
	repo       repository.BookingRepository
	locks      repository.BookingLockRepository
	inventory  repository.InventoryRepository
	catalog    repository.CatalogRepository
	loyalty    repository.LoyaltyRepository
	discounts  DiscountLookup
	calculator *pricing.Calculator
	validator  *validator.BookingValidator
	publisher  events.Publisher
	cache      cache.Cache
	limiter    *flow.Limiter
	metrics    *metrics.Metrics
	cfg        *config.Config
	create     *flow.Flow[*createState]
	now        func() time.Time
}

func NewBookingService(deps Dependencies, cfg *config.Config) BookingService {
	s := &bookingService{
		repo:       deps.Bookings,
		locks:      deps.Locks,
		inventory:  deps.Inventory,
		catalog:    deps.Catalog,
		loyalty:    deps.Loyalty,
		discounts:  deps.Discounts,
		calculator: deps.Calculator,
		validator:  deps.Validator,
		publisher:  deps.Publisher,
		cache:      deps.Cache,
		limiter:    deps.Limiter,
		metrics:    deps.Metrics,
		cfg:        cfg,
		now:        time.Now,
	}
	if s.publisher == nil {
		s.publisher = events.Noop{}
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	if s.limiter == nil {
		s.limiter = flow.NewLimiter(DefaultMaxConcurrentCreates)
	}
	s.create = s.newCreateFlow()
	return s
}

func (s *bookingService) GetByID(ctx context.Context, p *model.Principal, id string) (*model.Booking, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeParticipant(p, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bookingService) find(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to get booking by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return b, nil
}

// writeError translates repository errors of a conditional booking update.
func (s *bookingService) writeError(id, operation string, err error) error {
	switch {
	case errors.Is(err, bookingserrors.ErrStaleState):
		return apperrors.Conflict("Booking was modified by another request. Please reload and try again.")
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case apperrors.IsAppError(err):
		return err
	}
	s.cfg.Log.Error("Failed to update booking", "id", id, "operation", operation, "error", err)
	return apperrors.Internal("Failed to update booking", err)
}

func (s *bookingService) publish(ctx context.Context, eventType string, b *model.Booking, previous model.BookingStatus, actorID string) {
	if err := s.publisher.PublishBooking(ctx, eventType, events.NewBookingEvent(b, previous, actorID)); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", b.ID,
			"error", err,
		)
	}
}

func (s *bookingService) invalidateFlights(ctx context.Context) {
	if err := s.cache.Bump(ctx, FlightsCacheNamespace); err != nil {
		s.cfg.Log.Warn("Failed to invalidate flight search cache", "error", err)
	}
}

// authorizeHost lets the resource owner or an admin act. Flights belong to
// the platform, so only admins manage their bookings.
func authorizeHost(p *model.Principal, b *model.Booking) error {
	return access.Owner(p, b.ResourceOwnerID)
}

// authorizeParticipant admits the booking's user besides the host and admins.
func authorizeParticipant(p *model.Principal, b *model.Booking) error {
	if p != nil && p.UserID != "" && p.UserID == b.UserID {
		return nil
	}
	if err := authorizeHost(p, b); err != nil {
		if apperrors.HasCode(err, apperrors.CodeUnauthorized) {
			return err
		}
		return apperrors.Forbidden("You do not have access to this booking")
	}
	return nil
}

func principalID(p *model.Principal) string {
	if p == nil {
		return ""
	}
	return p.UserID
}
