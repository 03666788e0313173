package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "tourism/internal/bookings/errors"
	"tourism/internal/pricing"
	apperrors "tourism/pkg/errors"
	"tourism/pkg/model"
	"tourism/pkg/validation"
)

// resolved is a booking request bound to the resource it names.
type resolved struct {
	name     string
	ownerID  string
	checkIn  time.Time
	checkOut time.Time
	quantity int
	input    pricing.QuoteInput

	property *model.Property
	room     *model.Room
	flight   *model.Flight
	fare     *model.Fare
	service  *model.Service
}

func (s *bookingService) resolve(ctx context.Context, req *model.BookingRequest) (*resolved, error) {
	switch req.ResourceType {
	case model.ResourceProperty:
		return s.resolveProperty(ctx, req)
	case model.ResourceFlight:
		return s.resolveFlight(ctx, req)
	case model.ResourceService:
		return s.resolveService(ctx, req)
	}
	return nil, validation.ToAppError(validation.Field("resourceType", "must be one of property, flight, service"))
}

func (s *bookingService) resolveProperty(ctx context.Context, req *model.BookingRequest) (*resolved, error) {
	prop, err := s.catalog.Property(ctx, req.ResourceID)
	if err != nil {
		return nil, s.catalogError("Property", req.ResourceID, err)
	}

	room := prop.Room(req.RoomID)
	if room == nil {
		return nil, validation.ToAppError(validation.Field("roomId", "room does not exist in this property"))
	}

	quantity := max(req.Quantity, 1)
	if req.Guests > room.Capacity*quantity {
		return nil, validation.ToAppError(validation.Field("guests", "exceeds the capacity of the requested rooms"))
	}

	checkIn := req.CheckIn.UTC()
	checkOut := req.CheckOut.UTC()
	return &resolved{
		name:     prop.Name,
		ownerID:  prop.OwnerID,
		checkIn:  checkIn,
		checkOut: checkOut,
		quantity: quantity,
		input: pricing.QuoteInput{
			UnitPrice: room.PricePerNight,
			Currency:  room.Currency,
			Quantity:  quantity,
			CheckIn:   checkIn,
			CheckOut:  checkOut,
			PerNight:  true,
		},
		property: prop,
		room:     room,
	}, nil
}

func (s *bookingService) resolveFlight(ctx context.Context, req *model.BookingRequest) (*resolved, error) {
	flight, err := s.catalog.Flight(ctx, req.ResourceID)
	if err != nil {
		return nil, s.catalogError("Flight", req.ResourceID, err)
	}

	if req.FareClass == "" {
		req.FareClass = model.FareEconomy
	}
	fare := flight.Fares.ForClass(req.FareClass)
	if fare == nil {
		return nil, validation.ToAppError(validation.Field("fareClass", "is not sold on this flight"))
	}

	return &resolved{
		name:     flight.Airline + " " + flight.FlightNumber,
		checkIn:  flight.Departure.Time.UTC(),
		checkOut: flight.Arrival.Time.UTC(),
		quantity: req.Guests,
		input: pricing.QuoteInput{
			UnitPrice: fare.Price,
			Currency:  fare.Currency,
			Quantity:  req.Guests,
		},
		flight: flight,
		fare:   fare,
	}, nil
}

func (s *bookingService) resolveService(ctx context.Context, req *model.BookingRequest) (*resolved, error) {
	svc, err := s.catalog.Service(ctx, req.ResourceID)
	if err != nil {
		return nil, s.catalogError("Service", req.ResourceID, err)
	}

	slot := req.CheckIn.UTC()
	if !svc.OffersSlot(slot) {
		return nil, validation.ToAppError(validation.Field("checkIn", "is outside the service schedule"))
	}

	return &resolved{
		name:     svc.Name,
		ownerID:  svc.OwnerID,
		checkIn:  slot,
		checkOut: slot.Add(time.Duration(svc.DurationMinutes) * time.Minute),
		quantity: req.Guests,
		input: pricing.QuoteInput{
			UnitPrice: svc.Price,
			Currency:  svc.Currency,
			Quantity:  req.Guests,
		},
		service: svc,
	}, nil
}

// remaining is how many units of the requested inventory are still free.
// Flight seats are read from the loaded fare; the reserve step decrements
// them atomically.
func (s *bookingService) remaining(ctx context.Context, req *model.BookingRequest, res *resolved) (int, error) {
	switch {
	case res.room != nil:
		if !res.room.Available {
			return 0, nil
		}
		reserved, err := s.inventory.ReservedRooms(ctx, req.ResourceID, res.checkIn, res.checkOut)
		if err != nil {
			return 0, err
		}
		return max(res.room.Units-reserved[res.room.ID], 0), nil
	case res.fare != nil:
		if !res.flight.Status.IsBookable() && res.flight.Status != "" {
			return 0, nil
		}
		return res.fare.SeatsAvailable, nil
	case res.service != nil:
		booked, err := s.inventory.SlotGuests(ctx, req.ResourceID, res.checkIn)
		if err != nil {
			return 0, err
		}
		return max(res.service.Capacity-booked, 0), nil
	}
	return 0, nil
}

func (s *bookingService) price(ctx context.Context, req *model.BookingRequest, res *resolved) (model.PricingBreakdown, error) {
	in := res.input
	if req.DiscountCode != "" {
		code, err := s.discounts.Lookup(ctx, req.DiscountCode)
		if err != nil {
			return model.PricingBreakdown{}, err
		}
		in.Discount = code
	}
	return s.calculator.Quote(in)
}

func (s *bookingService) unavailable(req *model.BookingRequest, requested, remaining int) error {
	s.metrics.AvailabilityRejections.WithLabelValues(string(req.ResourceType)).Inc()
	s.cfg.Log.Warn("Booking rejected for lack of inventory",
		"resource_type", req.ResourceType,
		"resource_id", req.ResourceID,
		"requested", requested,
		"remaining", remaining,
	)
	return apperrors.Availability("Not enough availability for this request", map[string]any{
		"requested": requested,
		"remaining": remaining,
	})
}

func (s *bookingService) catalogError(resource, id string, err error) error {
	if errors.Is(err, bookingserrors.ErrResourceNotFound) {
		return apperrors.NotFoundWithID(resource, id)
	}
	s.cfg.Log.Error("Failed to load booked resource", "resource", resource, "id", id, "error", err)
	return apperrors.Internal("Failed to load "+resource, err)
}
