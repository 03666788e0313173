package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"tourism/internal/access"
	flightserrors "tourism/internal/flights/errors"
	"tourism/internal/flights/repository"
	"tourism/internal/flights/validator"
	"tourism/internal/pricing"
	"tourism/internal/search"
	"tourism/pkg/cache"
	"tourism/pkg/config"
	apperrors "tourism/pkg/errors"
	httputil "tourism/pkg/http"
	"tourism/pkg/metrics"
	"tourism/pkg/model"
	"tourism/pkg/sanitizer"
	"tourism/pkg/validation"
)

const CacheNamespace = "flights"

// FlightResult pairs a flight with the fare of the searched class.
type FlightResult struct {
	*model.Flight
	Class      model.FareClass `json:"class"`
	Fare       *model.Fare     `json:"fare,omitempty"`
	TotalPrice float64         `json:"totalPrice"`
}

type SearchResult struct {
	Flights    []FlightResult      `json:"flights"`
	Pagination httputil.Pagination `json:"pagination"`
	Filters    search.Filters      `json:"filters"`
}

type FlightService interface {
	Create(ctx context.Context, p *model.Principal, f *model.Flight) error
	GetByID(ctx context.Context, id string) (*model.Flight, error)
	Search(ctx context.Context, values url.Values) (*SearchResult, error)
	UpdateStatus(ctx context.Context, p *model.Principal, id string, u *model.FlightStatusUpdate) error
}

type flightService struct {
	repo      repository.FlightRepository
	validator *validator.FlightValidator
	cache     cache.Cache
	metrics   *metrics.Metrics
	cfg       *config.Config
}

func NewFlightService(
	repo repository.FlightRepository,
	validator *validator.FlightValidator,
	searchCache cache.Cache,
	m *metrics.Metrics,
	cfg *config.Config,
) FlightService {
	return &flightService{
		repo:      repo,
		validator: validator,
		cache:     searchCache,
		metrics:   m,
		cfg:       cfg,
	}
}

func (s *flightService) Create(ctx context.Context, p *model.Principal, f *model.Flight) error {
	if err := access.Check(p, "", model.RoleAdmin); err != nil {
		return err
	}

	f.ID = ""
	sanitize(f)
	if f.Status == "" {
		f.Status = model.FlightScheduled
	}

	if err := s.validator.Validate(f); err != nil {
		s.cfg.Log.Warn("Flight validation failed", "flight_number", f.FlightNumber, "error", err)
		return validation.ToAppError(err)
	}

	if err := s.repo.Create(ctx, f); err != nil {
		if errors.Is(err, flightserrors.ErrDuplicateFlightNumber) {
			return apperrors.Conflict("Flight " + f.FlightNumber + " already exists")
		}
		s.cfg.Log.Error("Failed to create flight", "flight_number", f.FlightNumber, "error", err)
		return apperrors.Internal("Failed to create flight", err)
	}

	s.invalidate(ctx)
	s.cfg.Log.Info("Flight created successfully",
		"id", f.ID,
		"flight_number", f.FlightNumber,
		"from", f.Departure.Airport,
		"to", f.Arrival.Airport,
	)
	return nil
}

func (s *flightService) GetByID(ctx context.Context, id string) (*model.Flight, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Flight ID cannot be empty")
	}

	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, flightserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Flight", id)
		}
		if errors.Is(err, flightserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid flight ID format")
		}
		s.cfg.Log.Error("Failed to get flight by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve flight", err)
	}
	return f, nil
}

func (s *flightService) Search(ctx context.Context, values url.Values) (*SearchResult, error) {
	f := search.ParseFlightParams(values)
	key := cache.KeyFromQuery(values)

	var cached SearchResult
	version, hit, err := s.cache.Get(ctx, CacheNamespace, key, &cached)
	if err != nil {
		s.cfg.Log.Warn("Search cache read failed", "error", err)
	}
	if hit {
		s.metrics.SearchCache.WithLabelValues("hit").Inc()
		return &cached, nil
	}
	s.metrics.SearchCache.WithLabelValues("miss").Inc()

	q := search.BuildFlightQuery(f)

	var total int64
	var found []*model.Flight
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		var err error
		if total, err = s.repo.Count(ctx, q.CountFilter); err != nil {
			s.cfg.Log.Error("Failed to count flights", "error", err)
			errCount = apperrors.Internal("Failed to count flights", err)
		}
	}()
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		var err error
		if found, err = s.repo.Search(ctx, q.Filter, q.Sort, f.Page); err != nil {
			s.cfg.Log.Error("Failed to search flights", "error", err)
			errFind = apperrors.Internal("Failed to search flights", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, errCount
	}
	if errFind != nil {
		return nil, errFind
	}

	passengers := 1
	if f.Passengers != nil {
		passengers = *f.Passengers
	}
	results := make([]FlightResult, 0, len(found))
	for _, flight := range found {
		res := FlightResult{Flight: flight, Class: f.Class}
		if fare := flight.Fares.ForClass(f.Class); fare != nil {
			res.Fare = fare
			res.TotalPrice = pricing.Round2(fare.Price * float64(passengers))
		}
		results = append(results, res)
	}

	result := &SearchResult{
		Flights:    results,
		Pagination: f.Page.Pagination(total),
		Filters:    search.NewFilters(f.Applied(), f.Ignored),
	}
	if err := s.cache.Set(ctx, CacheNamespace, version, key, result); err != nil {
		s.cfg.Log.Warn("Search cache write failed", "error", err)
	}
	return result, nil
}

func (s *flightService) UpdateStatus(ctx context.Context, p *model.Principal, id string, u *model.FlightStatusUpdate) error {
	if err := access.Check(p, "", model.RoleAdmin); err != nil {
		return err
	}

	u.Status = model.FlightStatus(strings.ToLower(strings.TrimSpace(string(u.Status))))
	if err := s.validator.ValidateStatus(u); err != nil {
		return validation.ToAppError(err)
	}

	if err := s.repo.UpdateStatus(ctx, id, u.Status); err != nil {
		if errors.Is(err, flightserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Flight", id)
		}
		if errors.Is(err, flightserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid flight ID format")
		}
		s.cfg.Log.Error("Failed to update flight status", "id", id, "error", err)
		return apperrors.Internal("Failed to update flight status", err)
	}

	s.invalidate(ctx)
	s.cfg.Log.Info("Flight status updated successfully", "id", id, "status", u.Status)
	return nil
}

func (s *flightService) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx, CacheNamespace); err != nil {
		s.cfg.Log.Warn("Failed to invalidate flight search cache", "error", err)
	}
}

func sanitize(f *model.Flight) {
	f.FlightNumber = sanitizer.NormalizeCode(f.FlightNumber)
	f.Airline = sanitizer.NormalizeName(f.Airline)
	for _, leg := range []*model.FlightLeg{&f.Departure, &f.Arrival} {
		leg.Airport = strings.ToUpper(strings.TrimSpace(leg.Airport))
		leg.City = sanitizer.NormalizeCity(leg.City)
		leg.Country = sanitizer.TrimAndNormalize(leg.Country)
		leg.Time = leg.Time.UTC()
	}
	for _, class := range []model.FareClass{model.FareEconomy, model.FareBusiness, model.FareFirst} {
		if fare := f.Fares.ForClass(class); fare != nil {
			fare.Currency = strings.ToUpper(strings.TrimSpace(fare.Currency))
		}
	}
}
