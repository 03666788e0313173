package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"tourism/internal/access"
	"tourism/internal/pricing"
	propertieserrors "tourism/internal/properties/errors"
	"tourism/internal/properties/repository"
	"tourism/internal/properties/validator"
	"tourism/internal/search"
	"tourism/pkg/cache"
	"tourism/pkg/config"
	apperrors "tourism/pkg/errors"
	httputil "tourism/pkg/http"
	"tourism/pkg/metrics"
	"tourism/pkg/model"
	"tourism/pkg/sanitizer"
	"tourism/pkg/validation"

	"github.com/google/uuid"
)

// CacheNamespace is bumped on every write that can change search results.
const CacheNamespace = "properties"

// RoomOccupancy reports, per room id, the units held by active bookings
// overlapping [from, to).
type RoomOccupancy interface {
	ReservedRooms(ctx context.Context, propertyID string, from, to time.Time) (map[string]int, error)
}

type PropertyResult struct {
	*model.Property
	Nights         int     `json:"nights,omitempty"`
	FromPrice      float64 `json:"fromPrice"`
	TotalFromPrice float64 `json:"totalFromPrice,omitempty"`
}

type SearchResult struct {
	Properties []PropertyResult    `json:"properties"`
	Pagination httputil.Pagination `json:"pagination"`
	Filters    search.Filters      `json:"filters"`
}

type RoomAvailability struct {
	RoomID        string  `json:"roomId"`
	Type          string  `json:"type"`
	Capacity      int     `json:"capacity"`
	Units         int     `json:"units"`
	Reserved      int     `json:"reserved"`
	Remaining     int     `json:"remaining"`
	Available     bool    `json:"available"`
	PricePerNight float64 `json:"pricePerNight"`
	TotalPrice    float64 `json:"totalPrice"`
	Currency      string  `json:"currency"`
}

type AvailabilityResult struct {
	PropertyID string             `json:"propertyId"`
	CheckIn    time.Time          `json:"checkIn"`
	CheckOut   time.Time          `json:"checkOut"`
	Nights     int                `json:"nights"`
	Rooms      []RoomAvailability `json:"rooms"`
}

type PropertyService interface {
	Create(ctx context.Context, p *model.Principal, prop *model.Property) error
	GetByID(ctx context.Context, id string) (*model.PropertyDetails, error)
	Search(ctx context.Context, values url.Values) (*SearchResult, error)
	Update(ctx context.Context, p *model.Principal, id string, updates *model.PropertyUpdate) (*model.Property, error)
	Deactivate(ctx context.Context, p *model.Principal, id string) error
	Availability(ctx context.Context, id, checkIn, checkOut string) (*AvailabilityResult, error)
}

type propertyService struct {
	repo      repository.PropertyRepository
	validator *validator.PropertyValidator
	occupancy RoomOccupancy
	cache     cache.Cache
	metrics   *metrics.Metrics
	cfg       *config.Config
}

func NewPropertyService(
	repo repository.PropertyRepository,
	validator *validator.PropertyValidator,
	occupancy RoomOccupancy,
	searchCache cache.Cache,
	m *metrics.Metrics,
	cfg *config.Config,
) PropertyService {
	return &propertyService{
		repo:      repo,
		validator: validator,
		occupancy: occupancy,
		cache:     searchCache,
		metrics:   m,
		cfg:       cfg,
	}
}

func (s *propertyService) Create(ctx context.Context, p *model.Principal, prop *model.Property) error {
	if err := access.Check(p, "", model.RoleHost); err != nil {
		s.cfg.Log.Warn("Property creation rejected", "user_id", principalID(p), "error", err)
		return err
	}

	if !p.IsAdmin() || prop.OwnerID == "" {
		prop.OwnerID = p.UserID
	}
	if !p.IsAdmin() {
		prop.IsFeatured = false
	}
	prop.ID = ""
	prop.IsActive = true
	prop.Rating = 0
	prop.ReviewCount = 0
	prop.RatingBreakdown = model.RatingBreakdown{}
	s.sanitize(prop)

	if err := s.validator.Validate(prop); err != nil {
		s.cfg.Log.Warn("Property validation failed",
			"name", prop.Name,
			"owner_id", prop.OwnerID,
			"error", err,
		)
		return validation.ToAppError(err)
	}

	if err := s.repo.Create(ctx, prop); err != nil {
		s.cfg.Log.Error("Failed to create property",
			"name", prop.Name,
			"owner_id", prop.OwnerID,
			"error", err,
		)
		return apperrors.Internal("Failed to create property", err)
	}

	s.invalidate(ctx)
	s.cfg.Log.Info("Property created successfully",
		"id", prop.ID,
		"name", prop.Name,
		"owner_id", prop.OwnerID,
		"rooms", len(prop.Rooms),
	)
	return nil
}

func (s *propertyService) GetByID(ctx context.Context, id string) (*model.PropertyDetails, error) {
	prop, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !prop.IsActive {
		return nil, apperrors.NotFoundWithID("Property", id)
	}

	details := &model.PropertyDetails{Property: prop.ForDisplay()}
	owner, err := s.repo.FindOwnerSummary(ctx, prop.OwnerID)
	if err != nil {
		s.cfg.Log.Warn("Failed to load property owner",
			"id", id,
			"owner_id", prop.OwnerID,
			"error", err,
		)
	} else {
		details.Owner = owner
	}
	return details, nil
}

func (s *propertyService) Search(ctx context.Context, values url.Values) (*SearchResult, error) {
	f := search.ParsePropertyParams(values)
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

	q := search.BuildPropertyQuery(f)

	var total int64
	var found []*model.Property
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		var err error
		total, err = s.repo.Count(ctx, q.CountFilter)
		if err != nil {
			s.cfg.Log.Error("Failed to count properties", "error", err)
			errCount = apperrors.Internal("Failed to count properties", err)
		}
	}()
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		var err error
		found, err = s.repo.Search(ctx, q.Filter, q.Sort, f.Page)
		if err != nil {
			s.cfg.Log.Error("Failed to search properties",
				"page", f.Page.Page,
				"limit", f.Page.Limit,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to search properties", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, errCount
	}
	if errFind != nil {
		return nil, errFind
	}

	result := &SearchResult{
		Properties: enrich(found, f),
		Pagination: f.Page.Pagination(total),
		Filters:    search.NewFilters(f.Applied(), f.Ignored),
	}

	if err := s.cache.Set(ctx, CacheNamespace, version, key, result); err != nil {
		s.cfg.Log.Warn("Search cache write failed", "error", err)
	}

	s.cfg.Log.Debug("Property search completed",
		"total", total,
		"returned", len(result.Properties),
		"ignored", f.Ignored,
	)
	return result, nil
}

// enrich adds the cheapest bookable room price and, for dated searches, the
// stay total at that price.
func enrich(found []*model.Property, f search.PropertyFilter) []PropertyResult {
	nights := f.Nights()
	results := make([]PropertyResult, 0, len(found))
	for _, prop := range found {
		from := 0.0
		for _, room := range prop.Rooms {
			if !room.Available || room.Units <= 0 {
				continue
			}
			if f.Guests != nil && room.Capacity < *f.Guests {
				continue
			}
			if from == 0 || room.PricePerNight < from {
				from = room.PricePerNight
			}
		}

		res := PropertyResult{Property: prop.ForDisplay(), FromPrice: from}
		if nights > 0 {
			res.Nights = nights
			res.TotalFromPrice = pricing.Round2(from * float64(nights))
		}
		results = append(results, res)
	}
	return results
}

func (s *propertyService) Update(ctx context.Context, p *model.Principal, id string, updates *model.PropertyUpdate) (*model.Property, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Owner(p, existing.OwnerID); err != nil {
		s.cfg.Log.Warn("Property update rejected", "id", id, "user_id", principalID(p), "error", err)
		return nil, err
	}
	if updates.IsFeatured != nil && !p.IsAdmin() {
		return nil, apperrors.Forbidden("Only an administrator may feature a property")
	}

	merged := mergeUpdates(existing, updates)
	s.sanitize(merged)

	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Property validation failed", "id", id, "error", err)
		return nil, validation.ToAppError(err)
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		s.cfg.Log.Error("Failed to update property", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update property", err)
	}

	s.invalidate(ctx)
	s.cfg.Log.Info("Property updated successfully", "id", id, "name", merged.Name)
	return merged.ForDisplay(), nil
}

func (s *propertyService) Deactivate(ctx context.Context, p *model.Principal, id string) error {
	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Owner(p, existing.OwnerID); err != nil {
		s.cfg.Log.Warn("Property deactivation rejected", "id", id, "user_id", principalID(p), "error", err)
		return err
	}

	if err := s.repo.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Property", id)
		}
		s.cfg.Log.Error("Failed to deactivate property", "id", id, "error", err)
		return apperrors.Internal("Failed to deactivate property", err)
	}

	s.invalidate(ctx)
	s.cfg.Log.Info("Property deactivated successfully", "id", id, "by", p.UserID)
	return nil
}

func (s *propertyService) Availability(ctx context.Context, id, checkIn, checkOut string) (*AvailabilityResult, error) {
	from, err := parseDate("checkIn", checkIn)
	if err != nil {
		return nil, err
	}
	to, err := parseDate("checkOut", checkOut)
	if err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, apperrors.Validation("Check-out must be after check-in", map[string]any{
			"checkIn":  checkIn,
			"checkOut": checkOut,
		})
	}

	prop, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !prop.IsActive {
		return nil, apperrors.NotFoundWithID("Property", id)
	}

	reserved, err := s.occupancy.ReservedRooms(ctx, id, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to load room occupancy", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	nights := pricing.Nights(from, to)
	result := &AvailabilityResult{
		PropertyID: id,
		CheckIn:    from,
		CheckOut:   to,
		Nights:     nights,
		Rooms:      make([]RoomAvailability, 0, len(prop.Rooms)),
	}
	for _, room := range prop.Rooms {
		held := reserved[room.ID]
		remaining := max(room.Units-held, 0)
		result.Rooms = append(result.Rooms, RoomAvailability{
			RoomID:        room.ID,
			Type:          room.Type,
			Capacity:      room.Capacity,
			Units:         room.Units,
			Reserved:      held,
			Remaining:     remaining,
			Available:     room.Available && remaining > 0,
			PricePerNight: room.PricePerNight,
			TotalPrice:    pricing.Round2(room.PricePerNight * float64(nights)),
			Currency:      room.Currency,
		})
	}
	return result, nil
}

func (s *propertyService) find(ctx context.Context, id string) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	prop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		if errors.Is(err, propertieserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid property ID format")
		}
		s.cfg.Log.Error("Failed to get property by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve property", err)
	}
	return prop, nil
}

func (s *propertyService) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx, CacheNamespace); err != nil {
		s.cfg.Log.Warn("Failed to invalidate property search cache", "error", err)
	}
}

func (s *propertyService) sanitize(prop *model.Property) {
	prop.Name = sanitizer.NormalizeName(prop.Name)
	prop.Description = strings.TrimSpace(prop.Description)
	prop.Address.City = sanitizer.NormalizeCity(prop.Address.City)
	prop.Address.State = sanitizer.TrimAndNormalize(prop.Address.State)
	prop.Address.Country = sanitizer.TrimAndNormalize(prop.Address.Country)
	if loc := prop.Address.Location; loc != nil && loc.Type == "" && len(loc.Coordinates) == 2 {
		prop.Address.Location = model.NewGeoPoint(loc.Coordinates[0], loc.Coordinates[1])
	}
	prop.Amenities = sanitizer.NormalizeAmenities(prop.Amenities)
	prop.Images = sanitizer.NormalizeURLs(prop.Images)

	for i := range prop.Rooms {
		room := &prop.Rooms[i]
		if strings.TrimSpace(room.ID) == "" {
			room.ID = uuid.NewString()
		}
		room.Type = sanitizer.NormalizeTag(room.Type)
		room.Currency = strings.ToUpper(strings.TrimSpace(room.Currency))
		room.Amenities = sanitizer.NormalizeAmenities(room.Amenities)
	}
}

func mergeUpdates(existing *model.Property, u *model.PropertyUpdate) *model.Property {
	merged := *existing
	if u.Name != nil {
		merged.Name = *u.Name
	}
	if u.Description != nil {
		merged.Description = *u.Description
	}
	if u.PropertyType != nil {
		merged.PropertyType = *u.PropertyType
	}
	if u.Address != nil {
		merged.Address = *u.Address
	}
	if u.Rooms != nil {
		merged.Rooms = u.Rooms
	}
	if u.Amenities != nil {
		merged.Amenities = u.Amenities
	}
	if u.MealPlans != nil {
		merged.MealPlans = u.MealPlans
	}
	if u.Features != nil {
		merged.Features = *u.Features
	}
	if u.Images != nil {
		merged.Images = u.Images
	}
	if u.CancellationPolicy != nil {
		merged.CancellationPolicy = *u.CancellationPolicy
	}
	if u.IsFeatured != nil {
		merged.IsFeatured = *u.IsFeatured
	}
	return &merged
}

func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperrors.InvalidInput(field + " is required")
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperrors.InvalidInput("invalid " + field + " date: " + raw)
}

func principalID(p *model.Principal) string {
	if p == nil {
		return ""
	}
	return p.UserID
}
