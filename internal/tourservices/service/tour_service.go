package service

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"
	"sync"

	"tourism/internal/access"
	"tourism/internal/search"
	tourserviceserrors "tourism/internal/tourservices/errors"
	"tourism/internal/tourservices/repository"
	"tourism/pkg/cache"
	"tourism/pkg/config"
	apperrors "tourism/pkg/errors"
	httputil "tourism/pkg/http"
	"tourism/pkg/metrics"
	"tourism/pkg/model"
	"tourism/pkg/sanitizer"
	"tourism/pkg/validation"
)

const CacheNamespace = "services"

type SearchResult struct {
	Services   []*model.Service    `json:"services"`
	Pagination httputil.Pagination `json:"pagination"`
	Filters    search.Filters      `json:"filters"`
}

type TourService interface {
	Create(ctx context.Context, p *model.Principal, svc *model.Service) error
	GetByID(ctx context.Context, id string) (*model.Service, error)
	Search(ctx context.Context, values url.Values) (*SearchResult, error)
	Update(ctx context.Context, p *model.Principal, id string, updates *model.ServiceUpdate) (*model.Service, error)
}

type tourService struct {
	repo      repository.TourServiceRepository
	validator *validation.Validator
	cache     cache.Cache
	metrics   *metrics.Metrics
	cfg       *config.Config
}

func NewTourService(
	repo repository.TourServiceRepository,
	validator *validation.Validator,
	searchCache cache.Cache,
	m *metrics.Metrics,
	cfg *config.Config,
) TourService {
	return &tourService{
		repo:      repo,
		validator: validator,
		cache:     searchCache,
		metrics:   m,
		cfg:       cfg,
	}
}

func (s *tourService) Create(ctx context.Context, p *model.Principal, svc *model.Service) error {
	if err := access.Check(p, "", model.RoleHost); err != nil {
		return err
	}

	if !p.IsAdmin() || svc.OwnerID == "" {
		svc.OwnerID = p.UserID
	}
	svc.ID = ""
	svc.IsActive = true
	sanitize(svc)

	if err := s.validator.Struct(svc); err != nil {
		s.cfg.Log.Warn("Service validation failed", "name", svc.Name, "owner_id", svc.OwnerID, "error", err)
		return validation.ToAppError(err)
	}

	if err := s.repo.Create(ctx, svc); err != nil {
		s.cfg.Log.Error("Failed to create service", "name", svc.Name, "error", err)
		return apperrors.Internal("Failed to create service", err)
	}

	s.invalidate(ctx)
	s.cfg.Log.Info("Service created successfully",
		"id", svc.ID,
		"name", svc.Name,
		"owner_id", svc.OwnerID,
		"city", svc.City,
	)
	return nil
}

func (s *tourService) GetByID(ctx context.Context, id string) (*model.Service, error) {
	svc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, apperrors.NotFoundWithID("Service", id)
	}
	return svc, nil
}

func (s *tourService) Search(ctx context.Context, values url.Values) (*SearchResult, error) {
	f := search.ParseServiceParams(values)
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

	q := search.BuildServiceQuery(f)

	var total int64
	var found []*model.Service
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		var err error
		if total, err = s.repo.Count(ctx, q.CountFilter); err != nil {
			s.cfg.Log.Error("Failed to count services", "error", err)
			errCount = apperrors.Internal("Failed to count services", err)
		}
	}()
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		var err error
		if found, err = s.repo.Search(ctx, q.Filter, q.Sort, f.Page); err != nil {
			s.cfg.Log.Error("Failed to search services", "error", err)
			errFind = apperrors.Internal("Failed to search services", err)
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
		Services:   found,
		Pagination: f.Page.Pagination(total),
		Filters:    search.NewFilters(f.Applied(), f.Ignored),
	}
	if err := s.cache.Set(ctx, CacheNamespace, version, key, result); err != nil {
		s.cfg.Log.Warn("Search cache write failed", "error", err)
	}
	return result, nil
}

func (s *tourService) Update(ctx context.Context, p *model.Principal, id string, updates *model.ServiceUpdate) (*model.Service, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Owner(p, existing.OwnerID); err != nil {
		s.cfg.Log.Warn("Service update rejected", "id", id, "error", err)
		return nil, err
	}

	merged := mergeUpdates(existing, updates)
	sanitize(merged)

	if err := s.validator.Struct(merged); err != nil {
		s.cfg.Log.Warn("Service validation failed", "id", id, "error", err)
		return nil, validation.ToAppError(err)
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, tourserviceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		s.cfg.Log.Error("Failed to update service", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update service", err)
	}

	s.invalidate(ctx)
	s.cfg.Log.Info("Service updated successfully", "id", id)
	return merged, nil
}

func (s *tourService) find(ctx context.Context, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, tourserviceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		if errors.Is(err, tourserviceserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service ID format")
		}
		s.cfg.Log.Error("Failed to get service by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve service", err)
	}
	return svc, nil
}

func (s *tourService) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx, CacheNamespace); err != nil {
		s.cfg.Log.Warn("Failed to invalidate service search cache", "error", err)
	}
}

func sanitize(svc *model.Service) {
	svc.Name = sanitizer.NormalizeName(svc.Name)
	svc.Description = strings.TrimSpace(svc.Description)
	svc.Category = sanitizer.NormalizeTag(svc.Category)
	svc.City = sanitizer.NormalizeCity(svc.City)
	svc.Country = sanitizer.TrimAndNormalize(svc.Country)
	svc.Currency = strings.ToUpper(strings.TrimSpace(svc.Currency))
	svc.Images = sanitizer.NormalizeURLs(svc.Images)
	slices.Sort(svc.AvailableDays)
}

func mergeUpdates(existing *model.Service, u *model.ServiceUpdate) *model.Service {
	merged := *existing
	if u.Name != nil {
		merged.Name = *u.Name
	}
	if u.Description != nil {
		merged.Description = *u.Description
	}
	if u.Category != nil {
		merged.Category = *u.Category
	}
	if u.Price != nil {
		merged.Price = *u.Price
	}
	if u.DurationMinutes != nil {
		merged.DurationMinutes = *u.DurationMinutes
	}
	if u.Capacity != nil {
		merged.Capacity = *u.Capacity
	}
	if u.AvailableDays != nil {
		merged.AvailableDays = slices.Clone(u.AvailableDays)
	}
	if u.StartHour != nil {
		merged.StartHour = *u.StartHour
	}
	if u.EndHour != nil {
		merged.EndHour = *u.EndHour
	}
	if u.Images != nil {
		merged.Images = u.Images
	}
	if u.IsActive != nil {
		merged.IsActive = *u.IsActive
	}
	return &merged
}
