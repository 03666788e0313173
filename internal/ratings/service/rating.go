package service

import (
	"context"
	"errors"

	propertyservice "tourism/internal/properties/service"
	"tourism/internal/ratings"
	ratingserrors "tourism/internal/ratings/errors"
	"tourism/internal/ratings/repository"
	"tourism/pkg/cache"
	"tourism/pkg/config"
	apperrors "tourism/pkg/errors"
	"tourism/pkg/metrics"
)

const (
	SourceReview = "review"
	SourceEvent  = "event"
)

type RatingService interface {
	// Recompute rebuilds the property's rating from all of its reviews and
	// stores the unrounded averages. It returns the stats rounded for display.
	// Running it twice gives the same result.
	Recompute(ctx context.Context, propertyID, source string) (ratings.Stats, error)
	// Stats aggregates without writing and rounds for display.
	Stats(ctx context.Context, propertyID string) (ratings.Stats, error)
}

type ratingService struct {
	repo    repository.RatingRepository
	cache   cache.Cache
	metrics *metrics.Metrics
	cfg     *config.Config
}

func NewRatingService(repo repository.RatingRepository, searchCache cache.Cache, m *metrics.Metrics, cfg *config.Config) RatingService {
	if searchCache == nil {
		searchCache = cache.Noop{}
	}
	return &ratingService{
		repo:    repo,
		cache:   searchCache,
		metrics: m,
		cfg:     cfg,
	}
}

func (s *ratingService) Stats(ctx context.Context, propertyID string) (ratings.Stats, error) {
	stats, err := s.compute(ctx, propertyID)
	if err != nil {
		return ratings.Stats{}, err
	}
	return stats.Rounded(), nil
}

func (s *ratingService) compute(ctx context.Context, propertyID string) (ratings.Stats, error) {
	scores, err := s.repo.ScoresForProperty(ctx, propertyID)
	if err != nil {
		s.cfg.Log.Error("Failed to load review scores", "property_id", propertyID, "error", err)
		return ratings.Stats{}, apperrors.Internal("Failed to compute rating", err)
	}
	return ratings.Compute(scores), nil
}

func (s *ratingService) Recompute(ctx context.Context, propertyID, source string) (ratings.Stats, error) {
	stats, err := s.compute(ctx, propertyID)
	if err != nil {
		return ratings.Stats{}, err
	}

	err = s.repo.SetPropertyRating(ctx, propertyID, repository.PropertyRating{
		Rating:      stats.Average,
		ReviewCount: stats.Count,
		Breakdown:   stats.Breakdown,
	})
	if err != nil {
		switch {
		case errors.Is(err, ratingserrors.ErrPropertyNotFound):
			return ratings.Stats{}, apperrors.NotFoundWithID("Property", propertyID)
		case errors.Is(err, ratingserrors.ErrInvalidID):
			return ratings.Stats{}, apperrors.InvalidInput("Invalid property ID format")
		}
		s.cfg.Log.Error("Failed to store property rating", "property_id", propertyID, "error", err)
		return ratings.Stats{}, apperrors.Internal("Failed to store rating", err)
	}

	s.metrics.RatingRecomputes.WithLabelValues(source).Inc()
	if err := s.cache.Bump(ctx, propertyservice.CacheNamespace); err != nil {
		s.cfg.Log.Warn("Failed to invalidate property search cache", "error", err)
	}

	s.cfg.Log.Info("Property rating recomputed",
		"property_id", propertyID,
		"rating", stats.Average,
		"review_count", stats.Count,
		"source", source,
	)
	return stats.Rounded(), nil
}
