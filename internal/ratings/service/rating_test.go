package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	ratingserrors "tourism/internal/ratings/errors"
	"tourism/internal/ratings/repository"
	"tourism/pkg/config"
	apperrors "tourism/pkg/errors"
	"tourism/pkg/logger"
	"tourism/pkg/metrics"
	"tourism/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRatingRepo struct {
	scoresFunc    func(ctx context.Context, propertyID string) ([]model.Review, error)
	setRatingFunc func(ctx context.Context, propertyID string, r repository.PropertyRating) error
}

func (m *mockRatingRepo) ScoresForProperty(ctx context.Context, propertyID string) ([]model.Review, error) {
	return m.scoresFunc(ctx, propertyID)
}

func (m *mockRatingRepo) SetPropertyRating(ctx context.Context, propertyID string, r repository.PropertyRating) error {
	return m.setRatingFunc(ctx, propertyID, r)
}

type countingCache struct {
	bumps []string
}

func (c *countingCache) Get(context.Context, string, string, any) (int64, bool, error) {
	return 0, false, nil
}
func (c *countingCache) Set(context.Context, string, int64, string, any) error { return nil }
func (c *countingCache) Bump(_ context.Context, ns string) error {
	c.bumps = append(c.bumps, ns)
	return nil
}

func newTestConfig() *config.Config {
	return &config.Config{Log: logger.Discard(), ReadTimeout: time.Second, WriteTimeout: time.Second}
}

func scored(overall, dim int) model.Review {
	return model.Review{
		Rating: overall,
		Ratings: model.ReviewRatings{
			Cleanliness: dim, Accuracy: dim, CheckIn: dim,
			Communication: dim, Location: dim, Value: dim,
		},
	}
}

func TestRecompute_StoresExactAggregate(t *testing.T) {
	var stored repository.PropertyRating
	repo := &mockRatingRepo{
		scoresFunc: func(_ context.Context, id string) ([]model.Review, error) {
			assert.Equal(t, "p1", id)
			return []model.Review{scored(5, 5), scored(4, 4), scored(4, 3)}, nil
		},
		setRatingFunc: func(_ context.Context, _ string, r repository.PropertyRating) error {
			stored = r
			return nil
		},
	}
	c := &countingCache{}
	svc := NewRatingService(repo, c, metrics.NewMetrics("test"), newTestConfig())

	stats, err := svc.Recompute(context.Background(), "p1", SourceReview)
	require.NoError(t, err)

	assert.Equal(t, 4.3, stats.Average)
	assert.Equal(t, 3, stats.Count)
	assert.InDelta(t, 13.0/3, stored.Rating, 1e-9)
	assert.Equal(t, 3, stored.ReviewCount)
	assert.Equal(t, 4.0, stored.Breakdown.Value)
	assert.Equal(t, []string{"properties"}, c.bumps)
}

func TestRecompute_IsIdempotent(t *testing.T) {
	var writes []repository.PropertyRating
	repo := &mockRatingRepo{
		scoresFunc: func(context.Context, string) ([]model.Review, error) {
			return []model.Review{scored(5, 5), scored(2, 3)}, nil
		},
		setRatingFunc: func(_ context.Context, _ string, r repository.PropertyRating) error {
			writes = append(writes, r)
			return nil
		},
	}
	svc := NewRatingService(repo, nil, metrics.NewMetrics("test"), newTestConfig())

	_, err := svc.Recompute(context.Background(), "p1", SourceReview)
	require.NoError(t, err)
	_, err = svc.Recompute(context.Background(), "p1", SourceEvent)
	require.NoError(t, err)

	require.Len(t, writes, 2)
	assert.Equal(t, writes[0], writes[1])
}

func TestRecompute_NoReviewsResetsRating(t *testing.T) {
	var stored repository.PropertyRating
	repo := &mockRatingRepo{
		scoresFunc: func(context.Context, string) ([]model.Review, error) { return []model.Review{}, nil },
		setRatingFunc: func(_ context.Context, _ string, r repository.PropertyRating) error {
			stored = r
			return nil
		},
	}
	stored.Rating = 4.8
	svc := NewRatingService(repo, nil, metrics.NewMetrics("test"), newTestConfig())

	_, err := svc.Recompute(context.Background(), "p1", SourceReview)
	require.NoError(t, err)
	assert.Equal(t, repository.PropertyRating{}, stored)
}

func TestRecompute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		scoresErr error
		setErr    error
		code      string
	}{
		{"scores unavailable", errors.New("server selection error"), nil, apperrors.CodeInternal},
		{"property missing", nil, fmt.Errorf("%w: p1", ratingserrors.ErrPropertyNotFound), apperrors.CodeNotFound},
		{"bad id", nil, fmt.Errorf("%w: p1", ratingserrors.ErrInvalidID), apperrors.CodeInvalidInput},
		{"write failure", nil, errors.New("write conflict"), apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRatingRepo{
				scoresFunc: func(context.Context, string) ([]model.Review, error) {
					return []model.Review{scored(4, 4)}, tt.scoresErr
				},
				setRatingFunc: func(context.Context, string, repository.PropertyRating) error { return tt.setErr },
			}
			c := &countingCache{}
			svc := NewRatingService(repo, c, metrics.NewMetrics("test"), newTestConfig())

			_, err := svc.Recompute(context.Background(), "p1", SourceReview)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
			assert.Empty(t, c.bumps)
		})
	}
}
