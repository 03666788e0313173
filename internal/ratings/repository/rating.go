package repository

import (
	"context"
	"fmt"
	"time"

	ratingserrors "tourism/internal/ratings/errors"
	"tourism/pkg/config"
	mongotx "tourism/pkg/db/mongo"
	"tourism/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	ReviewsCollectionName    = "Reviews"
	PropertiesCollectionName = "Properties"
)

// RatingRepository reads the score fields of a property's reviews and
// writes the aggregate back onto the property.
type RatingRepository interface {
	ScoresForProperty(ctx context.Context, propertyID string) ([]model.Review, error)
	SetPropertyRating(ctx context.Context, propertyID string, r PropertyRating) error
}

type PropertyRating struct {
	Rating      float64               `bson:"rating"`
	ReviewCount int                   `bson:"review_count"`
	Breakdown   model.RatingBreakdown `bson:"rating_breakdown"`
}

type mongoRatingRepository struct {
	cfg        *config.Config
	reviews    *mongo.Collection
	properties *mongo.Collection
}

func NewMongoRatingRepository(cfg *config.Config) RatingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRatingRepository{
		cfg:        cfg,
		reviews:    db.Collection(ReviewsCollectionName),
		properties: db.Collection(PropertiesCollectionName),
	}
}

func (r *mongoRatingRepository) ScoresForProperty(ctx context.Context, propertyID string) ([]model.Review, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.reviews.Aggregate(ctx, scoresPipeline(propertyID))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate review scores: %w", err)
	}
	defer cursor.Close(ctx)

	scores := []model.Review{}
	if err := cursor.All(ctx, &scores); err != nil {
		return nil, fmt.Errorf("failed to decode review scores: %w", err)
	}
	return scores, nil
}

func (r *mongoRatingRepository) SetPropertyRating(ctx context.Context, propertyID string, rating PropertyRating) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(propertyID)
	if err != nil {
		return fmt.Errorf("%w: %s", ratingserrors.ErrInvalidID, propertyID)
	}

	result, err := r.properties.UpdateOne(ctx, bson.M{"_id": oid}, ratingUpdate(rating, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to update property rating: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ratingserrors.ErrPropertyNotFound, propertyID)
	}
	return nil
}

func scoresPipeline(propertyID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"property_id": propertyID}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "rating": 1, "ratings": 1}}},
	}
}

func ratingUpdate(rating PropertyRating, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"rating":           rating.Rating,
			"review_count":     rating.ReviewCount,
			"rating_breakdown": rating.Breakdown,
			"updated_at":       now.UTC().Truncate(time.Millisecond),
		},
	}
}
