package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reviewserrors "tourism/internal/reviews/errors"
	"tourism/internal/search"
	"tourism/pkg/config"
	mongotx "tourism/pkg/db/mongo"
	"tourism/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Reviews"

type ReviewRepository interface {
	Create(ctx context.Context, r *model.Review) error
	FindByID(ctx context.Context, id string) (*model.Review, error)
	FindByProperty(ctx context.Context, propertyID string, sort bson.D, page search.Page) ([]*model.Review, error)
	CountByProperty(ctx context.Context, propertyID string) (int64, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	Update(ctx context.Context, r *model.Review) error
	Delete(ctx context.Context, id string) error
	// AddHelpfulVote reports false when userID had already voted.
	AddHelpfulVote(ctx context.Context, id, userID string) (bool, error)
	// RemoveHelpfulVote reports false when userID had not voted.
	RemoveHelpfulVote(ctx context.Context, id, userID string) (bool, error)
	SetHostResponse(ctx context.Context, id string, resp model.HostResponse) error
}

type mongoReviewRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoReviewRepository(cfg *config.Config) ReviewRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReviewRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", reviewserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoReviewRepository) Create(ctx context.Context, review *model.Review) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	review.CreatedAt = now
	review.UpdatedAt = now
	if review.HelpfulVotes == nil {
		review.HelpfulVotes = []string{}
	}

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", reviewserrors.ErrDuplicate, review.BookingID)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReviewRepository) FindByID(ctx context.Context, id string) (*model.Review, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var review model.Review
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", reviewserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return &review, nil
}

func (r *mongoReviewRepository) FindByProperty(ctx context.Context, propertyID string, sort bson.D, page search.Page) ([]*model.Review, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(sort).
		SetSkip(page.Skip).
		SetLimit(int64(page.Limit))

	cursor, err := r.collection.Find(ctx, bson.M{"property_id": propertyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []*model.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

func (r *mongoReviewRepository) CountByProperty(ctx context.Context, propertyID string) (int64, error) {
	return r.count(ctx, bson.M{"property_id": propertyID})
}

func (r *mongoReviewRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, bson.M{"user_id": userID})
}

func (r *mongoReviewRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return n, nil
}

// Update writes the author-editable fields only.
func (r *mongoReviewRepository) Update(ctx context.Context, review *model.Review) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(review.ID)
	if err != nil {
		return err
	}

	review.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"ratings":    review.Ratings,
			"rating":     review.Rating,
			"title":      review.Title,
			"comment":    review.Comment,
			"updated_at": review.UpdatedAt,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", reviewserrors.ErrNotFound, review.ID)
	}
	return nil
}

func (r *mongoReviewRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", reviewserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoReviewRepository) AddHelpfulVote(ctx context.Context, id, userID string) (bool, error) {
	filter, update, err := helpfulVote(id, userID, true)
	if err != nil {
		return false, err
	}
	return r.applyVote(ctx, filter, update)
}

func (r *mongoReviewRepository) RemoveHelpfulVote(ctx context.Context, id, userID string) (bool, error) {
	filter, update, err := helpfulVote(id, userID, false)
	if err != nil {
		return false, err
	}
	return r.applyVote(ctx, filter, update)
}

func (r *mongoReviewRepository) applyVote(ctx context.Context, filter, update bson.M) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update helpful votes: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *mongoReviewRepository) SetHostResponse(ctx context.Context, id string, resp model.HostResponse) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"host_response": resp, "updated_at": resp.RespondedAt},
	})
	if err != nil {
		return fmt.Errorf("failed to set host response: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", reviewserrors.ErrNotFound, id)
	}
	return nil
}

// helpfulVote builds a conditional update that only matches when the vote
// is in the opposite state, so the counter moves at most once per user.
func helpfulVote(id, userID string, add bool) (bson.M, bson.M, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, nil, err
	}

	if add {
		filter := bson.M{"_id": oid, "helpful_votes": bson.M{"$ne": userID}}
		update := bson.M{
			"$addToSet": bson.M{"helpful_votes": userID},
			"$inc":      bson.M{"helpful_count": 1},
		}
		return filter, update, nil
	}

	filter := bson.M{"_id": oid, "helpful_votes": userID}
	update := bson.M{
		"$pull": bson.M{"helpful_votes": userID},
		"$inc":  bson.M{"helpful_count": -1},
	}
	return filter, update, nil
}
