package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourism/internal/search"
	tourserviceserrors "tourism/internal/tourservices/errors"
	"tourism/pkg/config"
	mongotx "tourism/pkg/db/mongo"
	"tourism/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Services"
)

type TourServiceRepository interface {
	Create(ctx context.Context, s *model.Service) error
	FindByID(ctx context.Context, id string) (*model.Service, error)
	Search(ctx context.Context, filter bson.M, sort bson.D, page search.Page) ([]*model.Service, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Update(ctx context.Context, id string, s *model.Service) error
}

type mongoTourServiceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTourServiceRepository(cfg *config.Config) TourServiceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTourServiceRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoTourServiceRepository) Create(ctx context.Context, s *model.Service) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	s.CreatedAt = now
	s.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		s.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTourServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tourserviceserrors.ErrInvalidID, id)
	}

	var s model.Service
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", tourserviceserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}
	return &s, nil
}

func (r *mongoTourServiceRepository) Search(ctx context.Context, filter bson.M, sort bson.D, page search.Page) ([]*model.Service, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSkip(page.Skip).
		SetLimit(int64(page.Limit)).
		SetSort(sort)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search services: %w", err)
	}
	defer cursor.Close(ctx)

	services := []*model.Service{}
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

func (r *mongoTourServiceRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count services: %w", err)
	}
	return count, nil
}

func (r *mongoTourServiceRepository) Update(ctx context.Context, id string, s *model.Service) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", tourserviceserrors.ErrInvalidID, id)
	}

	s.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"name":             s.Name,
			"description":      s.Description,
			"category":         s.Category,
			"price":            s.Price,
			"duration_minutes": s.DurationMinutes,
			"capacity":         s.Capacity,
			"available_days":   s.AvailableDays,
			"start_hour":       s.StartHour,
			"end_hour":         s.EndHour,
			"images":           s.Images,
			"is_active":        s.IsActive,
			"updated_at":       s.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", tourserviceserrors.ErrNotFound, id)
	}
	return nil
}
