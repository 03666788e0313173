package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	flightserrors "tourism/internal/flights/errors"
	"tourism/internal/search"
	"tourism/pkg/config"
	mongotx "tourism/pkg/db/mongo"
	"tourism/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Flights"
)

type FlightRepository interface {
	Create(ctx context.Context, f *model.Flight) error
	FindByID(ctx context.Context, id string) (*model.Flight, error)
	Search(ctx context.Context, filter bson.M, sort bson.D, page search.Page) ([]*model.Flight, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	UpdateStatus(ctx context.Context, id string, status model.FlightStatus) error
}

type mongoFlightRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoFlightRepository(cfg *config.Config) FlightRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoFlightRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoFlightRepository) Create(ctx context.Context, f *model.Flight) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	f.CreatedAt = now
	f.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, f)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", flightserrors.ErrDuplicateFlightNumber, f.FlightNumber)
		}
		return fmt.Errorf("failed to create flight: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		f.ID = oid.Hex()
	}
	return nil
}

func (r *mongoFlightRepository) FindByID(ctx context.Context, id string) (*model.Flight, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", flightserrors.ErrInvalidID, id)
	}

	var f model.Flight
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", flightserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find flight: %w", err)
	}
	return &f, nil
}

func (r *mongoFlightRepository) Search(ctx context.Context, filter bson.M, sort bson.D, page search.Page) ([]*model.Flight, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSkip(page.Skip).
		SetLimit(int64(page.Limit)).
		SetSort(sort)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search flights: %w", err)
	}
	defer cursor.Close(ctx)

	flights := []*model.Flight{}
	if err := cursor.All(ctx, &flights); err != nil {
		return nil, fmt.Errorf("failed to decode flights: %w", err)
	}
	return flights, nil
}

func (r *mongoFlightRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count flights: %w", err)
	}
	return count, nil
}

func (r *mongoFlightRepository) UpdateStatus(ctx context.Context, id string, status model.FlightStatus) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", flightserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update flight status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", flightserrors.ErrNotFound, id)
	}
	return nil
}
