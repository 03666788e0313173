package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourism/internal/search"
	propertieserrors "tourism/internal/properties/errors"
	"tourism/pkg/config"
	mongotx "tourism/pkg/db/mongo"
	"tourism/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName      = "Properties"
	UsersCollectionName = "Users"
)

type PropertyRepository interface {
	Create(ctx context.Context, p *model.Property) error
	FindByID(ctx context.Context, id string) (*model.Property, error)
	Search(ctx context.Context, filter bson.M, sort bson.D, page search.Page) ([]*model.Property, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Update(ctx context.Context, id string, p *model.Property) error
	SetActive(ctx context.Context, id string, active bool) error
	FindOwnerSummary(ctx context.Context, ownerID string) (*model.OwnerSummary, error)
}

type mongoPropertyRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	users      *mongo.Collection
}

func NewMongoPropertyRepository(cfg *config.Config) PropertyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPropertyRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		users:      db.Collection(UsersCollectionName),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoPropertyRepository) Create(ctx context.Context, p *model.Property) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	p.CreatedAt = now
	p.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var p model.Property
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", propertieserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}
	return &p, nil
}

// Search runs filter with the given order. A nil sort leaves ordering to the
// query itself, which $nearSphere requires.
func (r *mongoPropertyRepository) Search(ctx context.Context, filter bson.M, sort bson.D, page search.Page) ([]*model.Property, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSkip(page.Skip).
		SetLimit(int64(page.Limit))
	if sort != nil {
		opts.SetSort(sort)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}
	defer cursor.Close(ctx)

	properties := []*model.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return properties, nil
}

func (r *mongoPropertyRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

// Update replaces the host-editable fields. Rating fields belong to the
// ratings recompute and are never written here.
func (r *mongoPropertyRepository) Update(ctx context.Context, id string, p *model.Property) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"name":                p.Name,
			"description":         p.Description,
			"property_type":       p.PropertyType,
			"address":             p.Address,
			"rooms":               p.Rooms,
			"amenities":           p.Amenities,
			"meal_plans":          p.MealPlans,
			"features":            p.Features,
			"images":              p.Images,
			"cancellation_policy": p.CancellationPolicy,
			"is_featured":         p.IsFeatured,
			"updated_at":          p.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", propertieserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoPropertyRepository) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"is_active":  active,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update property status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", propertieserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoPropertyRepository) FindOwnerSummary(ctx context.Context, ownerID string) (*model.OwnerSummary, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", propertieserrors.ErrOwnerNotFound, ownerID)
	}

	var owner struct {
		Profile model.Profile `bson:"profile"`
	}
	opts := options.FindOne().SetProjection(bson.M{"profile.first_name": 1, "profile.last_name": 1, "profile.avatar": 1})
	if err := r.users.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&owner); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", propertieserrors.ErrOwnerNotFound, ownerID)
		}
		return nil, fmt.Errorf("failed to find property owner: %w", err)
	}

	return &model.OwnerSummary{
		ID:        ownerID,
		FirstName: owner.Profile.FirstName,
		LastName:  owner.Profile.LastName,
		Avatar:    owner.Profile.Avatar,
	}, nil
}
