package repository

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "tourism/internal/bookings/errors"
	"tourism/pkg/config"
	mongotx "tourism/pkg/db/mongo"
	"tourism/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CatalogRepository loads the bookable resources a request refers to.
// Inactive properties and services are reported as not found.
type CatalogRepository interface {
	Property(ctx context.Context, id string) (*model.Property, error)
	Flight(ctx context.Context, id string) (*model.Flight, error)
	Service(ctx context.Context, id string) (*model.Service, error)
}

type mongoCatalogRepository struct {
	cfg        *config.Config
	properties *mongo.Collection
	flights    *mongo.Collection
	services   *mongo.Collection
}

func NewMongoCatalogRepository(cfg *config.Config) CatalogRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCatalogRepository{
		cfg:        cfg,
		properties: db.Collection("Properties"),
		flights:    db.Collection(FlightsCollectionName),
		services:   db.Collection("Services"),
	}
}

func (r *mongoCatalogRepository) Property(ctx context.Context, id string) (*model.Property, error) {
	var p model.Property
	if err := r.findActive(ctx, r.properties, id, true, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mongoCatalogRepository) Flight(ctx context.Context, id string) (*model.Flight, error) {
	var f model.Flight
	if err := r.findActive(ctx, r.flights, id, false, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *mongoCatalogRepository) Service(ctx context.Context, id string) (*model.Service, error) {
	var s model.Service
	if err := r.findActive(ctx, r.services, id, true, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mongoCatalogRepository) findActive(ctx context.Context, coll *mongo.Collection, id string, activeOnly bool, dst any) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrResourceNotFound, id)
	}

	filter := bson.M{"_id": oid}
	if activeOnly {
		filter["is_active"] = true
	}

	if err := coll.FindOne(ctx, filter).Decode(dst); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: %s", bookingserrors.ErrResourceNotFound, id)
		}
		return fmt.Errorf("failed to load %s: %w", coll.Name(), err)
	}
	return nil
}
