package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	discountserrors "tourism/internal/discounts/errors"
	"tourism/pkg/config"
	mongotx "tourism/pkg/db/mongo"
	"tourism/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Discount_codes"
)

type DiscountRepository interface {
	Create(ctx context.Context, d *model.DiscountCode) error
	FindByCode(ctx context.Context, code string) (*model.DiscountCode, error)
}

type mongoDiscountRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoDiscountRepository(cfg *config.Config) DiscountRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDiscountRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoDiscountRepository) Create(ctx context.Context, d *model.DiscountCode) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	d.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, d)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", discountserrors.ErrDuplicateCode, d.Code)
		}
		return fmt.Errorf("failed to create discount code: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		d.ID = oid.Hex()
	}
	return nil
}

func (r *mongoDiscountRepository) FindByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var d model.DiscountCode
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", discountserrors.ErrNotFound, code)
		}
		return nil, fmt.Errorf("failed to find discount code: %w", err)
	}
	return &d, nil
}
