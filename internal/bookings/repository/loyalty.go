package repository

import (
	"context"
	"errors"
	"fmt"

	"tourism/pkg/config"
	mongotx "tourism/pkg/db/mongo"
	"tourism/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LoyaltyRepository interface {
	// AwardStay adds points and one completed stay, then stores the tier the
	// new balance reaches.
	AwardStay(ctx context.Context, userID string, points int) (*model.Loyalty, error)
}

type mongoLoyaltyRepository struct {
	cfg   *config.Config
	users *mongo.Collection
}

func NewMongoLoyaltyRepository(cfg *config.Config) LoyaltyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLoyaltyRepository{
		cfg:   cfg,
		users: db.Collection("Users"),
	}
}

func (r *mongoLoyaltyRepository) AwardStay(ctx context.Context, userID string, points int) (*model.Loyalty, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %s", userID)
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"loyalty": 1})

	var user struct {
		Loyalty model.Loyalty `bson:"loyalty"`
	}
	err = r.users.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"loyalty.points": points, "loyalty.completed_stays": 1}},
		opts,
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user not found: %s", userID)
		}
		return nil, fmt.Errorf("failed to award loyalty points: %w", err)
	}

	tier := model.TierFor(user.Loyalty.Points)
	if tier != user.Loyalty.Tier {
		if _, err := r.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"loyalty.tier": tier}}); err != nil {
			return nil, fmt.Errorf("failed to update loyalty tier: %w", err)
		}
		user.Loyalty.Tier = tier
	}
	return &user.Loyalty, nil
}
