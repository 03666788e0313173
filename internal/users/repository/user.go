package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourism/internal/search"
	userserrors "tourism/internal/users/errors"
	"tourism/pkg/config"
	mongotx "tourism/pkg/db/mongo"
	"tourism/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Users"

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, filter bson.M, page search.Page) ([]*model.User, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	UpdateProfile(ctx context.Context, id string, profile model.Profile) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdatePreferences(ctx context.Context, id string, prefs model.Preferences) error
	SetPaymentMethods(ctx context.Context, id string, methods []model.PaymentMethod) error
	SetRole(ctx context.Context, id string, role model.Role) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
	// SoftDelete deactivates an active account; a second call reports ErrNotFound.
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

type mongoUserRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoUserRepository(cfg *config.Config) UserRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUserRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", userserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoUserRepository) Create(ctx context.Context, u *model.User) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.PaymentMethods == nil {
		u.PaymentMethods = []model.PaymentMethod{}
	}

	result, err := r.collection.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", userserrors.ErrDuplicateEmail, u.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid.Hex()
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, id)
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, email)
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M, key string) (*model.User, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var u model.User
	if err := r.collection.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", userserrors.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

func (r *mongoUserRepository) List(ctx context.Context, filter bson.M, page search.Page) ([]*model.User, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(page.Skip).
		SetLimit(int64(page.Limit)).
		SetProjection(bson.M{"password_hash": 0, "payment_methods.token": 0})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *mongoUserRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *mongoUserRepository) UpdateProfile(ctx context.Context, id string, profile model.Profile) error {
	return r.set(ctx, id, bson.M{"profile": profile}, "profile")
}

func (r *mongoUserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.set(ctx, id, bson.M{"password_hash": hash}, "password")
}

func (r *mongoUserRepository) UpdatePreferences(ctx context.Context, id string, prefs model.Preferences) error {
	return r.set(ctx, id, bson.M{"preferences": prefs}, "preferences")
}

func (r *mongoUserRepository) SetPaymentMethods(ctx context.Context, id string, methods []model.PaymentMethod) error {
	return r.set(ctx, id, bson.M{"payment_methods": methods}, "payment methods")
}

func (r *mongoUserRepository) SetRole(ctx context.Context, id string, role model.Role) error {
	return r.set(ctx, id, bson.M{"role": role}, "role")
}

func (r *mongoUserRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.set(ctx, id, bson.M{"last_login_at": at}, "last login")
}

func (r *mongoUserRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	filter, update := softDelete(oid, at)
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", userserrors.ErrNotFound, id)
	}
	return nil
}

// set updates fields of an active user.
func (r *mongoUserRepository) set(ctx context.Context, id string, fields bson.M, what string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	fields["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid, "is_active": true}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", what, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", userserrors.ErrNotFound, id)
	}
	return nil
}

func softDelete(oid primitive.ObjectID, at time.Time) (bson.M, bson.M) {
	filter := bson.M{"_id": oid, "is_active": true}
	update := bson.M{
		"$set": bson.M{
			"is_active":  false,
			"deleted_at": at,
			"updated_at": at,
		},
	}
	return filter, update
}
