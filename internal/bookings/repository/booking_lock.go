package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "tourism/internal/bookings/errors"
	"tourism/pkg/config"
	mongotx "tourism/pkg/db/mongo"
	"tourism/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Booking_locks"

// BookingLockRepository provides operations for advisory locks
type BookingLockRepository interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (*model.BookingLock, error)
	Release(ctx context.Context, key string) error
}

type mongoBookingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

// Acquire returns ErrLockHeld when another request holds key. Expired locks
// are removed by the TTL index on expires_at.
func (r *mongoBookingLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (*model.BookingLock, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := &model.BookingLock{
		ID:        key,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrLockHeld, key)
		}
		return nil, fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	return lock, nil
}

func (r *mongoBookingLockRepository) Release(ctx context.Context, key string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	return nil
}

// LockKey identifies the inventory unit a request competes for.
func LockKey(req *model.BookingRequest) string {
	switch req.ResourceType {
	case model.ResourceProperty:
		return fmt.Sprintf("booking_lock_property_%s_%s", req.ResourceID, req.RoomID)
	case model.ResourceFlight:
		return fmt.Sprintf("booking_lock_flight_%s_%s", req.ResourceID, req.FareClass)
	default:
		return fmt.Sprintf("booking_lock_service_%s_%d", req.ResourceID, req.CheckIn.UTC().Unix())
	}
}
