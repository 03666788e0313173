package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "tourism/internal/bookings/errors"
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
	CollectionName = "Bookings"
)

// Transition moves a booking out of Change.From. Filter and Set extend the
// conditional update with extra preconditions and fields.
type Transition struct {
	Change model.StatusChange
	Filter bson.M
	Set    bson.M
}

// UserBookingStats aggregates a user's bookings per status.
type UserBookingStats struct {
	ByStatus   map[model.BookingStatus]int64 `json:"byStatus"`
	Total      int64                         `json:"total"`
	TotalSpent map[string]float64            `json:"totalSpent"`
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByUser(ctx context.Context, userID string, status model.BookingStatus, page search.Page) ([]*model.Booking, error)
	CountByUser(ctx context.Context, userID string, status model.BookingStatus) (int64, error)
	HasActive(ctx context.Context, userID string) (bool, error)
	StatsByUser(ctx context.Context, userID string) (*UserBookingStats, error)
	Transition(ctx context.Context, id string, t Transition) error
	RecordCheckIn(ctx context.Context, id string, rec model.StayRecord) error
	UpdatePayment(ctx context.Context, id string, prev, next model.Payment, tx model.PaymentTransaction) error
	LinkReview(ctx context.Context, id, reviewID string) error
	UnlinkReview(ctx context.Context, id, reviewID string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string, status model.BookingStatus, page search.Page) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(page.Skip).
		SetLimit(int64(page.Limit))

	cursor, err := r.collection.Find(ctx, userFilter(userID, status), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) CountByUser(ctx context.Context, userID string, status model.BookingStatus) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, userFilter(userID, status))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) HasActive(ctx context.Context, userID string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"user_id": userID,
		"status":  bson.M{"$in": model.ActiveBookingStatuses},
	}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count active bookings: %w", err)
	}
	return count > 0, nil
}

func (r *mongoBookingRepository) StatsByUser(ctx context.Context, userID string) (*UserBookingStats, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, userStatsPipeline(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking stats: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID struct {
			Status   model.BookingStatus `bson:"status"`
			Currency string              `bson:"currency"`
		} `bson:"_id"`
		Count int64   `bson:"count"`
		Spent float64 `bson:"spent"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode booking stats: %w", err)
	}

	stats := &UserBookingStats{
		ByStatus:   map[model.BookingStatus]int64{},
		TotalSpent: map[string]float64{},
	}
	for _, row := range rows {
		stats.ByStatus[row.ID.Status] += row.Count
		stats.Total += row.Count
		if row.ID.Status == model.BookingCompleted || row.ID.Status == model.BookingConfirmed {
			stats.TotalSpent[row.ID.Currency] += row.Spent
		}
	}
	return stats, nil
}

func (r *mongoBookingRepository) Transition(ctx context.Context, id string, t Transition) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	filter, update := transitionUpdate(oid, t)
	return r.conditionalUpdate(ctx, id, filter, update)
}

func (r *mongoBookingRepository) RecordCheckIn(ctx context.Context, id string, rec model.StayRecord) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	filter := bson.M{
		"_id":             oid,
		"status":          model.BookingConfirmed,
		"check_in_record": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"check_in_record": rec,
		"updated_at":      rec.At,
	}}
	return r.conditionalUpdate(ctx, id, filter, update)
}

func (r *mongoBookingRepository) UpdatePayment(ctx context.Context, id string, prev, next model.Payment, tx model.PaymentTransaction) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	filter, update := paymentUpdate(oid, prev, next, tx)
	return r.conditionalUpdate(ctx, id, filter, update)
}

func (r *mongoBookingRepository) LinkReview(ctx context.Context, id, reviewID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "review_id": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"review_id": reviewID}}
	return r.conditionalUpdate(ctx, id, filter, update)
}

func (r *mongoBookingRepository) UnlinkReview(ctx context.Context, id, reviewID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "review_id": reviewID},
		bson.M{"$unset": bson.M{"review_id": ""}},
	)
	if err != nil {
		return fmt.Errorf("failed to unlink review: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// conditionalUpdate reports ErrStaleState when the document exists but the
// preconditions in filter no longer hold.
func (r *mongoBookingRepository) conditionalUpdate(ctx context.Context, id string, filter, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": filter["_id"]})
	if err != nil {
		return fmt.Errorf("failed to check booking existence: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	return fmt.Errorf("%w: %s", bookingserrors.ErrStaleState, id)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func userFilter(userID string, status model.BookingStatus) bson.M {
	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}
	return filter
}

func userStatsPipeline(userID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"status": "$status", "currency": "$pricing.currency"},
			"count": bson.M{"$sum": 1},
			"spent": bson.M{"$sum": "$pricing.total"},
		}}},
	}
}

func transitionUpdate(oid primitive.ObjectID, t Transition) (bson.M, bson.M) {
	filter := bson.M{"_id": oid, "status": t.Change.From}
	for k, v := range t.Filter {
		filter[k] = v
	}

	set := bson.M{
		"status":     t.Change.To,
		"updated_at": t.Change.At,
	}
	for k, v := range t.Set {
		set[k] = v
	}

	update := bson.M{
		"$set":  set,
		"$push": bson.M{"status_history": t.Change},
	}
	return filter, update
}

// paymentUpdate only matches while the payment still looks like prev, so two
// concurrent payments cannot both apply against the same remaining amount.
func paymentUpdate(oid primitive.ObjectID, prev, next model.Payment, tx model.PaymentTransaction) (bson.M, bson.M) {
	filter := bson.M{
		"_id":                 oid,
		"payment.status":      prev.Status,
		"payment.paid_amount": prev.PaidAmount,
	}
	update := bson.M{
		"$set": bson.M{
			"payment.status":           next.Status,
			"payment.method":           next.Method,
			"payment.paid_amount":      next.PaidAmount,
			"payment.remaining_amount": next.RemainingAmount,
			"updated_at":               tx.At,
		},
		"$push": bson.M{"payment.transactions": tx},
	}
	return filter, update
}
