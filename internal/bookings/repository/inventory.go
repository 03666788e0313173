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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const FlightsCollectionName = "Flights"

// InventoryRepository answers how much of an inventory unit is held by
// active bookings, and moves flight seats atomically.
type InventoryRepository interface {
	ReservedRooms(ctx context.Context, propertyID string, from, to time.Time) (map[string]int, error)
	SlotGuests(ctx context.Context, serviceID string, slot time.Time) (int, error)
	ReserveSeats(ctx context.Context, flightID string, class model.FareClass, seats int) error
	ReleaseSeats(ctx context.Context, flightID string, class model.FareClass, seats int) error
}

type mongoInventoryRepository struct {
	cfg      *config.Config
	bookings *mongo.Collection
	flights  *mongo.Collection
}

func NewMongoInventoryRepository(cfg *config.Config) InventoryRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoInventoryRepository{
		cfg:      cfg,
		bookings: db.Collection(CollectionName),
		flights:  db.Collection(FlightsCollectionName),
	}
}

// ReservedRooms sums the quantity of every pending or confirmed booking of
// the property that overlaps [from, to), keyed by room id.
func (r *mongoInventoryRepository) ReservedRooms(ctx context.Context, propertyID string, from, to time.Time) (map[string]int, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.bookings.Aggregate(ctx, reservedRoomsPipeline(propertyID, from, to))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reserved rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		RoomID   string `bson:"_id"`
		Quantity int    `bson:"quantity"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode reserved rooms: %w", err)
	}

	reserved := make(map[string]int, len(rows))
	for _, row := range rows {
		reserved[row.RoomID] = row.Quantity
	}
	return reserved, nil
}

func (r *mongoInventoryRepository) SlotGuests(ctx context.Context, serviceID string, slot time.Time) (int, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.bookings.Aggregate(ctx, slotGuestsPipeline(serviceID, slot))
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate slot guests: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Guests int `bson:"guests"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode slot guests: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Guests, nil
}

// ReserveSeats decrements the fare bucket only while enough seats remain, so
// concurrent bookings can never oversell.
func (r *mongoInventoryRepository) ReserveSeats(ctx context.Context, flightID string, class model.FareClass, seats int) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(flightID)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrResourceNotFound, flightID)
	}

	filter, update := seatDecrement(oid, class, seats)
	result, err := r.flights.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve seats: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s %s", bookingserrors.ErrSeatsUnavailable, flightID, class)
	}
	return nil
}

func (r *mongoInventoryRepository) ReleaseSeats(ctx context.Context, flightID string, class model.FareClass, seats int) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(flightID)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrResourceNotFound, flightID)
	}

	_, err = r.flights.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{seatsField(class): seats}},
	)
	if err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}
	return nil
}

func seatsField(class model.FareClass) string {
	return "fares." + string(class) + ".seats_available"
}

func seatDecrement(oid primitive.ObjectID, class model.FareClass, seats int) (bson.M, bson.M) {
	field := seatsField(class)
	filter := bson.M{
		"_id":    oid,
		field:    bson.M{"$gte": seats},
		"status": bson.M{"$in": []model.FlightStatus{model.FlightScheduled, model.FlightDelayed}},
	}
	update := bson.M{"$inc": bson.M{field: -seats}}
	return filter, update
}

func reservedRoomsPipeline(propertyID string, from, to time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"resource_type": model.ResourceProperty,
			"resource_id":   propertyID,
			"status":        bson.M{"$in": model.ActiveBookingStatuses},
			"check_in":      bson.M{"$lt": to},
			"check_out":     bson.M{"$gt": from},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$room_id",
			"quantity": bson.M{"$sum": "$pricing.quantity"},
		}}},
	}
}

func slotGuestsPipeline(serviceID string, slot time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"resource_type": model.ResourceService,
			"resource_id":   serviceID,
			"status":        bson.M{"$in": model.ActiveBookingStatuses},
			"check_in":      slot.UTC(),
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"guests": bson.M{"$sum": "$guests"},
		}}},
	}
}
