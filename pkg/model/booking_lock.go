package model

import "time"

// BookingLock is an advisory lock document keyed by inventory unit. A second
// insert with the same ID fails with a duplicate key error.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
