package repository

import (
	"errors"
	"testing"

	reviewserrors "tourism/internal/reviews/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHelpfulVote(t *testing.T) {
	const id = "65f1c0a2b3c4d5e6f7a8b9e0"
	oid, _ := primitive.ObjectIDFromHex(id)

	filter, update, err := helpfulVote(id, "u1", true)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"_id": oid, "helpful_votes": bson.M{"$ne": "u1"}}, filter)
	assert.Equal(t, bson.M{"helpful_count": 1}, update["$inc"])
	assert.Equal(t, bson.M{"helpful_votes": "u1"}, update["$addToSet"])

	filter, update, err = helpfulVote(id, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"_id": oid, "helpful_votes": "u1"}, filter)
	assert.Equal(t, bson.M{"helpful_count": -1}, update["$inc"])
	assert.Equal(t, bson.M{"helpful_votes": "u1"}, update["$pull"])
}

func TestHelpfulVote_InvalidID(t *testing.T) {
	_, _, err := helpfulVote("nope", "u1", true)
	assert.True(t, errors.Is(err, reviewserrors.ErrInvalidID))
}
