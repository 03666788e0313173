package validators

import "go.mongodb.org/mongo-driver/bson"

var score = bson.M{"bsonType": "int", "minimum": 1, "maximum": 5}

var ReviewValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"property_id", "booking_id", "user_id", "ratings", "rating", "comment", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "objectId"},
			"property_id": bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"booking_id":  bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"user_id":     bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"ratings": bson.M{
				"bsonType": "object",
				"required": []string{"cleanliness", "accuracy", "check_in", "communication", "location", "value"},
				"properties": bson.M{
					"cleanliness":   score,
					"accuracy":      score,
					"check_in":      score,
					"communication": score,
					"location":      score,
					"value":         score,
				},
			},
			"rating":        score,
			"comment":       bson.M{"bsonType": "string", "minLength": 10, "maxLength": 20000},
			"helpful_votes": bson.M{"bsonType": "array", "uniqueItems": true},
			"helpful_count": bson.M{"bsonType": "int", "minimum": 0},
			"created_at":    bson.M{"bsonType": "date"},
		},
	},
}
