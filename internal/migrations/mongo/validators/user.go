package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"email", "password_hash", "role", "is_active", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":           bson.M{"bsonType": "objectId"},
			"email":         bson.M{"bsonType": "string", "maxLength": 254},
			"password_hash": bson.M{"bsonType": "string", "minLength": 20},
			"role":          bson.M{"bsonType": "string", "enum": []string{"customer", "host", "admin"}},
			"profile": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"first_name": bson.M{"bsonType": "string", "maxLength": 60},
					"last_name":  bson.M{"bsonType": "string", "maxLength": 60},
					"phone":      bson.M{"bsonType": "string"},
				},
			},
			"preferences": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"currency": bson.M{"bsonType": "string", "minLength": 3, "maxLength": 3},
					"language": bson.M{"bsonType": "string"},
					"timezone": bson.M{"bsonType": "string"},
				},
			},
			"loyalty": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"points": bson.M{"bsonType": "int", "minimum": 0},
					"tier":   bson.M{"bsonType": "string", "enum": []string{"bronze", "silver", "gold", "platinum"}},
				},
			},
			"payment_methods": bson.M{
				"bsonType": "array",
				"maxItems": 10,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"id", "brand", "last4", "token"},
				},
			},
			"is_active":  bson.M{"bsonType": "bool"},
			"deleted_at": bson.M{"bsonType": "date"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
