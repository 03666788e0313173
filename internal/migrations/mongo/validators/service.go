package validators

import "go.mongodb.org/mongo-driver/bson"

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"owner_id", "name", "category", "city", "price", "currency", "available_days", "is_active", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":              bson.M{"bsonType": "objectId"},
			"owner_id":         bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"name":             bson.M{"bsonType": "string", "minLength": 2, "maxLength": 150},
			"category":         bson.M{"bsonType": "string"},
			"city":             bson.M{"bsonType": "string"},
			"price":            bson.M{"bsonType": "number", "exclusiveMinimum": true, "minimum": 0},
			"currency":         bson.M{"bsonType": "string", "minLength": 3, "maxLength": 3},
			"duration_minutes": bson.M{"bsonType": "int", "minimum": 1, "maximum": 1440},
			"capacity":         bson.M{"bsonType": "int", "minimum": 1},
			"available_days": bson.M{
				"bsonType":    "array",
				"minItems":    1,
				"maxItems":    7,
				"uniqueItems": true,
				"items":       bson.M{"bsonType": "int", "minimum": 0, "maximum": 6},
			},
			"start_hour": bson.M{"bsonType": "int", "minimum": 0, "maximum": 23},
			"end_hour":   bson.M{"bsonType": "int", "minimum": 1, "maximum": 24},
			"is_active":  bson.M{"bsonType": "bool"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
