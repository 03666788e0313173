package validators

import "go.mongodb.org/mongo-driver/bson"

var PropertyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"owner_id", "name", "property_type", "address", "cancellation_policy", "is_active", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":      bson.M{"bsonType": "objectId"},
			"owner_id": bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"name":     bson.M{"bsonType": "string", "minLength": 2, "maxLength": 150},
			"property_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"hotel", "apartment", "resort", "villa", "hostel", "guesthouse"},
			},
			"address": bson.M{
				"bsonType": "object",
				"required": []string{"city", "country"},
				"properties": bson.M{
					"city":    bson.M{"bsonType": "string"},
					"country": bson.M{"bsonType": "string"},
					"location": bson.M{
						"bsonType": "object",
						"required": []string{"type", "coordinates"},
						"properties": bson.M{
							"type":        bson.M{"enum": []string{"Point"}},
							"coordinates": bson.M{"bsonType": "array", "minItems": 2, "maxItems": 2},
						},
					},
				},
			},
			"rooms": bson.M{
				"bsonType": "array",
				"maxItems": 200,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"id", "type", "capacity", "price_per_night", "currency"},
					"properties": bson.M{
						"capacity":        bson.M{"bsonType": "int", "minimum": 1},
						"price_per_night": bson.M{"bsonType": "number", "exclusiveMinimum": true, "minimum": 0},
						"units":           bson.M{"bsonType": "int", "minimum": 0},
					},
				},
			},
			"amenities":           bson.M{"bsonType": "array", "maxItems": 100},
			"rating":              bson.M{"bsonType": "number", "minimum": 0, "maximum": 5},
			"review_count":        bson.M{"bsonType": "int", "minimum": 0},
			"cancellation_policy": bson.M{"bsonType": "string", "enum": []string{"flexible", "moderate", "strict"}},
			"is_active":           bson.M{"bsonType": "bool"},
			"created_at":          bson.M{"bsonType": "date"},
		},
	},
}
