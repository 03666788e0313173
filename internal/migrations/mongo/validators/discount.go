package validators

import "go.mongodb.org/mongo-driver/bson"

var DiscountCodeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"code", "type", "value", "active", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"code":         bson.M{"bsonType": "string", "minLength": 3, "maxLength": 32},
			"type":         bson.M{"bsonType": "string", "enum": []string{"percentage", "fixed"}},
			"value":        bson.M{"bsonType": "number", "exclusiveMinimum": true, "minimum": 0},
			"currency":     bson.M{"bsonType": "string", "minLength": 3, "maxLength": 3},
			"min_subtotal": bson.M{"bsonType": "number", "minimum": 0},
			"valid_from":   bson.M{"bsonType": "date"},
			"valid_until":  bson.M{"bsonType": "date"},
			"active":       bson.M{"bsonType": "bool"},
			"created_at":   bson.M{"bsonType": "date"},
		},
	},
}

// BookingLockValidator keeps lock documents shaped for the TTL index.
var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "expires_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"expires_at": bson.M{"bsonType": "date"},
		},
	},
}
