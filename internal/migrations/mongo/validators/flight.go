package validators

import "go.mongodb.org/mongo-driver/bson"

var leg = bson.M{
	"bsonType": "object",
	"required": []string{"airport", "city", "country", "time"},
	"properties": bson.M{
		"airport": bson.M{"bsonType": "string", "minLength": 3, "maxLength": 3},
		"time":    bson.M{"bsonType": "date"},
	},
}

var fare = bson.M{
	"bsonType": "object",
	"required": []string{"price", "currency", "seats_available"},
	"properties": bson.M{
		"price":           bson.M{"bsonType": "number", "exclusiveMinimum": true, "minimum": 0},
		"currency":        bson.M{"bsonType": "string", "minLength": 3, "maxLength": 3},
		"seats_available": bson.M{"bsonType": "int", "minimum": 0},
	},
}

var FlightValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"flight_number", "airline", "departure", "arrival", "fares", "status", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":              bson.M{"bsonType": "objectId"},
			"flight_number":    bson.M{"bsonType": "string", "minLength": 3, "maxLength": 10},
			"airline":          bson.M{"bsonType": "string"},
			"departure":        leg,
			"arrival":          leg,
			"duration_minutes": bson.M{"bsonType": "int", "minimum": 1},
			"fares": bson.M{
				"bsonType": "object",
				"required": []string{"economy"},
				"properties": bson.M{
					"economy":  fare,
					"business": fare,
					"first":    fare,
				},
			},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"scheduled", "delayed", "cancelled", "boarding", "departed", "arrived"},
			},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
