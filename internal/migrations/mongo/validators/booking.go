package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"reference",
			"user_id",
			"resource_type",
			"resource_id",
			"check_in",
			"check_out",
			"guests",
			"pricing",
			"payment",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"reference": bson.M{
				"bsonType":  "string",
				"minLength": 6,
				"maxLength": 32,
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"resource_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"property", "flight", "service"},
			},

			"resource_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"check_in": bson.M{
				"bsonType": "date",
			},

			"check_out": bson.M{
				"bsonType": "date",
			},

			"guests": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  100,
			},

			"pricing": bson.M{
				"bsonType": "object",
				"required": []string{"subtotal", "tax", "total", "currency"},
				"properties": bson.M{
					"subtotal": bson.M{"bsonType": "number", "minimum": 0},
					"discount": bson.M{"bsonType": "number", "minimum": 0},
					"tax":      bson.M{"bsonType": "number", "minimum": 0},
					"total":    bson.M{"bsonType": "number", "minimum": 0},
					"currency": bson.M{"bsonType": "string", "minLength": 3, "maxLength": 3},
				},
			},

			"payment": bson.M{
				"bsonType": "object",
				"required": []string{"status", "paid_amount", "remaining_amount"},
				"properties": bson.M{
					"status": bson.M{
						"bsonType": "string",
						"enum":     []string{"unpaid", "partial", "paid", "refunded", "failed"},
					},
					"paid_amount":      bson.M{"bsonType": "number", "minimum": 0},
					"remaining_amount": bson.M{"bsonType": "number", "minimum": 0},
					"transactions":     bson.M{"bsonType": "array"},
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"completed",
					"cancelled",
					"no-show",
				},
			},

			"status_history": bson.M{
				"bsonType": "array",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
