package validators

import "go.mongodb.org/mongo-driver/bson"

var amountsSchema = bson.M{
	"bsonType": "object",
	"required": []string{"base_price", "reservation_fee", "total"},
	"properties": bson.M{
		"unit_price":      bson.M{"bsonType": "number", "minimum": 0},
		"periods":         bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
		"base_price":      bson.M{"bsonType": "number", "minimum": 0},
		"reservation_fee": bson.M{"bsonType": "number", "minimum": 0},
		"total":           bson.M{"bsonType": "number", "minimum": 0},
	},
}

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"kind",
			"unit_id",
			"period_start",
			"period_end",
			"status",
			"amounts",
			"payment_status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"kind": bson.M{
				"bsonType": "string",
				"enum":     []string{"room", "vehicle"},
			},

			"unit_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			// null for walk-ins
			"owner_id": bson.M{
				"bsonType": []string{"string", "null"},
			},

			"period_start": bson.M{
				"bsonType": "date",
			},

			"period_end": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"hold",
					"pending",
					"confirmed",
					"checked-in",
					"checked-out",
					"active",
					"completed",
					"cancelled",
				},
			},

			"hold_expires_at": bson.M{
				"bsonType": "date",
			},

			"guest": bson.M{
				"bsonType": "object",
				"required": []string{"name", "phone", "guests"},
			},

			"amounts": amountsSchema,

			"payment_status": bson.M{
				"bsonType": "string",
				"enum":     []string{"unpaid", "paid", "refunded"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var AmountsAuditValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"reservation_id",
			"previous",
			"corrected",
			"reason",
			"corrected_by",
			"corrected_at",
		},
		"properties": bson.M{
			"reservation_id": bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"previous":       amountsSchema,
			"corrected":      amountsSchema,
			"reason":         bson.M{"bsonType": "string", "minLength": 3, "maxLength": 200},
			"corrected_by":   bson.M{"bsonType": "string"},
			"corrected_at":   bson.M{"bsonType": "date"},
		},
	},
}

var SlotLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "unit_id", "expires_at", "created_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"unit_id":    bson.M{"bsonType": "string"},
			"expires_at": bson.M{"bsonType": "date"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
