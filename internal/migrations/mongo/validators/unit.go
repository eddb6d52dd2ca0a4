package validators

import "go.mongodb.org/mongo-driver/bson"

var UnitValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"kind",
			"number",
			"name",
			"type",
			"price",
			"capacity",
			"is_available",
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

			"number": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 20,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"type": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"price": bson.M{
				"bsonType":         "number",
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  50,
			},

			"is_available": bson.M{
				"bsonType": "bool",
			},

			"features": bson.M{
				"bsonType": "array",
				"maxItems": 30,
				"items": bson.M{
					"bsonType":  "string",
					"maxLength": 60,
				},
			},

			"image_urls": bson.M{
				"bsonType": "array",
				"maxItems": 20,
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
