package model

import "time"

const (
	KindRoom    = "room"
	KindVehicle = "vehicle"
)

type Unit struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Kind        string    `json:"kind" bson:"kind" validate:"required,oneof=room vehicle"`
	Number      string    `json:"number" bson:"number" validate:"required,min=1,max=20"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Type        string    `json:"type" bson:"type" validate:"required,min=2,max=50"`
	Price       float64   `json:"price" bson:"price" validate:"required,gt=0"`
	Capacity    int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=50"`
	IsAvailable bool      `json:"is_available" bson:"is_available"`
	Features    []string  `json:"features,omitempty" bson:"features,omitempty" validate:"omitempty,max=30,dive,required,max=60"`
	ImageURLs   []string  `json:"image_urls,omitempty" bson:"image_urls,omitempty" validate:"omitempty,max=20,dive,required,url"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type UnitUpdate struct {
	Name        string    `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Type        string    `json:"type,omitempty" bson:"type,omitempty" validate:"omitempty,min=2,max=50"`
	Price       *float64  `json:"price,omitempty" bson:"price,omitempty" validate:"omitempty,gt=0"`
	Capacity    *int      `json:"capacity,omitempty" bson:"capacity,omitempty" validate:"omitempty,min=1,max=50"`
	Features    []string  `json:"features,omitempty" bson:"features,omitempty" validate:"omitempty,max=30,dive,required,max=60"`
	ImageURLs   []string  `json:"image_urls,omitempty" bson:"image_urls,omitempty" validate:"omitempty,max=20,dive,required,url"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	UpdatedAt   time.Time `json:"-" bson:"updated_at"`
}

type AvailabilityUpdate struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

// ReservationPeriod is the billing period of a unit kind.
func ReservationPeriod(kind string) time.Duration {
	if kind == KindVehicle {
		return 24 * time.Hour
	}
	return 12 * time.Hour
}
