package models

import "time"

type Restaurant struct {
	RestaurantID string   `json:"restaurantid" bson:"restaurantid"`
	Name         string   `json:"name" bson:"name"`
	Description  string   `json:"description,omitempty" bson:"description,omitempty"`
	Address      string   `json:"address,omitempty" bson:"address,omitempty"`
	Phone        string   `json:"phone,omitempty" bson:"phone,omitempty"`
	Email        string   `json:"email,omitempty" bson:"email,omitempty"`
	Cuisine      string   `json:"cuisine,omitempty" bson:"cuisine,omitempty"`
	PriceRange   string   `json:"priceRange,omitempty" bson:"priceRange,omitempty"`
	Capacity     int      `json:"capacity" bson:"capacity"`
	Slots        []string `json:"slots" bson:"slots"` // "HH:MM-HH:MM" windows
	SlotsText    string   `json:"slotsText,omitempty" bson:"-"` // newline-separated alternative to Slots
	Banner       string   `json:"banner,omitempty" bson:"banner,omitempty"`
	OwnerID      string   `json:"ownerId" bson:"ownerId"`
	OwnerEmail   string   `json:"ownerEmail,omitempty" bson:"ownerEmail,omitempty"`

	// Coordinates are optional; a restaurant without them is excluded from
	// every distance computation rather than defaulted to (0, 0).
	Latitude  *float64 `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty" bson:"longitude,omitempty"`

	// Distance is computed per request against the caller's location and is
	// never persisted.
	Distance *float64 `json:"distance,omitempty" bson:"-"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (r *Restaurant) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

type UserLocation struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}
