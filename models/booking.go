package models

import "time"

// Persisted booking statuses. COMPLETED is display-only and never written.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

type Booking struct {
	ID              string     `json:"id" bson:"id"`
	RestaurantID    string     `json:"restaurantId" bson:"restaurantId"`
	RestaurantName  string     `json:"restaurantName,omitempty" bson:"restaurantName,omitempty"`
	OwnerID         string     `json:"ownerId" bson:"ownerId"`
	UserID          string     `json:"userId" bson:"userId"`
	UserEmail       string     `json:"userEmail,omitempty" bson:"userEmail,omitempty"`
	Date            string     `json:"date" bson:"date"` // "YYYY-MM-DD"
	Time            string     `json:"time" bson:"time"` // "HH:MM-HH:MM"
	Guests          int        `json:"guests" bson:"guests"`
	SpecialRequests string     `json:"specialRequests,omitempty" bson:"specialRequests,omitempty"`
	Status          string     `json:"status" bson:"status"`
	CancelReason    string     `json:"cancelReason,omitempty" bson:"cancelReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updatedAt"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`

	// DisplayStatus carries the derived read-time status (COMPLETED overlay).
	DisplayStatus string `json:"displayStatus,omitempty" bson:"-"`
}
