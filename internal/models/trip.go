package models

import (
	"time"
)

type TripStatus string

const (
	TripStatusOpen      TripStatus = "open"
	TripStatusBooked    TripStatus = "booked"
	TripStatusCancelled TripStatus = "cancelled"
)

// CanTransitionTo reports whether the trip state machine allows s -> next.
// booked and cancelled are terminal.
func (s TripStatus) CanTransitionTo(next TripStatus) bool {
	return s == TripStatusOpen && (next == TripStatusBooked || next == TripStatusCancelled)
}

// Trip is a traveler's request for transport that drivers bid on.
type Trip struct {
	ID             string     `json:"id" gorm:"type:uuid;primaryKey"`
	TravelerID     string     `json:"travelerId" gorm:"type:uuid;not null;index"`
	Origin         string     `json:"origin" gorm:"not null"`
	OriginLat      float64    `json:"originLat" gorm:"not null"`
	OriginLng      float64    `json:"originLng" gorm:"not null"`
	Destination    string     `json:"destination" gorm:"not null"`
	DestinationLat float64    `json:"destinationLat" gorm:"not null"`
	DestinationLng float64    `json:"destinationLng" gorm:"not null"`
	DepartureDate  time.Time  `json:"departureDate" gorm:"not null"`
	SeatsNeeded    int        `json:"seatsNeeded" gorm:"not null;default:1"`
	MaxPrice       float64    `json:"maxPrice" gorm:"not null"`
	Description    *string    `json:"description,omitempty"`
	DistanceKm     float64    `json:"distanceKm"`
	Status         TripStatus `json:"status" gorm:"type:text;not null;default:'open';index"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// TableName specifies the table name
func (Trip) TableName() string {
	return "trips"
}
