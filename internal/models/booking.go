package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return s == BookingStatusConfirmed && (next == BookingStatusCompleted || next == BookingStatusCancelled)
}

// Booking is the contract created when a traveler accepts a bid. There is at
// most one per trip.
type Booking struct {
	ID               string        `json:"id" gorm:"type:uuid;primaryKey"`
	TripID           string        `json:"tripId" gorm:"type:uuid;not null;uniqueIndex"`
	DriverID         string        `json:"driverId" gorm:"type:uuid;not null;index"`
	DriverBidID      string        `json:"driverBidId" gorm:"type:uuid;not null"`
	FinalPrice       float64       `json:"finalPrice" gorm:"not null"`
	PickupTime       time.Time     `json:"pickupTime" gorm:"not null"`
	Status           BookingStatus `json:"status" gorm:"type:text;not null;default:'confirmed'"`
	EstimatedArrival *time.Time    `json:"estimatedArrival,omitempty"`
	ActualArrival    *time.Time    `json:"actualArrival,omitempty"`
	Rating           *int          `json:"rating,omitempty"`
	Review           *string       `json:"review,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}
