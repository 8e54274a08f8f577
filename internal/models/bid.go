package models

import (
	"time"
)

type BidStatus string

const (
	BidStatusPending   BidStatus = "pending"
	BidStatusAccepted  BidStatus = "accepted"
	BidStatusRejected  BidStatus = "rejected"
	BidStatusCancelled BidStatus = "cancelled"
)

// CanTransitionTo reports whether a bid may move from s to next. Only pending
// bids move; accepted, rejected and cancelled are terminal.
func (s BidStatus) CanTransitionTo(next BidStatus) bool {
	if s != BidStatusPending {
		return false
	}
	switch next {
	case BidStatusAccepted, BidStatusRejected, BidStatusCancelled:
		return true
	}
	return false
}

// DriverBid is a driver's priced offer against an open trip.
type DriverBid struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	TripID       string    `json:"tripId" gorm:"type:uuid;not null;index"`
	DriverID     string    `json:"driverId" gorm:"type:uuid;not null;index"`
	BidAmount    float64   `json:"bidAmount" gorm:"not null"`
	VehicleType  string    `json:"vehicleType" gorm:"not null"`
	LicensePlate string    `json:"licensePlate" gorm:"not null"`
	VehicleColor *string   `json:"vehicleColor,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	Status       BidStatus `json:"status" gorm:"type:text;not null;default:'pending'"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (DriverBid) TableName() string {
	return "driver_bids"
}
