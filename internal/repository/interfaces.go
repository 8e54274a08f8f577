package repository

import (
	"context"

	"github.com/tripbid/tripbid-backend/internal/models"
)

type TripRepository interface {
	Create(ctx context.Context, trip *models.Trip) error
	GetByID(ctx context.Context, id string) (*models.Trip, error)

	// CompareAndSetStatus flips the trip to next only if its stored status
	// still equals expected. false means another writer got there first and
	// nothing was changed.
	CompareAndSetStatus(ctx context.Context, id string, expected, next models.TripStatus) (bool, error)
}

type BidRepository interface {
	// Create stores a new pending bid. A second pending bid from the same
	// driver on the same trip is a conflict.
	Create(ctx context.Context, bid *models.DriverBid) error
	GetByID(ctx context.Context, id string) (*models.DriverBid, error)
	ListByTrip(ctx context.Context, tripID string) ([]models.DriverBid, error)

	SetStatus(ctx context.Context, id string, status models.BidStatus) error
	CompareAndSetStatus(ctx context.Context, id string, expected, next models.BidStatus) (bool, error)

	// BulkSetStatusExcept moves every bid of tripID currently in from to to,
	// skipping excludeID. Zero matches is not an error.
	BulkSetStatusExcept(ctx context.Context, tripID, excludeID string, from, to models.BidStatus) (int64, error)
}

type BookingRepository interface {
	// Create fails with a conflict if the trip already has a booking.
	Create(ctx context.Context, booking *models.Booking) error
	GetByTripID(ctx context.Context, tripID string) (*models.Booking, error)
}

// Store groups the repositories behind one transaction boundary.
type Store interface {
	Trips() TripRepository
	Bids() BidRepository
	Bookings() BookingRepository

	// InTx runs fn against a Store whose writes commit together when fn
	// returns nil and are discarded otherwise.
	InTx(ctx context.Context, fn func(tx Store) error) error
}
