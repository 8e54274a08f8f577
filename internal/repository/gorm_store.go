package repository

import (
	"context"

	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore returns a Store backed by PostgreSQL through GORM.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Trips() TripRepository       { return &tripRepository{db: s.db} }
func (s *gormStore) Bids() BidRepository         { return &bidRepository{db: s.db} }
func (s *gormStore) Bookings() BookingRepository { return &bookingRepository{db: s.db} }

func (s *gormStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
