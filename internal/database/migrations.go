package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/tripbid/tripbid-backend/internal/models"
)

// Constraints GORM tags cannot express. All statements are idempotent.
var constraintStatements = []string{
	`ALTER TABLE trips DROP CONSTRAINT IF EXISTS trips_status_check`,
	`ALTER TABLE trips ADD CONSTRAINT trips_status_check CHECK (status IN ('open', 'booked', 'cancelled'))`,
	`ALTER TABLE driver_bids DROP CONSTRAINT IF EXISTS driver_bids_status_check`,
	`ALTER TABLE driver_bids ADD CONSTRAINT driver_bids_status_check CHECK (status IN ('pending', 'accepted', 'rejected', 'cancelled'))`,
	`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`,
	`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('confirmed', 'completed', 'cancelled'))`,

	// One live offer per driver per trip.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_driver_bids_one_pending
		ON driver_bids (trip_id, driver_id) WHERE status = 'pending'`,
	// At most one accepted bid per trip, backing the bookings.trip_id index.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_driver_bids_one_accepted
		ON driver_bids (trip_id) WHERE status = 'accepted'`,

	`ALTER TABLE driver_bids DROP CONSTRAINT IF EXISTS fk_driver_bids_trip`,
	`ALTER TABLE driver_bids ADD CONSTRAINT fk_driver_bids_trip FOREIGN KEY (trip_id) REFERENCES trips(id)`,
	`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS fk_bookings_trip`,
	`ALTER TABLE bookings ADD CONSTRAINT fk_bookings_trip FOREIGN KEY (trip_id) REFERENCES trips(id)`,
	`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS fk_bookings_driver_bid`,
	`ALTER TABLE bookings ADD CONSTRAINT fk_bookings_driver_bid FOREIGN KEY (driver_bid_id) REFERENCES driver_bids(id)`,
}

func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Trip{},
		&models.DriverBid{},
		&models.Booking{},
	); err != nil {
		return err
	}

	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %q: %w", stmt, err)
		}
	}

	return nil
}
