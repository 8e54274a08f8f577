package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripbid/tripbid-backend/internal/models"
)

type bookingRepository struct {
	db *gorm.DB
}

// Create relies on the unique index on bookings.trip_id, so a duplicate
// surfaces as a conflict even if the caller skipped the trip status gate.
func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusConfirmed
	}
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return insertError("create booking", "booking for this trip", err)
	}
	return nil
}

func (r *bookingRepository) GetByTripID(ctx context.Context, tripID string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("trip_id = ?", tripID).First(&booking).Error; err != nil {
		return nil, storageError("get booking", "booking", err)
	}
	return &booking, nil
}
