package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripbid/tripbid-backend/internal/models"
)

type tripRepository struct {
	db *gorm.DB
}

func (r *tripRepository) Create(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}
	if trip.Status == "" {
		trip.Status = models.TripStatusOpen
	}
	if err := r.db.WithContext(ctx).Create(trip).Error; err != nil {
		return insertError("create trip", "trip", err)
	}
	return nil
}

func (r *tripRepository) GetByID(ctx context.Context, id string) (*models.Trip, error) {
	var trip models.Trip
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&trip).Error; err != nil {
		return nil, storageError("get trip", "trip", err)
	}
	return &trip, nil
}

func (r *tripRepository) CompareAndSetStatus(ctx context.Context, id string, expected, next models.TripStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Trip{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]interface{}{
			"status":     next,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, storageError("update trip status", "trip", result.Error)
	}
	return result.RowsAffected == 1, nil
}
