package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripbid/tripbid-backend/internal/apperrors"
	"github.com/tripbid/tripbid-backend/internal/models"
)

type bidRepository struct {
	db *gorm.DB
}

func (r *bidRepository) Create(ctx context.Context, bid *models.DriverBid) error {
	if bid.ID == "" {
		bid.ID = uuid.NewString()
	}
	bid.Status = models.BidStatusPending
	if err := r.db.WithContext(ctx).Create(bid).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return apperrors.Conflict("driver already has a pending bid on this trip")
		}
		return insertError("create bid", "bid", err)
	}
	return nil
}

func (r *bidRepository) GetByID(ctx context.Context, id string) (*models.DriverBid, error) {
	var bid models.DriverBid
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&bid).Error; err != nil {
		return nil, storageError("get bid", "bid", err)
	}
	return &bid, nil
}

func (r *bidRepository) ListByTrip(ctx context.Context, tripID string) ([]models.DriverBid, error) {
	var bids []models.DriverBid
	if err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("created_at DESC").
		Find(&bids).Error; err != nil {
		return nil, storageError("list bids", "bid", err)
	}
	return bids, nil
}

func (r *bidRepository) SetStatus(ctx context.Context, id string, status models.BidStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.DriverBid{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return storageError("update bid status", "bid", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("bid not found")
	}
	return nil
}

func (r *bidRepository) CompareAndSetStatus(ctx context.Context, id string, expected, next models.BidStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DriverBid{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]interface{}{"status": next, "updated_at": time.Now()})
	if result.Error != nil {
		return false, storageError("update bid status", "bid", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *bidRepository) BulkSetStatusExcept(ctx context.Context, tripID, excludeID string, from, to models.BidStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DriverBid{}).
		Where("trip_id = ? AND id <> ? AND status = ?", tripID, excludeID, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if result.Error != nil {
		return 0, storageError("bulk update bid status", "bid", result.Error)
	}
	return result.RowsAffected, nil
}
