package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tripbid/tripbid-backend/internal/models"
	"github.com/tripbid/tripbid-backend/internal/services"
	"github.com/tripbid/tripbid-backend/pkg/utils"
)

// SubmitBid places a driver's offer on an open trip.
func SubmitBid(svc *services.TripLifecycleService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")
		userType := c.GetString("userType")

		if userType != string(models.UserTypeDriver) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only drivers can submit bids"})
			return
		}

		var input struct {
			TripID       string  `json:"tripId" binding:"required"`
			BidAmount    float64 `json:"bidAmount" binding:"required,gt=0"`
			VehicleType  string  `json:"vehicleType" binding:"required"`
			LicensePlate string  `json:"licensePlate" binding:"required"`
			VehicleColor *string `json:"vehicleColor"`
			Notes        *string `json:"notes"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}

		bid, err := svc.SubmitBid(c.Request.Context(), userID, services.SubmitBidInput{
			TripID:       input.TripID,
			BidAmount:    input.BidAmount,
			VehicleType:  input.VehicleType,
			LicensePlate: input.LicensePlate,
			VehicleColor: input.VehicleColor,
			Notes:        input.Notes,
		})
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(http.StatusCreated, bid)
	}
}

// AcceptBid books the trip with the chosen bid.
func AcceptBid(svc *services.TripLifecycleService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")

		var input struct {
			BidID      string `json:"bidId" binding:"required"`
			PickupTime string `json:"pickupTime" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}

		pickupTime, err := utils.ParseTime(input.PickupTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pickupTime"})
			return
		}

		result, err := svc.AcceptBid(c.Request.Context(), userID, input.BidID, pickupTime)
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func RejectBid(svc *services.TripLifecycleService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.RejectBid(c.Request.Context(), c.GetString("userId"), c.Param("bidId")); err != nil {
			respondError(c, log, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// CancelBid withdraws the calling driver's bid.
func CancelBid(svc *services.TripLifecycleService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.CancelBid(c.Request.Context(), c.GetString("userId"), c.Param("bidId")); err != nil {
			respondError(c, log, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
