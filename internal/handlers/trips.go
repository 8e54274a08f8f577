package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tripbid/tripbid-backend/internal/models"
	"github.com/tripbid/tripbid-backend/internal/services"
	"github.com/tripbid/tripbid-backend/pkg/utils"
)

// CreateTrip lets a traveler post a trip for drivers to bid on.
func CreateTrip(svc *services.TripLifecycleService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")
		userType := c.GetString("userType")

		if userType != string(models.UserTypeTraveler) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only travelers can create trips"})
			return
		}

		var input struct {
			Origin         string   `json:"origin" binding:"required"`
			OriginLat      *float64 `json:"originLat" binding:"required"`
			OriginLng      *float64 `json:"originLng" binding:"required"`
			Destination    string   `json:"destination" binding:"required"`
			DestinationLat *float64 `json:"destinationLat" binding:"required"`
			DestinationLng *float64 `json:"destinationLng" binding:"required"`
			DepartureDate  string   `json:"departureDate" binding:"required"`
			SeatsNeeded    int      `json:"seatsNeeded" binding:"required,min=1"`
			MaxPrice       float64  `json:"maxPrice" binding:"required,gt=0"`
			Description    *string  `json:"description"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}

		departure, err := utils.ParseTime(input.DepartureDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid departureDate"})
			return
		}

		trip, err := svc.CreateTrip(c.Request.Context(), userID, services.CreateTripInput{
			Origin:         input.Origin,
			OriginLat:      *input.OriginLat,
			OriginLng:      *input.OriginLng,
			Destination:    input.Destination,
			DestinationLat: *input.DestinationLat,
			DestinationLng: *input.DestinationLng,
			DepartureDate:  departure,
			SeatsNeeded:    input.SeatsNeeded,
			MaxPrice:       input.MaxPrice,
			Description:    input.Description,
		})
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(http.StatusCreated, trip)
	}
}

func GetTrip(svc *services.TripLifecycleService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		trip, err := svc.GetTrip(c.Request.Context(), c.Param("tripId"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, trip)
	}
}

// GetTripBids lists the bids on a trip for its traveler.
func GetTripBids(svc *services.TripLifecycleService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bids, err := svc.ListTripBids(c.Request.Context(), c.GetString("userId"), c.Param("tripId"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, bids)
	}
}

func GetTripBooking(svc *services.TripLifecycleService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, err := svc.GetTripBooking(c.Request.Context(), c.GetString("userId"), c.Param("tripId"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, booking)
	}
}
