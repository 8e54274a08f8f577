package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tripbid/tripbid-backend/internal/middleware"
	"github.com/tripbid/tripbid-backend/internal/services"
)

// SetupRoutes mounts the trip and bid API under api. Every route requires a
// bearer token.
func SetupRoutes(api *gin.RouterGroup, svc *services.TripLifecycleService, log *logrus.Logger, jwtSecret string) {
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(jwtSecret))
	{
		trips := protected.Group("/trips")
		{
			trips.POST("", CreateTrip(svc, log))
			trips.GET("/:tripId", GetTrip(svc, log))
			trips.GET("/:tripId/bids", GetTripBids(svc, log))
			trips.GET("/:tripId/booking", GetTripBooking(svc, log))
		}

		bids := protected.Group("/bids")
		{
			bids.POST("", SubmitBid(svc, log))
			bids.POST("/accept", AcceptBid(svc, log))
			bids.POST("/:bidId/reject", RejectBid(svc, log))
			bids.POST("/:bidId/cancel", CancelBid(svc, log))
		}
	}
}
