package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tripbid/tripbid-backend/internal/apperrors"
	"github.com/tripbid/tripbid-backend/internal/models"
	"github.com/tripbid/tripbid-backend/internal/repository"
	"github.com/tripbid/tripbid-backend/pkg/utils"
)

type CreateTripInput struct {
	Origin         string
	OriginLat      float64
	OriginLng      float64
	Destination    string
	DestinationLat float64
	DestinationLng float64
	DepartureDate  time.Time
	SeatsNeeded    int
	MaxPrice       float64
	Description    *string
}

type SubmitBidInput struct {
	TripID       string
	BidAmount    float64
	VehicleType  string
	LicensePlate string
	VehicleColor *string
	Notes        *string
}

// TripLifecycleService checks ownership and state before touching storage.
// Acceptance itself is delegated to the AcceptanceCoordinator.
type TripLifecycleService struct {
	store       repository.Store
	coordinator *AcceptanceCoordinator
	events      EventPublisher
	log         *logrus.Logger
}

func NewTripLifecycleService(store repository.Store, coordinator *AcceptanceCoordinator, events EventPublisher, log *logrus.Logger) *TripLifecycleService {
	if events == nil {
		events = NoopPublisher{}
	}
	return &TripLifecycleService{store: store, coordinator: coordinator, events: events, log: log}
}

func (s *TripLifecycleService) CreateTrip(ctx context.Context, callerID string, input CreateTripInput) (*models.Trip, error) {
	input.Origin = strings.TrimSpace(input.Origin)
	input.Destination = strings.TrimSpace(input.Destination)

	switch {
	case input.Origin == "" || input.Destination == "":
		return nil, apperrors.Validation("origin and destination are required")
	case !utils.ValidCoordinates(input.OriginLat, input.OriginLng):
		return nil, apperrors.Validation("invalid origin coordinates")
	case !utils.ValidCoordinates(input.DestinationLat, input.DestinationLng):
		return nil, apperrors.Validation("invalid destination coordinates")
	case input.DepartureDate.IsZero():
		return nil, apperrors.Validation("departure date is required")
	case input.SeatsNeeded < 1:
		return nil, apperrors.Validation("seatsNeeded must be at least 1")
	case input.MaxPrice <= 0:
		return nil, apperrors.Validation("maxPrice must be positive")
	}

	trip := &models.Trip{
		TravelerID:     callerID,
		Origin:         input.Origin,
		OriginLat:      input.OriginLat,
		OriginLng:      input.OriginLng,
		Destination:    input.Destination,
		DestinationLat: input.DestinationLat,
		DestinationLng: input.DestinationLng,
		DepartureDate:  input.DepartureDate,
		SeatsNeeded:    input.SeatsNeeded,
		MaxPrice:       input.MaxPrice,
		Description:    input.Description,
		DistanceKm: utils.HaversineDistance(
			input.OriginLat, input.OriginLng,
			input.DestinationLat, input.DestinationLng,
		),
		Status: models.TripStatusOpen,
	}
	if err := s.store.Trips().Create(ctx, trip); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"trip_id": trip.ID, "traveler_id": callerID}).Info("trip created")
	return trip, nil
}

func (s *TripLifecycleService) SubmitBid(ctx context.Context, callerID string, input SubmitBidInput) (*models.DriverBid, error) {
	input.VehicleType = strings.TrimSpace(input.VehicleType)
	input.LicensePlate = strings.TrimSpace(input.LicensePlate)

	switch {
	case input.TripID == "":
		return nil, apperrors.Validation("tripId is required")
	case input.BidAmount <= 0:
		return nil, apperrors.Validation("bidAmount must be positive")
	case input.VehicleType == "" || input.LicensePlate == "":
		return nil, apperrors.Validation("vehicleType and licensePlate are required")
	}

	trip, err := s.store.Trips().GetByID(ctx, input.TripID)
	if err != nil {
		return nil, err
	}
	if trip.TravelerID == callerID {
		return nil, apperrors.Forbidden("you cannot bid on your own trip")
	}
	if trip.Status != models.TripStatusOpen {
		return nil, apperrors.Conflict("trip is no longer open")
	}

	bid := &models.DriverBid{
		TripID:       trip.ID,
		DriverID:     callerID,
		BidAmount:    input.BidAmount,
		VehicleType:  input.VehicleType,
		LicensePlate: input.LicensePlate,
		VehicleColor: input.VehicleColor,
		Notes:        input.Notes,
	}
	if err := s.store.Bids().Create(ctx, bid); err != nil {
		return nil, err
	}

	// An accept may have won between the status check and the insert, after
	// its reject-others sweep. Don't leave a pending bid on a booked trip.
	current, err := s.store.Trips().GetByID(ctx, trip.ID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.TripStatusOpen {
		if _, err := s.store.Bids().CompareAndSetStatus(context.WithoutCancel(ctx), bid.ID, models.BidStatusPending, models.BidStatusRejected); err != nil {
			return nil, err
		}
		return nil, apperrors.Conflict("trip is no longer open")
	}

	s.log.WithFields(logrus.Fields{
		"trip_id":   trip.ID,
		"bid_id":    bid.ID,
		"driver_id": callerID,
		"amount":    bid.BidAmount,
	}).Info("bid submitted")

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.events.PublishTripEvent(pubCtx, TripEvent{
		Type:       "bid.submitted",
		TripID:     trip.ID,
		BidID:      bid.ID,
		DriverID:   callerID,
		TravelerID: trip.TravelerID,
		Data:       map[string]interface{}{"bidAmount": bid.BidAmount},
	}); err != nil {
		s.log.WithError(err).Warn("failed to publish bid submitted event")
	}
	return bid, nil
}

// RejectBid lets the traveler turn down a single bid. Rejecting an already
// rejected bid is a no-op.
func (s *TripLifecycleService) RejectBid(ctx context.Context, callerID, bidID string) error {
	bid, err := s.store.Bids().GetByID(ctx, bidID)
	if err != nil {
		return err
	}
	trip, err := s.store.Trips().GetByID(ctx, bid.TripID)
	if err != nil {
		return err
	}
	if trip.TravelerID != callerID {
		return apperrors.Forbidden("only the traveler who posted the trip can reject bids")
	}

	return s.resolveBid(ctx, bid, models.BidStatusRejected)
}

// CancelBid lets a driver withdraw their own pending bid.
func (s *TripLifecycleService) CancelBid(ctx context.Context, callerID, bidID string) error {
	bid, err := s.store.Bids().GetByID(ctx, bidID)
	if err != nil {
		return err
	}
	if bid.DriverID != callerID {
		return apperrors.Forbidden("only the driver who placed the bid can cancel it")
	}

	return s.resolveBid(ctx, bid, models.BidStatusCancelled)
}

func (s *TripLifecycleService) resolveBid(ctx context.Context, bid *models.DriverBid, next models.BidStatus) error {
	if bid.Status == next {
		return nil
	}
	if !bid.Status.CanTransitionTo(next) {
		return apperrors.Conflict("bid already resolved")
	}

	ok, err := s.store.Bids().CompareAndSetStatus(ctx, bid.ID, models.BidStatusPending, next)
	if err != nil {
		return err
	}
	if !ok {
		// Someone else resolved it first; only the same outcome is benign.
		current, err := s.store.Bids().GetByID(ctx, bid.ID)
		if err != nil {
			return err
		}
		if current.Status != next {
			return apperrors.Conflict("bid already resolved")
		}
		return nil
	}

	s.log.WithFields(logrus.Fields{"bid_id": bid.ID, "trip_id": bid.TripID, "status": next}).Info("bid resolved")
	return nil
}

func (s *TripLifecycleService) AcceptBid(ctx context.Context, callerID, bidID string, pickupTime time.Time) (*AcceptResult, error) {
	if bidID == "" {
		return nil, apperrors.Validation("bidId is required")
	}
	if pickupTime.IsZero() {
		return nil, apperrors.Validation("pickupTime is required")
	}

	result, err := s.coordinator.Accept(ctx, bidID, pickupTime, callerID)
	if errors.Is(err, apperrors.ErrFatalInconsistency) {
		// Already logged and alerted by the coordinator; the caller only
		// gets an opaque failure.
		return nil, errors.New("accept bid failed")
	}
	return result, err
}

func (s *TripLifecycleService) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	return s.store.Trips().GetByID(ctx, tripID)
}

// ListTripBids returns every bid on the trip; only its traveler may see them.
func (s *TripLifecycleService) ListTripBids(ctx context.Context, callerID, tripID string) ([]models.DriverBid, error) {
	trip, err := s.store.Trips().GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.TravelerID != callerID {
		return nil, apperrors.Forbidden("only the traveler who posted the trip can list its bids")
	}
	return s.store.Bids().ListByTrip(ctx, tripID)
}

// GetTripBooking is visible to the traveler and to the booked driver.
func (s *TripLifecycleService) GetTripBooking(ctx context.Context, callerID, tripID string) (*models.Booking, error) {
	trip, err := s.store.Trips().GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	booking, err := s.store.Bookings().GetByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.TravelerID != callerID && booking.DriverID != callerID {
		return nil, apperrors.Forbidden("not a party to this booking")
	}
	return booking, nil
}
