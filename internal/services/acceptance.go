package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tripbid/tripbid-backend/internal/apperrors"
	"github.com/tripbid/tripbid-backend/internal/models"
	"github.com/tripbid/tripbid-backend/internal/repository"
)

const bidUnavailableMsg = "this bid is no longer available"

// publishTimeout bounds event delivery once the booking is committed.
var publishTimeout = 2 * time.Second

// errTripHasBooking means a booking for another bid already exists. The trip
// must stay booked in that case.
var errTripHasBooking = apperrors.Conflict("this trip already has a booking")

type AcceptResult struct {
	Bid     *models.DriverBid `json:"bid"`
	Booking *models.Booking   `json:"booking"`
}

type AcceptOptions struct {
	MaxAttempts  int
	RetryBackoff time.Duration
}

// AcceptanceCoordinator turns a pending bid into the trip's only booking.
//
// The trip row is the serialization point: the open -> booked compare-and-set
// admits exactly one Accept per trip. Everything after it runs in a single
// transaction, and if that cannot be completed the trip is handed back to
// open so it is never booked without a booking.
type AcceptanceCoordinator struct {
	store  repository.Store
	events EventPublisher
	log    *logrus.Logger
	opts   AcceptOptions
}

func NewAcceptanceCoordinator(store repository.Store, events EventPublisher, log *logrus.Logger, opts AcceptOptions) *AcceptanceCoordinator {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if events == nil {
		events = NoopPublisher{}
	}
	return &AcceptanceCoordinator{store: store, events: events, log: log, opts: opts}
}

func (c *AcceptanceCoordinator) Accept(ctx context.Context, bidID string, pickupTime time.Time, callerID string) (*AcceptResult, error) {
	log := c.log.WithFields(logrus.Fields{"bid_id": bidID, "caller_id": callerID})

	bid, err := c.store.Bids().GetByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	trip, err := c.store.Trips().GetByID(ctx, bid.TripID)
	if err != nil {
		return nil, err
	}

	// Non-owners get Forbidden whatever state the bid or trip is in.
	if trip.TravelerID != callerID {
		log.WithField("trip_id", trip.ID).Warn("accept attempted by someone other than the traveler")
		return nil, apperrors.Forbidden("only the traveler who posted the trip can accept bids")
	}
	if bid.Status != models.BidStatusPending {
		return nil, apperrors.Conflict(bidUnavailableMsg)
	}
	if trip.Status != models.TripStatusOpen {
		return nil, apperrors.Conflict("trip is no longer open")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log = log.WithField("trip_id", trip.ID)

	// Once the claim is attempted the caller going away must not leave the
	// trip half-booked.
	ctx = context.WithoutCancel(ctx)

	claimed, err := c.store.Trips().CompareAndSetStatus(ctx, trip.ID, models.TripStatusOpen, models.TripStatusBooked)
	if err != nil {
		return nil, err
	}
	if !claimed {
		log.Info("lost acceptance race")
		return nil, apperrors.Conflict(bidUnavailableMsg)
	}

	result, err := c.book(ctx, log, trip, bid, pickupTime)
	if err == nil {
		log.WithFields(logrus.Fields{
			"booking_id":  result.Booking.ID,
			"final_price": result.Booking.FinalPrice,
		}).Info("bid accepted")
		c.publishAccepted(ctx, log, trip, result)
		return result, nil
	}

	if errors.Is(err, errTripHasBooking) {
		log.WithError(err).Warn("trip already had a booking, leaving it booked")
		return nil, apperrors.Conflict(bidUnavailableMsg)
	}

	if rbErr := c.releaseTrip(ctx, trip.ID); rbErr != nil {
		fatal := apperrors.FatalInconsistency("trip booked without a booking", rbErr)
		log.WithFields(logrus.Fields{
			"cause":          err.Error(),
			"rollback_error": rbErr.Error(),
		}).Error("failed to roll back trip claim, manual repair required")
		c.raiseAlert(ctx, log, trip.ID, bid.ID, err, rbErr)
		return nil, fatal
	}

	log.WithError(err).Warn("acceptance rolled back")
	if apperrors.IsRetryable(err) {
		return nil, apperrors.Conflict("the booking could not be completed, please try again")
	}
	return nil, err
}

// book runs the reject-others / accept / create-booking transaction, retrying
// transient failures.
func (c *AcceptanceCoordinator) book(ctx context.Context, log *logrus.Entry, trip *models.Trip, bid *models.DriverBid, pickupTime time.Time) (*AcceptResult, error) {
	var result *AcceptResult
	err := c.retry(log, "book", func() error {
		var err error
		result, err = c.bookOnce(ctx, trip, bid, pickupTime)
		return err
	})
	return result, err
}

func (c *AcceptanceCoordinator) bookOnce(ctx context.Context, trip *models.Trip, bid *models.DriverBid, pickupTime time.Time) (*AcceptResult, error) {
	var result *AcceptResult
	err := c.store.InTx(ctx, func(tx repository.Store) error {
		// A previous attempt may have committed even though it reported an
		// error.
		existing, err := tx.Bookings().GetByTripID(ctx, trip.ID)
		switch {
		case err == nil && existing.DriverBidID == bid.ID:
			accepted, err := tx.Bids().GetByID(ctx, bid.ID)
			if err != nil {
				return err
			}
			result = &AcceptResult{Bid: accepted, Booking: existing}
			return nil
		case err == nil:
			return errTripHasBooking
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}

		if _, err := tx.Bids().BulkSetStatusExcept(ctx, trip.ID, bid.ID, models.BidStatusPending, models.BidStatusRejected); err != nil {
			return err
		}

		ok, err := tx.Bids().CompareAndSetStatus(ctx, bid.ID, models.BidStatusPending, models.BidStatusAccepted)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.Conflict(bidUnavailableMsg)
		}

		booking := &models.Booking{
			TripID:      trip.ID,
			DriverID:    bid.DriverID,
			DriverBidID: bid.ID,
			FinalPrice:  bid.BidAmount,
			PickupTime:  pickupTime,
			Status:      models.BookingStatusConfirmed,
		}
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return err
		}

		accepted, err := tx.Bids().GetByID(ctx, bid.ID)
		if err != nil {
			return err
		}
		result = &AcceptResult{Bid: accepted, Booking: booking}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// releaseTrip is the compensating action for a claimed trip.
func (c *AcceptanceCoordinator) releaseTrip(ctx context.Context, tripID string) error {
	return c.retry(c.log.WithField("trip_id", tripID), "release trip", func() error {
		ok, err := c.store.Trips().CompareAndSetStatus(ctx, tripID, models.TripStatusBooked, models.TripStatusOpen)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("trip was no longer booked")
		}
		return nil
	})
}

func (c *AcceptanceCoordinator) retry(log *logrus.Entry, op string, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !apperrors.IsRetryable(err) || attempt >= c.opts.MaxAttempts {
			return err
		}
		log.WithError(err).WithField("attempt", attempt).Warnf("%s failed, retrying", op)
		time.Sleep(c.opts.RetryBackoff * time.Duration(attempt))
	}
}

func (c *AcceptanceCoordinator) publishAccepted(ctx context.Context, log *logrus.Entry, trip *models.Trip, result *AcceptResult) {
	event := TripEvent{
		Type:       "bid.accepted",
		TripID:     trip.ID,
		BidID:      result.Bid.ID,
		BookingID:  result.Booking.ID,
		DriverID:   result.Bid.DriverID,
		TravelerID: trip.TravelerID,
		Data: map[string]interface{}{
			"finalPrice": result.Booking.FinalPrice,
			"pickupTime": result.Booking.PickupTime,
		},
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := c.events.PublishTripEvent(ctx, event); err != nil {
		log.WithError(err).Warn("failed to publish bid accepted event")
	}
}

func (c *AcceptanceCoordinator) raiseAlert(ctx context.Context, log *logrus.Entry, tripID, bidID string, cause, rbErr error) {
	alert := Alert{
		Severity: "critical",
		Message:  "trip left booked without a booking; set it back to open after checking bids",
		TripID:   tripID,
		BidID:    bidID,
		Cause:    cause.Error() + "; rollback: " + rbErr.Error(),
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := c.events.PublishAlert(ctx, alert); err != nil {
		log.WithError(err).Error("failed to publish ops alert")
	}
}
