package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tripbid/tripbid-backend/internal/apperrors"
	"github.com/tripbid/tripbid-backend/internal/models"
	"github.com/tripbid/tripbid-backend/internal/repository"
	"github.com/tripbid/tripbid-backend/internal/repository/memory"
	"github.com/tripbid/tripbid-backend/pkg/logger"
)

const (
	travelerID = "traveler-1"
	driverA    = "driver-a"
	driverB    = "driver-b"
	driverC    = "driver-c"
)

var errDiskFull = errors.New("disk full")

func transientErr() error {
	return apperrors.Transient("create booking", errors.New("connection reset by peer"))
}

// recordingPublisher keeps everything it was asked to publish.
type recordingPublisher struct {
	mu     sync.Mutex
	events []TripEvent
	alerts []Alert
}

func (p *recordingPublisher) PublishTripEvent(_ context.Context, e TripEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) PublishAlert(_ context.Context, a Alert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, a)
	return nil
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []string
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

func (p *recordingPublisher) alertCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.alerts)
}

// faults drives faultyStore. Error queues are consumed one per call.
type faults struct {
	mu                 sync.Mutex
	bookingCreateErrs  []error
	releaseErrs        []error
	commitErrs         []error
	bookingCreateCalls int

	afterClaim        func()
	beforeBookingSave func()
	afterBidCreate    func(bid *models.DriverBid)
}

func (f *faults) pop(queue *[]error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(*queue) == 0 {
		return nil
	}
	err := (*queue)[0]
	*queue = (*queue)[1:]
	return err
}

// faultyStore wraps a real store and injects failures at chosen points.
type faultyStore struct {
	repository.Store
	f *faults
}

func (s *faultyStore) Trips() repository.TripRepository {
	return &faultyTrips{TripRepository: s.Store.Trips(), f: s.f}
}

func (s *faultyStore) Bids() repository.BidRepository {
	return &faultyBids{BidRepository: s.Store.Bids(), f: s.f}
}

func (s *faultyStore) Bookings() repository.BookingRepository {
	return &faultyBookings{BookingRepository: s.Store.Bookings(), f: s.f}
}

func (s *faultyStore) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	err := s.Store.InTx(ctx, func(tx repository.Store) error {
		return fn(&faultyStore{Store: tx, f: s.f})
	})
	if err != nil {
		return err
	}
	return s.f.pop(&s.f.commitErrs)
}

type faultyTrips struct {
	repository.TripRepository
	f *faults
}

func (r *faultyTrips) CompareAndSetStatus(ctx context.Context, id string, expected, next models.TripStatus) (bool, error) {
	if expected == models.TripStatusBooked && next == models.TripStatusOpen {
		if err := r.f.pop(&r.f.releaseErrs); err != nil {
			return false, err
		}
	}
	ok, err := r.TripRepository.CompareAndSetStatus(ctx, id, expected, next)
	if ok && next == models.TripStatusBooked && r.f.afterClaim != nil {
		r.f.afterClaim()
	}
	return ok, err
}

type faultyBids struct {
	repository.BidRepository
	f *faults
}

func (r *faultyBids) Create(ctx context.Context, bid *models.DriverBid) error {
	if err := r.BidRepository.Create(ctx, bid); err != nil {
		return err
	}
	if r.f.afterBidCreate != nil {
		r.f.afterBidCreate(bid)
	}
	return nil
}

type faultyBookings struct {
	repository.BookingRepository
	f *faults
}

func (r *faultyBookings) Create(ctx context.Context, booking *models.Booking) error {
	r.f.mu.Lock()
	r.f.bookingCreateCalls++
	r.f.mu.Unlock()
	if r.f.beforeBookingSave != nil {
		r.f.beforeBookingSave()
	}
	if err := r.f.pop(&r.f.bookingCreateErrs); err != nil {
		return err
	}
	return r.BookingRepository.Create(ctx, booking)
}

type testEnv struct {
	t      *testing.T
	ctx    context.Context
	mem    *memory.Store
	faults *faults
	events *recordingPublisher
	coord  *AcceptanceCoordinator
	svc    *TripLifecycleService
	trip   *models.Trip
	bidA   *models.DriverBid
	bidB   *models.DriverBid
	pickup time.Time
}

// newTestEnv seeds an open trip with two pending bids: A at 420 and B at 450.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		t:      t,
		ctx:    context.Background(),
		mem:    memory.New(),
		faults: &faults{},
		events: &recordingPublisher{},
		pickup: time.Date(2024, 12, 15, 14, 0, 0, 0, time.UTC),
	}
	store := &faultyStore{Store: env.mem, f: env.faults}
	log := logger.Discard()
	env.coord = NewAcceptanceCoordinator(store, env.events, log, AcceptOptions{
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
	})
	env.svc = NewTripLifecycleService(store, env.coord, env.events, log)

	trip, err := env.svc.CreateTrip(env.ctx, travelerID, CreateTripInput{
		Origin:         "Lisbon",
		OriginLat:      38.7223,
		OriginLng:      -9.1393,
		Destination:    "Porto",
		DestinationLat: 41.1579,
		DestinationLng: -8.6291,
		DepartureDate:  time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC),
		SeatsNeeded:    2,
		MaxPrice:       500,
	})
	require.NoError(t, err)
	env.trip = trip
	env.bidA = env.submit(driverA, 420)
	env.bidB = env.submit(driverB, 450)
	return env
}

func (e *testEnv) submit(driverID string, amount float64) *models.DriverBid {
	e.t.Helper()
	bid, err := e.svc.SubmitBid(e.ctx, driverID, SubmitBidInput{
		TripID:       e.trip.ID,
		BidAmount:    amount,
		VehicleType:  "sedan",
		LicensePlate: "AA-00-" + driverID,
	})
	require.NoError(e.t, err)
	return bid
}

func (e *testEnv) bidStatus(id string) models.BidStatus {
	e.t.Helper()
	bid, err := e.mem.Bids().GetByID(e.ctx, id)
	require.NoError(e.t, err)
	return bid.Status
}

func (e *testEnv) tripStatus() models.TripStatus {
	e.t.Helper()
	trip, err := e.mem.Trips().GetByID(e.ctx, e.trip.ID)
	require.NoError(e.t, err)
	return trip.Status
}

func (e *testEnv) bookings() int {
	return e.mem.CountBookings(e.trip.ID)
}
