// Package memory is an in-process implementation of repository.Store. It is
// used by the test suites and by STORE_DRIVER=memory for local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tripbid/tripbid-backend/internal/apperrors"
	"github.com/tripbid/tripbid-backend/internal/models"
	"github.com/tripbid/tripbid-backend/internal/repository"
)

type state struct {
	trips         map[string]models.Trip
	bids          map[string]models.DriverBid
	bookings      map[string]models.Booking
	bookingByTrip map[string]string
}

func newState() *state {
	return &state{
		trips:         make(map[string]models.Trip),
		bids:          make(map[string]models.DriverBid),
		bookings:      make(map[string]models.Booking),
		bookingByTrip: make(map[string]string),
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.trips {
		c.trips[k] = v
	}
	for k, v := range st.bids {
		c.bids[k] = v
	}
	for k, v := range st.bookings {
		c.bookings[k] = v
	}
	for k, v := range st.bookingByTrip {
		c.bookingByTrip[k] = v
	}
	return c
}

// Store guards all tables with a single mutex. InTx holds it for the whole
// callback and restores a snapshot if the callback fails.
type Store struct {
	mu sync.Mutex
	st *state
}

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) Trips() repository.TripRepository       { return tripRepo{view{s: s}} }
func (s *Store) Bids() repository.BidRepository         { return bidRepo{view{s: s}} }
func (s *Store) Bookings() repository.BookingRepository { return bookingRepo{view{s: s}} }

func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(txStore{s: s}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

type txStore struct {
	s *Store
}

func (t txStore) Trips() repository.TripRepository       { return tripRepo{view{s: t.s, inTx: true}} }
func (t txStore) Bids() repository.BidRepository         { return bidRepo{view{s: t.s, inTx: true}} }
func (t txStore) Bookings() repository.BookingRepository { return bookingRepo{view{s: t.s, inTx: true}} }

// InTx on an open transaction joins it.
func (t txStore) InTx(_ context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

// view is a repository handle; inside a transaction the store mutex is
// already held.
type view struct {
	s    *Store
	inTx bool
}

func (v view) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

type tripRepo struct{ view }

func (r tripRepo) Create(_ context.Context, trip *models.Trip) error {
	defer r.lock()()
	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}
	if _, ok := r.s.st.trips[trip.ID]; ok {
		return apperrors.Conflict("trip already exists")
	}
	if trip.Status == "" {
		trip.Status = models.TripStatusOpen
	}
	now := time.Now()
	trip.CreatedAt, trip.UpdatedAt = now, now
	r.s.st.trips[trip.ID] = *trip
	return nil
}

func (r tripRepo) GetByID(_ context.Context, id string) (*models.Trip, error) {
	defer r.lock()()
	trip, ok := r.s.st.trips[id]
	if !ok {
		return nil, apperrors.NotFound("trip not found")
	}
	return &trip, nil
}

func (r tripRepo) CompareAndSetStatus(_ context.Context, id string, expected, next models.TripStatus) (bool, error) {
	defer r.lock()()
	trip, ok := r.s.st.trips[id]
	if !ok || trip.Status != expected {
		return false, nil
	}
	trip.Status = next
	trip.UpdatedAt = time.Now()
	r.s.st.trips[id] = trip
	return true, nil
}

type bidRepo struct{ view }

func (r bidRepo) Create(_ context.Context, bid *models.DriverBid) error {
	defer r.lock()()
	if bid.ID == "" {
		bid.ID = uuid.NewString()
	}
	for _, existing := range r.s.st.bids {
		if existing.TripID == bid.TripID && existing.DriverID == bid.DriverID && existing.Status == models.BidStatusPending {
			return apperrors.Conflict("driver already has a pending bid on this trip")
		}
	}
	bid.Status = models.BidStatusPending
	now := time.Now()
	bid.CreatedAt, bid.UpdatedAt = now, now
	r.s.st.bids[bid.ID] = *bid
	return nil
}

func (r bidRepo) GetByID(_ context.Context, id string) (*models.DriverBid, error) {
	defer r.lock()()
	bid, ok := r.s.st.bids[id]
	if !ok {
		return nil, apperrors.NotFound("bid not found")
	}
	return &bid, nil
}

func (r bidRepo) ListByTrip(_ context.Context, tripID string) ([]models.DriverBid, error) {
	defer r.lock()()
	bids := make([]models.DriverBid, 0)
	for _, bid := range r.s.st.bids {
		if bid.TripID == tripID {
			bids = append(bids, bid)
		}
	}
	sort.Slice(bids, func(i, j int) bool {
		if bids[i].CreatedAt.Equal(bids[j].CreatedAt) {
			return bids[i].ID < bids[j].ID
		}
		return bids[i].CreatedAt.After(bids[j].CreatedAt)
	})
	return bids, nil
}

func (r bidRepo) SetStatus(_ context.Context, id string, status models.BidStatus) error {
	defer r.lock()()
	bid, ok := r.s.st.bids[id]
	if !ok {
		return apperrors.NotFound("bid not found")
	}
	bid.Status = status
	bid.UpdatedAt = time.Now()
	r.s.st.bids[id] = bid
	return nil
}

func (r bidRepo) CompareAndSetStatus(_ context.Context, id string, expected, next models.BidStatus) (bool, error) {
	defer r.lock()()
	bid, ok := r.s.st.bids[id]
	if !ok || bid.Status != expected {
		return false, nil
	}
	bid.Status = next
	bid.UpdatedAt = time.Now()
	r.s.st.bids[id] = bid
	return true, nil
}

func (r bidRepo) BulkSetStatusExcept(_ context.Context, tripID, excludeID string, from, to models.BidStatus) (int64, error) {
	defer r.lock()()
	var n int64
	now := time.Now()
	for id, bid := range r.s.st.bids {
		if bid.TripID != tripID || id == excludeID || bid.Status != from {
			continue
		}
		bid.Status = to
		bid.UpdatedAt = now
		r.s.st.bids[id] = bid
		n++
	}
	return n, nil
}

type bookingRepo struct{ view }

func (r bookingRepo) Create(_ context.Context, booking *models.Booking) error {
	defer r.lock()()
	if _, ok := r.s.st.bookingByTrip[booking.TripID]; ok {
		return apperrors.Conflict("booking for this trip already exists")
	}
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusConfirmed
	}
	now := time.Now()
	booking.CreatedAt, booking.UpdatedAt = now, now
	r.s.st.bookings[booking.ID] = *booking
	r.s.st.bookingByTrip[booking.TripID] = booking.ID
	return nil
}

func (r bookingRepo) GetByTripID(_ context.Context, tripID string) (*models.Booking, error) {
	defer r.lock()()
	id, ok := r.s.st.bookingByTrip[tripID]
	if !ok {
		return nil, apperrors.NotFound("booking not found")
	}
	booking := r.s.st.bookings[id]
	return &booking, nil
}

// CountBookings returns how many bookings exist for tripID.
func (s *Store) CountBookings(tripID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.st.bookings {
		if b.TripID == tripID {
			n++
		}
	}
	return n
}
