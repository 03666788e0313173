package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	bookingserrors "tourism/internal/bookings/errors"
	"tourism/internal/bookings/repository"
	"tourism/internal/events"
	"tourism/internal/search"
	mongotx "tourism/pkg/db/mongo"
	"tourism/pkg/model"
)

// memoryBookings applies the same preconditions as the mongo repository.
type memoryBookings struct {
	mu        sync.Mutex
	items     map[string]*model.Booking
	nextID    int
	createErr error
	awardErr  error
}

func newMemoryBookings() *memoryBookings {
	return &memoryBookings{items: map[string]*model.Booking{}}
}

func (m *memoryBookings) put(b *model.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.items[b.ID] = &cp
}

func (m *memoryBookings) get(id string) *model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id]
}

func (m *memoryBookings) Create(_ context.Context, b *model.Booking) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	b.ID = fmt.Sprintf("65f1c0a2b3c4d5e6f7a8%04d", m.nextID)
	cp := *b
	m.items[b.ID] = &cp
	return nil
}

func (m *memoryBookings) FindByID(_ context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	cp := *b
	return &cp, nil
}

func (m *memoryBookings) FindByUser(context.Context, string, model.BookingStatus, search.Page) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *memoryBookings) CountByUser(context.Context, string, model.BookingStatus) (int64, error) {
	return 0, nil
}

func (m *memoryBookings) HasActive(context.Context, string) (bool, error) {
	return false, nil
}

func (m *memoryBookings) StatsByUser(context.Context, string) (*repository.UserBookingStats, error) {
	return &repository.UserBookingStats{}, nil
}

func (m *memoryBookings) Transition(_ context.Context, id string, t repository.Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	if b.Status != t.Change.From {
		return fmt.Errorf("%w: %s", bookingserrors.ErrStaleState, id)
	}
	b.Status = t.Change.To
	b.StatusHistory = append(b.StatusHistory, t.Change)
	return nil
}

func (m *memoryBookings) RecordCheckIn(_ context.Context, id string, rec model.StayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.items[id]
	if b.Status != model.BookingConfirmed || b.CheckInRecord != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrStaleState, id)
	}
	b.CheckInRecord = &rec
	return nil
}

func (m *memoryBookings) UpdatePayment(_ context.Context, id string, prev, next model.Payment, tx model.PaymentTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.items[id]
	if b.Payment.Status != prev.Status || b.Payment.PaidAmount != prev.PaidAmount {
		return fmt.Errorf("%w: %s", bookingserrors.ErrStaleState, id)
	}
	next.Transactions = append(b.Payment.Transactions, tx)
	b.Payment = next
	return nil
}

func (m *memoryBookings) LinkReview(context.Context, string, string) error   { return nil }
func (m *memoryBookings) UnlinkReview(context.Context, string, string) error { return nil }

// ExecuteTransaction runs fn without a session; fakes ignore the context.
func (m *memoryBookings) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type memoryLocks struct {
	mu       sync.Mutex
	held     map[string]bool
	released []string
}

func newMemoryLocks() *memoryLocks {
	return &memoryLocks{held: map[string]bool{}}
}

func (l *memoryLocks) Acquire(_ context.Context, key string, ttl time.Duration) (*model.BookingLock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrLockHeld, key)
	}
	l.held[key] = true
	return &model.BookingLock{ID: key}, nil
}

func (l *memoryLocks) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	l.released = append(l.released, key)
	return nil
}

type fakeInventory struct {
	mu       sync.Mutex
	reserved map[string]int
	slot     int
	seats    map[model.FareClass]int
	released int
}

func (f *fakeInventory) ReservedRooms(context.Context, string, time.Time, time.Time) (map[string]int, error) {
	return f.reserved, nil
}

func (f *fakeInventory) SlotGuests(context.Context, string, time.Time) (int, error) {
	return f.slot, nil
}

func (f *fakeInventory) ReserveSeats(_ context.Context, _ string, class model.FareClass, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seats[class] < n {
		return fmt.Errorf("%w: %s", bookingserrors.ErrSeatsUnavailable, class)
	}
	f.seats[class] -= n
	return nil
}

func (f *fakeInventory) ReleaseSeats(_ context.Context, _ string, class model.FareClass, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seats[class] += n
	f.released += n
	return nil
}

type fakeCatalog struct {
	property *model.Property
	flight   *model.Flight
	service  *model.Service
}

func (c *fakeCatalog) Property(_ context.Context, id string) (*model.Property, error) {
	if c.property == nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrResourceNotFound, id)
	}
	return c.property, nil
}

func (c *fakeCatalog) Flight(_ context.Context, id string) (*model.Flight, error) {
	if c.flight == nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrResourceNotFound, id)
	}
	return c.flight, nil
}

func (c *fakeCatalog) Service(_ context.Context, id string) (*model.Service, error) {
	if c.service == nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrResourceNotFound, id)
	}
	return c.service, nil
}

type fakeLoyalty struct {
	awarded map[string]int
	err     error
}

func (f *fakeLoyalty) AwardStay(_ context.Context, userID string, points int) (*model.Loyalty, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.awarded == nil {
		f.awarded = map[string]int{}
	}
	f.awarded[userID] += points
	return &model.Loyalty{Points: f.awarded[userID], Tier: model.TierFor(f.awarded[userID])}, nil
}

type discountTable map[string]*model.DiscountCode

func (d discountTable) Lookup(_ context.Context, code string) (*model.DiscountCode, error) {
	return d[code], nil
}

type recordedEvent struct {
	Type  string
	Event events.BookingEvent
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingPublisher) PublishBooking(_ context.Context, eventType string, e events.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Type: eventType, Event: e})
	return nil
}

func (r *recordingPublisher) PublishReview(context.Context, string, events.ReviewEvent) error {
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
