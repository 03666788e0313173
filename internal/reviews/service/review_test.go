package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	bookingserrors "tourism/internal/bookings/errors"
	"tourism/internal/events"
	propertieserrors "tourism/internal/properties/errors"
	"tourism/internal/ratings"
	reviewserrors "tourism/internal/reviews/errors"
	"tourism/internal/reviews/validator"
	"tourism/internal/search"
	"tourism/pkg/config"
	apperrors "tourism/pkg/errors"
	"tourism/pkg/logger"
	"tourism/pkg/metrics"
	"tourism/pkg/model"
	"tourism/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	guestID    = "65f1c0a2b3c4d5e6f7a8b9a1"
	hostID     = "65f1c0a2b3c4d5e6f7a8b9c0"
	otherID    = "65f1c0a2b3c4d5e6f7a8b9ff"
	propertyID = "65f1c0a2b3c4d5e6f7a8b9d0"
	bookingID  = "65f1c0a2b3c4d5e6f7a8b9b0"
	reviewID   = "65f1c0a2b3c4d5e6f7a8b9e0"
)

var (
	guest = &model.Principal{UserID: guestID, Role: model.RoleCustomer}
	host  = &model.Principal{UserID: hostID, Role: model.RoleHost}
	other = &model.Principal{UserID: otherID, Role: model.RoleCustomer}
)

type memoryReviews struct {
	items map[string]*model.Review
}

func (m *memoryReviews) Create(_ context.Context, r *model.Review) error {
	for _, existing := range m.items {
		if existing.BookingID == r.BookingID {
			return fmt.Errorf("%w: %s", reviewserrors.ErrDuplicate, r.BookingID)
		}
	}
	r.ID = reviewID
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *memoryReviews) FindByID(_ context.Context, id string) (*model.Review, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", reviewserrors.ErrNotFound, id)
	}
	cp := *r
	cp.HelpfulVotes = append([]string{}, r.HelpfulVotes...)
	return &cp, nil
}

func (m *memoryReviews) FindByProperty(_ context.Context, propertyID string, _ bson.D, _ search.Page) ([]*model.Review, error) {
	out := []*model.Review{}
	for _, r := range m.items {
		if r.PropertyID == propertyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryReviews) CountByProperty(ctx context.Context, propertyID string) (int64, error) {
	list, _ := m.FindByProperty(ctx, propertyID, nil, search.Page{})
	return int64(len(list)), nil
}

func (m *memoryReviews) CountByUser(context.Context, string) (int64, error) { return 0, nil }

func (m *memoryReviews) Update(_ context.Context, r *model.Review) error {
	if _, ok := m.items[r.ID]; !ok {
		return fmt.Errorf("%w: %s", reviewserrors.ErrNotFound, r.ID)
	}
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *memoryReviews) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("%w: %s", reviewserrors.ErrNotFound, id)
	}
	delete(m.items, id)
	return nil
}

func (m *memoryReviews) AddHelpfulVote(_ context.Context, id, userID string) (bool, error) {
	r := m.items[id]
	if r.HasHelpfulVote(userID) {
		return false, nil
	}
	r.HelpfulVotes = append(r.HelpfulVotes, userID)
	r.HelpfulCount++
	return true, nil
}

func (m *memoryReviews) RemoveHelpfulVote(_ context.Context, id, userID string) (bool, error) {
	r := m.items[id]
	for i, v := range r.HelpfulVotes {
		if v == userID {
			r.HelpfulVotes = append(r.HelpfulVotes[:i], r.HelpfulVotes[i+1:]...)
			r.HelpfulCount--
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryReviews) SetHostResponse(_ context.Context, id string, resp model.HostResponse) error {
	r, ok := m.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", reviewserrors.ErrNotFound, id)
	}
	r.HostResponse = &resp
	return nil
}

type fakeBookings struct {
	items    map[string]*model.Booking
	linked   map[string]string
	unlinked []string
}

func (f *fakeBookings) FindByID(_ context.Context, id string) (*model.Booking, error) {
	b, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) LinkReview(_ context.Context, id, reviewID string) error {
	f.linked[id] = reviewID
	f.items[id].ReviewID = reviewID
	return nil
}

func (f *fakeBookings) UnlinkReview(_ context.Context, id, reviewID string) error {
	f.unlinked = append(f.unlinked, id)
	f.items[id].ReviewID = ""
	return nil
}

type fakeProperties struct {
	property *model.Property
}

func (f *fakeProperties) FindByID(_ context.Context, id string) (*model.Property, error) {
	if f.property == nil {
		return nil, fmt.Errorf("%w: %s", propertieserrors.ErrNotFound, id)
	}
	return f.property, nil
}

type fakeRatings struct {
	recomputed []string
	err        error
}

func (f *fakeRatings) Recompute(_ context.Context, propertyID, source string) (ratings.Stats, error) {
	f.recomputed = append(f.recomputed, propertyID)
	return ratings.Stats{}, f.err
}

func (f *fakeRatings) Stats(context.Context, string) (ratings.Stats, error) {
	return ratings.Stats{Average: 4.5, Count: 2}, nil
}

type reviewEvents struct {
	types []string
}

func (r *reviewEvents) PublishBooking(context.Context, string, events.BookingEvent) error { return nil }
func (r *reviewEvents) PublishReview(_ context.Context, eventType string, _ events.ReviewEvent) error {
	r.types = append(r.types, eventType)
	return nil
}
func (r *reviewEvents) Close() error { return nil }

type fixture struct {
	svc       ReviewService
	reviews   *memoryReviews
	bookings  *fakeBookings
	ratings   *fakeRatings
	publisher *reviewEvents
}

func newFixture() *fixture {
	log := logger.Discard()
	cfg := &config.Config{Log: log, ReadTimeout: time.Second, WriteTimeout: time.Second}

	f := &fixture{
		reviews: &memoryReviews{items: map[string]*model.Review{}},
		bookings: &fakeBookings{
			items: map[string]*model.Booking{
				bookingID: {
					ID:           bookingID,
					UserID:       guestID,
					ResourceType: model.ResourceProperty,
					ResourceID:   propertyID,
					Status:       model.BookingCompleted,
				},
			},
			linked: map[string]string{},
		},
		ratings:   &fakeRatings{},
		publisher: &reviewEvents{},
	}
	f.svc = NewReviewService(
		f.reviews,
		f.bookings,
		&fakeProperties{property: &model.Property{ID: propertyID, OwnerID: hostID}},
		f.ratings,
		validator.NewReviewValidator(validation.New(log)),
		f.publisher,
		metrics.NewMetrics("test"),
		cfg,
	)
	return f
}

func reviewRequest() *model.ReviewCreate {
	return &model.ReviewCreate{
		PropertyID: propertyID,
		BookingID:  bookingID,
		Ratings:    model.ReviewRatings{Cleanliness: 5, Accuracy: 4, CheckIn: 5, Communication: 5, Location: 4, Value: 4},
		Rating:     5,
		Title:      "  Great base  ",
		Comment:    "Spotless and a short walk to the old town.",
	}
}

func TestCreate(t *testing.T) {
	f := newFixture()

	review, err := f.svc.Create(context.Background(), guest, reviewRequest())
	require.NoError(t, err)

	assert.Equal(t, reviewID, review.ID)
	assert.Equal(t, guestID, review.UserID)
	assert.Equal(t, "Great base", review.Title)
	assert.Equal(t, reviewID, f.bookings.linked[bookingID])
	assert.Equal(t, []string{propertyID}, f.ratings.recomputed)
	assert.Equal(t, []string{events.ReviewCreated}, f.publisher.types)

	_, err = f.svc.Create(context.Background(), guest, reviewRequest())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "second review of a booking")
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		p      *model.Principal
		mutate func(f *fixture, req *model.ReviewCreate)
		code   string
	}{
		{"anonymous", nil, func(*fixture, *model.ReviewCreate) {}, apperrors.CodeUnauthorized},
		{"invalid payload", guest, func(_ *fixture, req *model.ReviewCreate) { req.Rating = 0 }, apperrors.CodeValidation},
		{"unknown booking", guest, func(_ *fixture, req *model.ReviewCreate) { req.BookingID = otherID }, apperrors.CodeNotFound},
		{"someone else's booking", other, func(*fixture, *model.ReviewCreate) {}, apperrors.CodeForbidden},
		{"different property", guest, func(_ *fixture, req *model.ReviewCreate) { req.PropertyID = otherID }, apperrors.CodeValidation},
		{"stay not completed", guest, func(f *fixture, _ *model.ReviewCreate) {
			f.bookings.items[bookingID].Status = model.BookingConfirmed
		}, apperrors.CodeValidation},
		{"flight booking", guest, func(f *fixture, _ *model.ReviewCreate) {
			f.bookings.items[bookingID].ResourceType = model.ResourceFlight
		}, apperrors.CodeValidation},
		{"already linked", guest, func(f *fixture, _ *model.ReviewCreate) {
			f.bookings.items[bookingID].ReviewID = reviewID
		}, apperrors.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := reviewRequest()
			tt.mutate(f, req)

			_, err := f.svc.Create(context.Background(), tt.p, req)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
			assert.Empty(t, f.reviews.items)
			assert.Empty(t, f.publisher.types)
		})
	}
}

func TestCreate_RecomputeFailureStillSucceeds(t *testing.T) {
	f := newFixture()
	f.ratings.err = apperrors.Internal("Failed to store rating", errors.New("timeout"))

	_, err := f.svc.Create(context.Background(), guest, reviewRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{events.ReviewCreated}, f.publisher.types)
}

func TestUpdate(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), guest, reviewRequest())
	require.NoError(t, err)

	rating := 3
	comment := "Noisy at night, otherwise fine."
	updated, err := f.svc.Update(context.Background(), guest, reviewID, &model.ReviewUpdate{Rating: &rating, Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Rating)
	assert.Equal(t, comment, updated.Comment)
	assert.Equal(t, 5, updated.Ratings.Cleanliness)
	assert.Len(t, f.ratings.recomputed, 2)

	_, err = f.svc.Update(context.Background(), other, reviewID, &model.ReviewUpdate{Rating: &rating})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	short := "bad"
	_, err = f.svc.Update(context.Background(), guest, reviewID, &model.ReviewUpdate{Comment: &short})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestDelete(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), guest, reviewRequest())
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), other, reviewID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	require.NoError(t, f.svc.Delete(context.Background(), guest, reviewID))
	assert.Empty(t, f.reviews.items)
	assert.Equal(t, []string{bookingID}, f.bookings.unlinked)
	assert.Equal(t, []string{events.ReviewCreated, events.ReviewDeleted}, f.publisher.types)

	_, err = f.svc.Create(context.Background(), guest, reviewRequest())
	assert.NoError(t, err, "booking is reviewable again after deletion")
}

func TestToggleHelpful(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), guest, reviewRequest())
	require.NoError(t, err)

	_, err = f.svc.ToggleHelpful(context.Background(), guest, reviewID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "author cannot vote")

	res, err := f.svc.ToggleHelpful(context.Background(), other, reviewID)
	require.NoError(t, err)
	assert.Equal(t, &HelpfulResult{Helpful: true, HelpfulCount: 1}, res)

	res, err = f.svc.ToggleHelpful(context.Background(), host, reviewID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.HelpfulCount)

	res, err = f.svc.ToggleHelpful(context.Background(), other, reviewID)
	require.NoError(t, err)
	assert.Equal(t, &HelpfulResult{Helpful: false, HelpfulCount: 1}, res)
}

func TestRespond(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), guest, reviewRequest())
	require.NoError(t, err)

	_, err = f.svc.Respond(context.Background(), other, reviewID, &model.HostResponseCreate{Comment: "Thanks!"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	review, err := f.svc.Respond(context.Background(), host, reviewID, &model.HostResponseCreate{Comment: "  Thanks for staying!  "})
	require.NoError(t, err)
	require.NotNil(t, review.HostResponse)
	assert.Equal(t, "Thanks for staying!", review.HostResponse.Comment)
	assert.Equal(t, hostID, review.HostResponse.RespondedBy)
}

func TestListByProperty(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), guest, reviewRequest())
	require.NoError(t, err)

	list, err := f.svc.ListByProperty(context.Background(), propertyID, url.Values{"limit": {"10"}})
	require.NoError(t, err)
	assert.Len(t, list.Reviews, 1)
	assert.Equal(t, int64(1), list.Pagination.Total)
	assert.Equal(t, 1, list.Pagination.Pages)
	assert.Equal(t, 4.5, list.Stats.Average)
}

func TestFind_Errors(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ToggleHelpful(context.Background(), other, reviewID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	err = f.svc.Delete(context.Background(), other, reviewID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
