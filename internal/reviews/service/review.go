package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"tourism/internal/access"
	bookingserrors "tourism/internal/bookings/errors"
	"tourism/internal/events"
	propertieserrors "tourism/internal/properties/errors"
	"tourism/internal/ratings"
	ratingservice "tourism/internal/ratings/service"
	reviewserrors "tourism/internal/reviews/errors"
	"tourism/internal/reviews/repository"
	"tourism/internal/reviews/validator"
	"tourism/internal/search"
	"tourism/pkg/config"
	apperrors "tourism/pkg/errors"
	httputil "tourism/pkg/http"
	"tourism/pkg/metrics"
	"tourism/pkg/model"
	"tourism/pkg/validation"
)

// BookingLookup is the part of the booking store reviews depend on.
type BookingLookup interface {
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	LinkReview(ctx context.Context, id, reviewID string) error
	UnlinkReview(ctx context.Context, id, reviewID string) error
}

// PropertyLookup resolves the owner of a reviewed property.
type PropertyLookup interface {
	FindByID(ctx context.Context, id string) (*model.Property, error)
}

type ReviewList struct {
	Reviews    []*model.Review     `json:"reviews"`
	Pagination httputil.Pagination `json:"pagination"`
	Stats      ratings.Stats       `json:"stats"`
}

type HelpfulResult struct {
	Helpful      bool `json:"helpful"`
	HelpfulCount int  `json:"helpfulCount"`
}

type ReviewService interface {
	Create(ctx context.Context, p *model.Principal, req *model.ReviewCreate) (*model.Review, error)
	Update(ctx context.Context, p *model.Principal, id string, u *model.ReviewUpdate) (*model.Review, error)
	Delete(ctx context.Context, p *model.Principal, id string) error
	ToggleHelpful(ctx context.Context, p *model.Principal, id string) (*HelpfulResult, error)
	Respond(ctx context.Context, p *model.Principal, id string, req *model.HostResponseCreate) (*model.Review, error)
	ListByProperty(ctx context.Context, propertyID string, values url.Values) (*ReviewList, error)
}

type reviewService struct {
	repo       repository.ReviewRepository
	bookings   BookingLookup
	properties PropertyLookup
	ratings    ratingservice.RatingService
	validator  *validator.ReviewValidator
	publisher  events.Publisher
	metrics    *metrics.Metrics
	cfg        *config.Config
}

func NewReviewService(
	repo repository.ReviewRepository,
	bookings BookingLookup,
	properties PropertyLookup,
	ratingSvc ratingservice.RatingService,
	v *validator.ReviewValidator,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
) ReviewService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &reviewService{
		repo:       repo,
		bookings:   bookings,
		properties: properties,
		ratings:    ratingSvc,
		validator:  v,
		publisher:  publisher,
		metrics:    m,
		cfg:        cfg,
	}
}

// Create accepts one review per completed booking, written by the guest who
// made it.
func (s *reviewService) Create(ctx context.Context, p *model.Principal, req *model.ReviewCreate) (*model.Review, error) {
	if p == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Comment = strings.TrimSpace(req.Comment)
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Review validation failed", "user_id", p.UserID, "booking_id", req.BookingID, "error", err)
		return nil, validation.ToAppError(err)
	}

	b, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Booking", req.BookingID)
		}
		s.cfg.Log.Error("Failed to load booking for review", "booking_id", req.BookingID, "error", err)
		return nil, apperrors.Internal("Failed to create review", err)
	}

	if b.UserID != p.UserID {
		s.cfg.Log.Warn("Review rejected for foreign booking", "user_id", p.UserID, "booking_id", b.ID)
		return nil, apperrors.Forbidden("Only the guest who made the booking can review it")
	}
	if b.ResourceType != model.ResourceProperty || b.ResourceID != req.PropertyID {
		return nil, validation.ToAppError(validation.Field("propertyId", "booking is not for this property"))
	}
	if b.Status != model.BookingCompleted {
		return nil, apperrors.Validation("Only completed stays can be reviewed", map[string]any{"status": b.Status})
	}
	if b.ReviewID != "" {
		return nil, apperrors.Conflict("Booking has already been reviewed")
	}

	review := &model.Review{
		PropertyID:   req.PropertyID,
		BookingID:    req.BookingID,
		UserID:       p.UserID,
		Ratings:      req.Ratings,
		Rating:       req.Rating,
		Title:        req.Title,
		Comment:      req.Comment,
		HelpfulVotes: []string{},
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, reviewserrors.ErrDuplicate) {
			return nil, apperrors.Conflict("Booking has already been reviewed")
		}
		s.cfg.Log.Error("Failed to create review", "booking_id", req.BookingID, "error", err)
		return nil, apperrors.Internal("Failed to create review", err)
	}

	if err := s.bookings.LinkReview(ctx, b.ID, review.ID); err != nil {
		s.cfg.Log.Error("Failed to link review to booking", "booking_id", b.ID, "review_id", review.ID, "error", err)
	}

	s.metrics.ReviewsSubmitted.Inc()
	s.afterWrite(ctx, events.ReviewCreated, review)
	s.cfg.Log.Info("Review created",
		"id", review.ID,
		"property_id", review.PropertyID,
		"booking_id", review.BookingID,
		"rating", review.Rating,
	)
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, p *model.Principal, id string, u *model.ReviewUpdate) (*model.Review, error) {
	if err := s.validator.ValidateUpdate(u); err != nil {
		return nil, validation.ToAppError(err)
	}

	review, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Self(p, review.UserID); err != nil {
		s.cfg.Log.Warn("Review update rejected", "id", id, "user_id", principalID(p), "error", err)
		return nil, err
	}

	if u.Ratings != nil {
		review.Ratings = *u.Ratings
	}
	if u.Rating != nil {
		review.Rating = *u.Rating
	}
	if u.Title != nil {
		review.Title = strings.TrimSpace(*u.Title)
	}
	if u.Comment != nil {
		review.Comment = strings.TrimSpace(*u.Comment)
	}
	if err := s.validator.ValidateReview(review); err != nil {
		return nil, validation.ToAppError(err)
	}

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, s.writeError(id, "Update", err)
	}

	s.afterWrite(ctx, events.ReviewUpdated, review)
	s.cfg.Log.Info("Review updated", "id", id, "property_id", review.PropertyID, "rating", review.Rating)
	return review, nil
}

// Delete is allowed to the author and admins. The booking becomes reviewable
// again.
func (s *reviewService) Delete(ctx context.Context, p *model.Principal, id string) error {
	review, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Owner(p, review.UserID); err != nil {
		s.cfg.Log.Warn("Review deletion rejected", "id", id, "user_id", principalID(p), "error", err)
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.writeError(id, "Delete", err)
	}
	if err := s.bookings.UnlinkReview(ctx, review.BookingID, id); err != nil {
		s.cfg.Log.Error("Failed to unlink review from booking", "booking_id", review.BookingID, "review_id", id, "error", err)
	}

	s.afterWrite(ctx, events.ReviewDeleted, review)
	s.cfg.Log.Info("Review deleted", "id", id, "property_id", review.PropertyID, "by", principalID(p))
	return nil
}

// ToggleHelpful adds the caller's vote when absent and removes it otherwise.
func (s *reviewService) ToggleHelpful(ctx context.Context, p *model.Principal, id string) (*HelpfulResult, error) {
	if p == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	review, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID == p.UserID {
		return nil, apperrors.Validation("You cannot vote on your own review", nil)
	}

	voted := review.HasHelpfulVote(p.UserID)
	if voted {
		_, err = s.repo.RemoveHelpfulVote(ctx, id, p.UserID)
	} else {
		_, err = s.repo.AddHelpfulVote(ctx, id, p.UserID)
	}
	if err != nil {
		return nil, s.writeError(id, "ToggleHelpful", err)
	}

	// Either update applied, or a concurrent one already reached the same
	// state. The stored counter is authoritative either way.
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	result := &HelpfulResult{Helpful: current.HasHelpfulVote(p.UserID), HelpfulCount: current.HelpfulCount}

	s.cfg.Log.Info("Helpful vote toggled", "id", id, "user_id", p.UserID, "helpful", result.Helpful)
	return result, nil
}

// Respond sets or replaces the host's public reply.
func (s *reviewService) Respond(ctx context.Context, p *model.Principal, id string, req *model.HostResponseCreate) (*model.Review, error) {
	req.Comment = strings.TrimSpace(req.Comment)
	if err := s.validator.ValidateResponse(req); err != nil {
		return nil, validation.ToAppError(err)
	}

	review, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	prop, err := s.properties.FindByID(ctx, review.PropertyID)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) || errors.Is(err, propertieserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Property", review.PropertyID)
		}
		s.cfg.Log.Error("Failed to load reviewed property", "property_id", review.PropertyID, "error", err)
		return nil, apperrors.Internal("Failed to respond to review", err)
	}
	if err := access.Check(p, prop.OwnerID, model.RoleAdmin); err != nil {
		s.cfg.Log.Warn("Host response rejected", "id", id, "user_id", principalID(p), "error", err)
		return nil, err
	}

	resp := model.HostResponse{
		Comment:     req.Comment,
		RespondedAt: s.now(),
		RespondedBy: p.UserID,
	}
	if err := s.repo.SetHostResponse(ctx, id, resp); err != nil {
		return nil, s.writeError(id, "Respond", err)
	}

	review.HostResponse = &resp
	review.UpdatedAt = resp.RespondedAt
	s.cfg.Log.Info("Host responded to review", "id", id, "property_id", review.PropertyID, "by", p.UserID)
	return review, nil
}

func (s *reviewService) ListByProperty(ctx context.Context, propertyID string, values url.Values) (*ReviewList, error) {
	f := search.ParseReviewParams(values)

	var (
		wg       sync.WaitGroup
		reviews  []*model.Review
		total    int64
		stats    ratings.Stats
		findErr  error
		countErr error
		statsErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		reviews, findErr = s.repo.FindByProperty(ctx, propertyID, search.ReviewSort(f.Sort), f.Page)
	}()
	go func() {
		defer wg.Done()
		total, countErr = s.repo.CountByProperty(ctx, propertyID)
	}()
	go func() {
		defer wg.Done()
		stats, statsErr = s.ratings.Stats(ctx, propertyID)
	}()
	wg.Wait()

	if err := errors.Join(findErr, countErr); err != nil {
		s.cfg.Log.Error("Failed to list reviews", "property_id", propertyID, "error", err)
		return nil, apperrors.Internal("Failed to list reviews", err)
	}
	if statsErr != nil {
		return nil, statsErr
	}

	return &ReviewList{
		Reviews:    reviews,
		Pagination: f.Page.Pagination(total),
		Stats:      stats,
	}, nil
}

// afterWrite brings the property rating up to date and announces the change.
// A failed recompute is only logged: the ratings worker converges it from
// the event.
func (s *reviewService) afterWrite(ctx context.Context, eventType string, review *model.Review) {
	if _, err := s.ratings.Recompute(ctx, review.PropertyID, ratingservice.SourceReview); err != nil {
		s.cfg.Log.Warn("Synchronous rating recompute failed", "property_id", review.PropertyID, "error", err)
	}
	if err := s.publisher.PublishReview(ctx, eventType, events.NewReviewEvent(review)); err != nil {
		s.cfg.Log.Warn("Failed to publish review event", "type", eventType, "review_id", review.ID, "error", err)
	}
}

func (s *reviewService) find(ctx context.Context, id string) (*model.Review, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.writeError(id, "FindByID", err)
	}
	return review, nil
}

func (s *reviewService) writeError(id, op string, err error) error {
	switch {
	case errors.Is(err, reviewserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Review", id)
	case errors.Is(err, reviewserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid review ID format")
	}
	s.cfg.Log.Error("Review store failure", "id", id, "operation", op, "error", err)
	return apperrors.Internal("Failed to process review", err)
}

func (s *reviewService) now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func principalID(p *model.Principal) string {
	if p == nil {
		return ""
	}
	return p.UserID
}
