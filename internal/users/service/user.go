package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"tourism/internal/access"
	"tourism/internal/auth/password"
	bookingsrepo "tourism/internal/bookings/repository"
	"tourism/internal/search"
	userserrors "tourism/internal/users/errors"
	"tourism/internal/users/repository"
	"tourism/pkg/config"
	apperrors "tourism/pkg/errors"
	httputil "tourism/pkg/http"
	"tourism/pkg/model"
	"tourism/pkg/sanitizer"
	"tourism/pkg/validation"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// BookingHistory is the booking store as seen from a user's account.
type BookingHistory interface {
	FindByUser(ctx context.Context, userID string, status model.BookingStatus, page search.Page) ([]*model.Booking, error)
	CountByUser(ctx context.Context, userID string, status model.BookingStatus) (int64, error)
	HasActive(ctx context.Context, userID string) (bool, error)
	StatsByUser(ctx context.Context, userID string) (*bookingsrepo.UserBookingStats, error)
}

type ReviewCounter interface {
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// Sealer turns a card number into an opaque token bound to its owner.
type Sealer interface {
	Seal(subject string, plaintext []byte) (string, error)
}

type BookingPage struct {
	Bookings   []*model.Booking    `json:"bookings"`
	Pagination httputil.Pagination `json:"pagination"`
	Filters    search.Filters      `json:"filters"`
}

type UserPage struct {
	Users      []*model.User       `json:"users"`
	Pagination httputil.Pagination `json:"pagination"`
}

type UserService interface {
	GetProfile(ctx context.Context, p *model.Principal) (*model.User, error)
	UpdateProfile(ctx context.Context, p *model.Principal, u *model.ProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, p *model.Principal, req *model.PasswordChange) error
	Bookings(ctx context.Context, p *model.Principal, values url.Values) (*BookingPage, error)
	Stats(ctx context.Context, p *model.Principal) (*model.UserStats, error)
	UpdatePreferences(ctx context.Context, p *model.Principal, u *model.PreferencesUpdate) (*model.Preferences, error)
	ListPaymentMethods(ctx context.Context, p *model.Principal) ([]model.PaymentMethod, error)
	AddPaymentMethod(ctx context.Context, p *model.Principal, req *model.PaymentMethodCreate) (*model.PaymentMethod, error)
	RemovePaymentMethod(ctx context.Context, p *model.Principal, methodID string) error
	Delete(ctx context.Context, p *model.Principal) error
	List(ctx context.Context, p *model.Principal, values url.Values) (*UserPage, error)
	SetRole(ctx context.Context, p *model.Principal, userID string, req *model.RoleUpdate) (*model.User, error)
}

type userService struct {
	repo      repository.UserRepository
	bookings  BookingHistory
	reviews   ReviewCounter
	sealer    Sealer
	passwords *password.Hasher
	validator *validation.Validator
	cfg       *config.Config
	now       func() time.Time
}

func NewUserService(
	repo repository.UserRepository,
	bookings BookingHistory,
	reviews ReviewCounter,
	sealer Sealer,
	passwords *password.Hasher,
	v *validation.Validator,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		bookings:  bookings,
		reviews:   reviews,
		sealer:    sealer,
		passwords: passwords,
		validator: v,
		cfg:       cfg,
		now:       time.Now,
	}
}

// current loads the caller's own active account.
func (s *userService) current(ctx context.Context, p *model.Principal) (*model.User, error) {
	if p == nil || p.UserID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	u, err := s.repo.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, s.writeError(p.UserID, "FindByID", err)
	}
	if !u.IsActive {
		return nil, apperrors.NotFoundWithID("User", p.UserID)
	}
	return u, nil
}

func (s *userService) GetProfile(ctx context.Context, p *model.Principal) (*model.User, error) {
	return s.current(ctx, p)
}

func (s *userService) UpdateProfile(ctx context.Context, p *model.Principal, u *model.ProfileUpdate) (*model.User, error) {
	user, err := s.current(ctx, p)
	if err != nil {
		return nil, err
	}

	if u.Phone != nil {
		phone := strings.TrimSpace(*u.Phone)
		if phone != "" {
			phone = sanitizer.NormalizePhone(phone)
			if phone == "" {
				return nil, validation.ToAppError(validation.Field("phone", "phone must be a valid phone number"))
			}
		}
		u.Phone = &phone
	}
	if err := s.validator.Struct(u); err != nil {
		s.cfg.Log.Warn("Profile validation failed", "user_id", user.ID, "error", err)
		return nil, validation.ToAppError(err)
	}

	profile := user.Profile
	if u.FirstName != nil {
		profile.FirstName = sanitizer.NormalizeName(*u.FirstName)
	}
	if u.LastName != nil {
		profile.LastName = sanitizer.NormalizeName(*u.LastName)
	}
	if u.Phone != nil {
		profile.Phone = *u.Phone
	}
	if u.Avatar != nil {
		profile.Avatar = strings.TrimSpace(*u.Avatar)
	}
	if u.Country != nil {
		profile.Country = sanitizer.TrimAndNormalize(*u.Country)
	}

	if err := s.repo.UpdateProfile(ctx, user.ID, profile); err != nil {
		return nil, s.writeError(user.ID, "UpdateProfile", err)
	}

	user.Profile = profile
	s.cfg.Log.Info("Profile updated", "user_id", user.ID)
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, p *model.Principal, req *model.PasswordChange) error {
	if err := s.validator.Struct(req); err != nil {
		return validation.ToAppError(err)
	}

	user, err := s.current(ctx, p)
	if err != nil {
		return err
	}
	if err := s.passwords.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		s.cfg.Log.Warn("Password change rejected", "user_id", user.ID)
		return apperrors.Validation("Current password is incorrect", nil)
	}

	hash, err := s.passwords.Hash(req.NewPassword)
	if err != nil {
		return apperrors.Internal("Failed to change password", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return s.writeError(user.ID, "UpdatePassword", err)
	}

	s.cfg.Log.Info("Password changed", "user_id", user.ID)
	return nil
}

func (s *userService) Bookings(ctx context.Context, p *model.Principal, values url.Values) (*BookingPage, error) {
	if p == nil || p.UserID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	f := search.ParseHistoryParams(values)

	var (
		wg       sync.WaitGroup
		bookings []*model.Booking
		total    int64
		findErr  error
		countErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		bookings, findErr = s.bookings.FindByUser(ctx, p.UserID, f.Status, f.Page)
	}()
	go func() {
		defer wg.Done()
		total, countErr = s.bookings.CountByUser(ctx, p.UserID, f.Status)
	}()
	wg.Wait()

	if err := errors.Join(findErr, countErr); err != nil {
		s.cfg.Log.Error("Failed to load booking history", "user_id", p.UserID, "error", err)
		return nil, apperrors.Internal("Failed to load bookings", err)
	}

	applied := map[string]any{}
	if f.Status != "" {
		applied["status"] = f.Status
	}
	return &BookingPage{
		Bookings:   bookings,
		Pagination: f.Page.Pagination(total),
		Filters:    search.NewFilters(applied, f.Ignored),
	}, nil
}

func (s *userService) Stats(ctx context.Context, p *model.Principal) (*model.UserStats, error) {
	user, err := s.current(ctx, p)
	if err != nil {
		return nil, err
	}

	bookingStats, err := s.bookings.StatsByUser(ctx, user.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to aggregate booking stats", "user_id", user.ID, "error", err)
		return nil, apperrors.Internal("Failed to load stats", err)
	}
	reviews, err := s.reviews.CountByUser(ctx, user.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to count reviews", "user_id", user.ID, "error", err)
		return nil, apperrors.Internal("Failed to load stats", err)
	}

	return &model.UserStats{
		TotalBookings:     bookingStats.Total,
		ByStatus:          bookingStats.ByStatus,
		TotalSpent:        bookingStats.TotalSpent,
		ReviewsWritten:    reviews,
		LoyaltyPoints:     user.Loyalty.Points,
		LoyaltyTier:       model.TierFor(user.Loyalty.Points),
		CompletedStays:    user.Loyalty.CompletedStays,
		UpcomingBookings:  bookingStats.ByStatus[model.BookingPending] + bookingStats.ByStatus[model.BookingConfirmed],
		CompletedBookings: bookingStats.ByStatus[model.BookingCompleted],
	}, nil
}

func (s *userService) UpdatePreferences(ctx context.Context, p *model.Principal, u *model.PreferencesUpdate) (*model.Preferences, error) {
	if u.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*u.Currency))
		u.Currency = &c
	}
	if u.Timezone != nil {
		tz := strings.TrimSpace(*u.Timezone)
		u.Timezone = &tz
	}
	if err := s.validator.Struct(u); err != nil {
		return nil, validation.ToAppError(err)
	}

	user, err := s.current(ctx, p)
	if err != nil {
		return nil, err
	}

	prefs := user.Preferences
	if u.Currency != nil {
		prefs.Currency = *u.Currency
	}
	if u.Language != nil {
		prefs.Language = strings.TrimSpace(*u.Language)
	}
	if u.Timezone != nil {
		prefs.Timezone = *u.Timezone
	}
	if u.Newsletter != nil {
		prefs.Newsletter = *u.Newsletter
	}

	if err := s.repo.UpdatePreferences(ctx, user.ID, prefs); err != nil {
		return nil, s.writeError(user.ID, "UpdatePreferences", err)
	}
	s.cfg.Log.Info("Preferences updated", "user_id", user.ID, "currency", prefs.Currency)
	return &prefs, nil
}

func (s *userService) ListPaymentMethods(ctx context.Context, p *model.Principal) ([]model.PaymentMethod, error) {
	user, err := s.current(ctx, p)
	if err != nil {
		return nil, err
	}
	if user.PaymentMethods == nil {
		return []model.PaymentMethod{}, nil
	}
	return user.PaymentMethods, nil
}

// AddPaymentMethod stores brand, last four digits and a sealed token. The
// first method saved becomes the default.
func (s *userService) AddPaymentMethod(ctx context.Context, p *model.Principal, req *model.PaymentMethodCreate) (*model.PaymentMethod, error) {
	req.CardNumber = digits(req.CardNumber)
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.ToAppError(err)
	}

	now := s.now().UTC()
	if req.ExpYear < now.Year() || (req.ExpYear == now.Year() && req.ExpMonth < int(now.Month())) {
		return nil, validation.ToAppError(validation.Field("expYear", "card has expired"))
	}

	user, err := s.current(ctx, p)
	if err != nil {
		return nil, err
	}

	token, err := s.sealer.Seal(user.ID, []byte(req.CardNumber))
	if err != nil {
		return nil, apperrors.Internal("Failed to store payment method", err)
	}

	method := model.PaymentMethod{
		ID:        uuid.NewString(),
		Brand:     CardBrand(req.CardNumber),
		Last4:     lastFour(req.CardNumber),
		ExpMonth:  req.ExpMonth,
		ExpYear:   req.ExpYear,
		Token:     token,
		IsDefault: req.IsDefault || len(user.PaymentMethods) == 0,
		CreatedAt: now.Truncate(time.Millisecond),
	}

	methods := make([]model.PaymentMethod, 0, len(user.PaymentMethods)+1)
	for _, m := range user.PaymentMethods {
		if method.IsDefault {
			m.IsDefault = false
		}
		methods = append(methods, m)
	}
	methods = append(methods, method)

	if err := s.repo.SetPaymentMethods(ctx, user.ID, methods); err != nil {
		return nil, s.writeError(user.ID, "SetPaymentMethods", err)
	}

	s.cfg.Log.Info("Payment method added", "user_id", user.ID, "method_id", method.ID, "brand", method.Brand)
	return &method, nil
}

func (s *userService) RemovePaymentMethod(ctx context.Context, p *model.Principal, methodID string) error {
	user, err := s.current(ctx, p)
	if err != nil {
		return err
	}

	methods := make([]model.PaymentMethod, 0, len(user.PaymentMethods))
	var removed *model.PaymentMethod
	for _, m := range user.PaymentMethods {
		if m.ID == methodID {
			removed = &m
			continue
		}
		methods = append(methods, m)
	}
	if removed == nil {
		return apperrors.NotFoundWithID("Payment method", methodID)
	}
	if removed.IsDefault && len(methods) > 0 {
		methods[0].IsDefault = true
	}

	if err := s.repo.SetPaymentMethods(ctx, user.ID, methods); err != nil {
		return s.writeError(user.ID, "SetPaymentMethods", err)
	}
	s.cfg.Log.Info("Payment method removed", "user_id", user.ID, "method_id", methodID)
	return nil
}

// Delete deactivates the caller's account. Accounts with pending or
// confirmed bookings cannot be closed.
func (s *userService) Delete(ctx context.Context, p *model.Principal) error {
	user, err := s.current(ctx, p)
	if err != nil {
		return err
	}

	active, err := s.bookings.HasActive(ctx, user.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to check active bookings", "user_id", user.ID, "error", err)
		return apperrors.Internal("Failed to delete account", err)
	}
	if active {
		return apperrors.Conflict("Account has active bookings; cancel or complete them first")
	}

	if err := s.repo.SoftDelete(ctx, user.ID, s.now().UTC().Truncate(time.Millisecond)); err != nil {
		return s.writeError(user.ID, "SoftDelete", err)
	}
	s.cfg.Log.Info("Account deactivated", "user_id", user.ID)
	return nil
}

func (s *userService) List(ctx context.Context, p *model.Principal, values url.Values) (*UserPage, error) {
	if err := access.Check(p, "", model.RoleAdmin); err != nil {
		return nil, err
	}

	f := search.ParseHistoryParams(values)
	filter := bson.M{}
	if role := model.Role(strings.TrimSpace(values.Get("role"))); role.IsValid() {
		filter["role"] = role
	}
	if values.Get("includeInactive") != "true" {
		filter["is_active"] = true
	}

	var (
		wg       sync.WaitGroup
		users    []*model.User
		total    int64
		findErr  error
		countErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		users, findErr = s.repo.List(ctx, filter, f.Page)
	}()
	go func() {
		defer wg.Done()
		total, countErr = s.repo.Count(ctx, filter)
	}()
	wg.Wait()

	if err := errors.Join(findErr, countErr); err != nil {
		s.cfg.Log.Error("Failed to list users", "error", err)
		return nil, apperrors.Internal("Failed to list users", err)
	}
	return &UserPage{Users: users, Pagination: f.Page.Pagination(total)}, nil
}

func (s *userService) SetRole(ctx context.Context, p *model.Principal, userID string, req *model.RoleUpdate) (*model.User, error) {
	if err := access.Check(p, "", model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.ToAppError(err)
	}
	if userID == p.UserID && req.Role != model.RoleAdmin {
		return nil, apperrors.Conflict("Administrators cannot demote themselves")
	}

	if err := s.repo.SetRole(ctx, userID, req.Role); err != nil {
		return nil, s.writeError(userID, "SetRole", err)
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.writeError(userID, "FindByID", err)
	}

	s.cfg.Log.Info("User role changed", "user_id", userID, "role", req.Role, "by", p.UserID)
	return user, nil
}

func (s *userService) writeError(id, op string, err error) error {
	switch {
	case errors.Is(err, userserrors.ErrNotFound):
		return apperrors.NotFoundWithID("User", id)
	case errors.Is(err, userserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid user ID format")
	}
	s.cfg.Log.Error("User store failure", "user_id", id, "operation", op, "error", err)
	return apperrors.Internal("Failed to process user", err)
}
