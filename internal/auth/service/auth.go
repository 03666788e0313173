package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"tourism/internal/auth/password"
	userserrors "tourism/internal/users/errors"
	"tourism/internal/users/repository"
	"tourism/pkg/config"
	apperrors "tourism/pkg/errors"
	"tourism/pkg/locale"
	"tourism/pkg/model"
	"tourism/pkg/sanitizer"
	"tourism/pkg/validation"
)

const invalidCredentials = "Invalid credentials"

type TokenIssuer interface {
	Issue(userID, role string) (string, time.Time, error)
}

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
}

type authService struct {
	users     repository.UserRepository
	passwords *password.Hasher
	tokens    TokenIssuer
	validator *validation.Validator
	cfg       *config.Config
	// decoy stands in for the stored hash when the email is unknown.
	decoy string
}

func NewAuthService(
	users repository.UserRepository,
	passwords *password.Hasher,
	tokens TokenIssuer,
	v *validation.Validator,
	cfg *config.Config,
) AuthService {
	decoy, err := passwords.Hash("decoy-password-never-matches")
	if err != nil {
		cfg.Log.Fatal("Failed to prepare password hasher", "error", err)
	}
	return &authService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		validator: v,
		cfg:       cfg,
		decoy:     decoy,
	}
}

func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.FirstName = sanitizer.NormalizeName(req.FirstName)
	req.LastName = sanitizer.NormalizeName(req.LastName)
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		req.Phone = sanitizer.NormalizePhone(phone)
		if req.Phone == "" {
			return nil, validation.ToAppError(validation.Field("phone", "phone must be a valid phone number"))
		}
	}

	if err := s.validator.Struct(req); err != nil {
		s.cfg.Log.Warn("Registration validation failed", "email", req.Email, "error", err)
		return nil, validation.ToAppError(err)
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal("Failed to register", err)
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleCustomer,
		Profile: model.Profile{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		},
		Preferences: model.Preferences{
			Currency: locale.InferCurrencyFromPhone(req.Phone, s.cfg.DefaultCurrency),
			Language: locale.InferLanguageFromPhone(req.Phone),
			Timezone: locale.InferTimezoneFromPhone(req.Phone),
		},
		Loyalty:  model.Loyalty{Tier: model.TierBronze},
		IsActive: true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			s.cfg.Log.Warn("Registration with existing email", "email", req.Email)
			return nil, apperrors.Conflict("Email is already registered")
		}
		s.cfg.Log.Error("Failed to create user", "email", req.Email, "error", err)
		return nil, apperrors.Internal("Failed to register", err)
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.cfg.Log.Info("User registered", "user_id", user.ID, "currency", user.Preferences.Currency)
	return resp, nil
}

// Login reports the same error for an unknown email, a wrong password and a
// deactivated account.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.ToAppError(err)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, userserrors.ErrNotFound):
		_ = s.passwords.Compare(s.decoy, req.Password)
		s.cfg.Log.Warn("Login failed", "email", req.Email, "reason", "unknown email")
		return nil, apperrors.Validation(invalidCredentials, nil)
	case err != nil:
		s.cfg.Log.Error("Failed to load user for login", "email", req.Email, "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	if err := s.passwords.Compare(user.PasswordHash, req.Password); err != nil {
		s.cfg.Log.Warn("Login failed", "user_id", user.ID, "reason", "password mismatch")
		return nil, apperrors.Validation(invalidCredentials, nil)
	}
	if !user.IsActive {
		s.cfg.Log.Warn("Login failed", "user_id", user.ID, "reason", "account deactivated")
		return nil, apperrors.Validation(invalidCredentials, nil)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		s.cfg.Log.Warn("Failed to record login time", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.cfg.Log.Info("User logged in", "user_id", user.ID)
	return resp, nil
}

func (s *authService) issue(user *model.User) (*model.AuthResponse, error) {
	signed, expiresAt, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		s.cfg.Log.Error("Failed to issue token", "user_id", user.ID, "error", err)
		return nil, apperrors.Internal("Failed to issue token", err)
	}
	return &model.AuthResponse{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}
