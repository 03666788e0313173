package service

import (
	"context"
	"errors"
	"strings"

	"tourism/internal/access"
	discountserrors "tourism/internal/discounts/errors"
	"tourism/internal/discounts/repository"
	"tourism/pkg/config"
	apperrors "tourism/pkg/errors"
	"tourism/pkg/model"
	"tourism/pkg/sanitizer"
	"tourism/pkg/validation"
)

type DiscountService interface {
	Create(ctx context.Context, p *model.Principal, d *model.DiscountCode) error
	// Lookup returns the code as stored, without checking whether it applies.
	Lookup(ctx context.Context, code string) (*model.DiscountCode, error)
}

type discountService struct {
	repo      repository.DiscountRepository
	validator *validation.Validator
	cfg       *config.Config
}

func NewDiscountService(
	repo repository.DiscountRepository,
	validator *validation.Validator,
	cfg *config.Config,
) DiscountService {
	return &discountService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *discountService) Create(ctx context.Context, p *model.Principal, d *model.DiscountCode) error {
	if err := access.Check(p, "", model.RoleAdmin); err != nil {
		return err
	}

	d.ID = ""
	d.Code = sanitizer.NormalizeCode(d.Code)
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	d.CreatedBy = p.UserID

	if err := s.validator.Struct(d); err != nil {
		s.cfg.Log.Warn("Discount code validation failed", "code", d.Code, "error", err)
		return validation.ToAppError(err)
	}
	if d.Type == model.DiscountPercentage && d.Value > 100 {
		return validation.ToAppError(validation.Field("value", "value must be at most 100 for percentage codes"))
	}
	if d.ValidFrom != nil && d.ValidUntil != nil && !d.ValidUntil.After(*d.ValidFrom) {
		return validation.ToAppError(validation.Field("validUntil", "validUntil must be after validFrom"))
	}

	if err := s.repo.Create(ctx, d); err != nil {
		if errors.Is(err, discountserrors.ErrDuplicateCode) {
			return apperrors.Conflict("Discount code " + d.Code + " already exists")
		}
		s.cfg.Log.Error("Failed to create discount code", "code", d.Code, "error", err)
		return apperrors.Internal("Failed to create discount code", err)
	}

	s.cfg.Log.Info("Discount code created successfully",
		"id", d.ID,
		"code", d.Code,
		"type", d.Type,
		"created_by", d.CreatedBy,
	)
	return nil
}

func (s *discountService) Lookup(ctx context.Context, code string) (*model.DiscountCode, error) {
	normalized := sanitizer.NormalizeCode(code)
	if normalized == "" {
		return nil, apperrors.InvalidInput("Discount code cannot be empty")
	}

	d, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, discountserrors.ErrNotFound) {
			return nil, apperrors.Validation("Discount code cannot be applied", map[string]any{
				"code":   normalized,
				"reason": "unknown code",
			})
		}
		s.cfg.Log.Error("Failed to look up discount code", "code", normalized, "error", err)
		return nil, apperrors.Internal("Failed to look up discount code", err)
	}
	return d, nil
}
