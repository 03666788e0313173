package service

import (
	"context"
	"errors"

	userserrors "tourism/internal/users/errors"
	"tourism/internal/users/repository"
	"tourism/pkg/middleware"
	"tourism/pkg/model"
)

// AccountLookup reads the stored role and active flag of a token subject.
func AccountLookup(repo repository.UserRepository) middleware.AccountLookup {
	return func(ctx context.Context, userID string) (model.Role, bool, error) {
		u, err := repo.FindByID(ctx, userID)
		if errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID) {
			return "", false, middleware.ErrAccountNotFound
		}
		if err != nil {
			return "", false, err
		}
		return u.Role, u.IsActive && u.DeletedAt == nil, nil
	}
}
