package shared

import (
	"context"

	appErrors "Fluxo/internal/errors"

	"github.com/oklog/ulid/v2"
)

type UserCheckerService struct {
	users UserChecker
}

func NewUserCheckerService(users UserChecker) *UserCheckerService {
	return &UserCheckerService{users: users}
}

func (s *UserCheckerService) EnsureUserExists(ctx context.Context, userID ulid.ULID) error {
	if s == nil || s.users == nil {
		return appErrors.ErrInternalServer
	}

	if err := s.users.Exists(ctx, userID); err != nil {
		return appErrors.ErrUserNotFound.WithError(err)
	}

	return nil
}

type BaseService struct {
	UserChecker *UserCheckerService
}

func (b *BaseService) EnsureUserExists(ctx context.Context, userID ulid.ULID) error {
	if b.UserChecker == nil {
		return appErrors.ErrInternalServer
	}
	return b.UserChecker.EnsureUserExists(ctx, userID)
}
