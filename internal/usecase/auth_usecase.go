package usecase

import (
	"context"
	"errors"
	"time"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/apperror"
)

const defaultRole = "user"

type authUsecase struct {
	userRepo domain.UserRepository
}

func NewAuthUsecase(userRepo domain.UserRepository) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo}
}

// EnsureUserExists mirrors the Supabase user into the local users table.
// Idempotent: an existing row only changes when email or role drifted.
func (u *authUsecase) EnsureUserExists(ctx context.Context, user *domain.User) error {
	existing, err := u.userRepo.GetByID(ctx, user.ID)
	if err == nil && existing != nil {
		changed := false
		if user.Email != "" && existing.Email != user.Email {
			existing.Email = user.Email
			changed = true
		}
		if user.Role != "" && existing.Role != user.Role {
			existing.Role = user.Role
			changed = true
		}
		if !changed {
			return nil
		}
		existing.UpdatedAt = time.Now()
		return u.userRepo.Update(ctx, existing)
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if user.Role == "" {
		user.Role = defaultRole
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return u.userRepo.Create(ctx, user)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	if err := requireUser(ctx, id, "view your own account"); err != nil {
		return nil, err
	}

	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}
