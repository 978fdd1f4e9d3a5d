package usecases

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/domain/repositories"
	"luxe-estates.backend/pkg/crypto"
)

// ProfileUsecase handles member self-service
type ProfileUsecase struct {
	profileRepo repositories.ProfileRepository
}

// NewProfileUsecase creates a new profile usecase
func NewProfileUsecase(profileRepo repositories.ProfileRepository) *ProfileUsecase {
	return &ProfileUsecase{profileRepo: profileRepo}
}

// Get returns the caller's profile
func (u *ProfileUsecase) Get(ctx context.Context, id uuid.UUID) (*entities.Profile, error) {
	profile, err := u.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("profile not found")
		}
		return nil, err
	}
	return profile, nil
}

// Update applies the self-service fields present in input
func (u *ProfileUsecase) Update(ctx context.Context, id uuid.UUID, input *entities.UpdateProfileInput) (*entities.Profile, error) {
	profile, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, domainerrors.BadRequest("full name cannot be empty")
		}
		profile.FullName = name
	}
	if input.NotificationsEnabled != nil {
		profile.NotificationsEnabled = *input.NotificationsEnabled
	}

	if err := u.profileRepo.UpdateSelf(ctx, profile); err != nil {
		return nil, err
	}
	return u.Get(ctx, id)
}

// ChangePassword verifies the current password before replacing it
func (u *ProfileUsecase) ChangePassword(ctx context.Context, id uuid.UUID, input *entities.ChangePasswordInput) error {
	profile, err := u.Get(ctx, id)
	if err != nil {
		return err
	}
	if profile.PasswordHash == "" {
		return domainerrors.BadRequest("this account signs in with an external provider")
	}
	if !crypto.CheckPassword(input.CurrentPassword, profile.PasswordHash) {
		return domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeUnauthorized, "current password is incorrect", domainerrors.ErrInvalidCredentials)
	}
	if err := crypto.ValidateNewPassword(input.NewPassword, input.ConfirmNewPassword); err != nil {
		return domainerrors.BadRequest(err.Error())
	}

	hash, err := crypto.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	return u.profileRepo.UpdatePassword(ctx, id, hash)
}
