package service

import (
	"context"
	"errors"

	"github.com/campusbridge/jobmarket/internal/dto"
	"github.com/campusbridge/jobmarket/internal/model"
	"github.com/campusbridge/jobmarket/internal/repository"
	"github.com/campusbridge/jobmarket/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileService interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.User, error)
	Update(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileRequest) (*model.Profile, error)
}

type profileService struct {
	repo repository.UserRepository
}

func NewProfileService(repo repository.UserRepository) ProfileService {
	return &profileService{repo: repo}
}

func (s *profileService) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *profileService) Update(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileRequest) (*model.Profile, error) {
	user, err := s.repo.FindByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	profile := user.Profile
	if profile == nil {
		profile = &model.Profile{UserID: user.ID}
	}

	profile.FullName = input.FullName
	profile.Bio = normalizeOptional(input.Bio)
	profile.Interests = input.Interests
	profile.Phone = normalizeOptional(input.Phone)

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}
