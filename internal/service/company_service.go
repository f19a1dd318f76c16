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

type CompanyService interface {
	Create(ctx context.Context, ownerUserID uuid.UUID, input dto.CreateCompanyRequest) (*model.Company, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*model.Company, error)
	Update(ctx context.Context, ownerUserID, companyID uuid.UUID, input dto.UpdateCompanyRequest) (*model.Company, error)
}

type companyService struct {
	repo repository.CompanyRepository
}

func NewCompanyService(repo repository.CompanyRepository) CompanyService {
	return &companyService{repo: repo}
}

func (s *companyService) Create(ctx context.Context, ownerUserID uuid.UUID, input dto.CreateCompanyRequest) (*model.Company, error) {
	company := &model.Company{
		OwnerUserID:  ownerUserID,
		Name:         input.Name,
		Description:  input.Description,
		Location:     input.Location,
		ContactEmail: input.ContactEmail,
		ContactPhone: input.ContactPhone,
	}

	if err := s.repo.Create(ctx, company); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Wrap(apperror.ErrConflict, "you already have a company")
		}
		return nil, err
	}

	return company, nil
}

func (s *companyService) GetByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	return company, nil
}

func (s *companyService) GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*model.Company, error) {
	company, err := s.repo.FindByOwner(ctx, ownerUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	return company, nil
}

func (s *companyService) Update(ctx context.Context, ownerUserID, companyID uuid.UUID, input dto.UpdateCompanyRequest) (*model.Company, error) {
	company, err := s.repo.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if company.OwnerUserID != ownerUserID {
		return nil, apperror.Wrap(apperror.ErrForbidden, "you can only update your own company")
	}

	company.Name = input.Name
	company.Description = input.Description
	company.Location = input.Location
	company.ContactEmail = input.ContactEmail
	company.ContactPhone = input.ContactPhone

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}

	return company, nil
}
