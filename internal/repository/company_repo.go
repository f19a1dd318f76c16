package repository

import (
	"context"

	"github.com/campusbridge/jobmarket/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*model.Company, error)
	Update(ctx context.Context, company *model.Company) error
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var company model.Company
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&company).Error; err != nil {
		return nil, err
	}

	return &company, nil
}

func (r *companyRepository) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*model.Company, error) {
	var company model.Company
	if err := r.db.WithContext(ctx).Where("owner_user_id = ?", ownerUserID).First(&company).Error; err != nil {
		return nil, err
	}

	return &company, nil
}

func (r *companyRepository) Update(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}
