package repository

import (
	"context"

	"github.com/campusbridge/jobmarket/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationRepository interface {
	// Create inserts the application and returns gorm.ErrDuplicatedKey when
	// the (job, student) pair already exists.
	Create(ctx context.Context, application *model.Application) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Application, error)
	FindByJobAndStudent(ctx context.Context, jobID, studentUserID uuid.UUID) (*model.Application, error)
	ListByStudent(ctx context.Context, studentUserID uuid.UUID) ([]model.Application, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]model.Application, error)
	// UpdateStatusOwned updates the status only when the application's job
	// belongs to a company owned by ownerUserID. Returns the number of rows
	// changed; zero means the caller does not own the application's job.
	UpdateStatusOwned(ctx context.Context, id uuid.UUID, status string, ownerUserID uuid.UUID) (int64, error)
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, application *model.Application) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *applicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var application model.Application
	if err := r.db.WithContext(ctx).
		Preload("Job").
		Where("id = ?", id).
		First(&application).Error; err != nil {
		return nil, err
	}

	return &application, nil
}

func (r *applicationRepository) FindByJobAndStudent(ctx context.Context, jobID, studentUserID uuid.UUID) (*model.Application, error) {
	var application model.Application
	if err := r.db.WithContext(ctx).
		Where("job_id = ? AND student_user_id = ?", jobID, studentUserID).
		First(&application).Error; err != nil {
		return nil, err
	}

	return &application, nil
}

func (r *applicationRepository) ListByStudent(ctx context.Context, studentUserID uuid.UUID) ([]model.Application, error) {
	var applications []model.Application
	if err := r.db.WithContext(ctx).
		Preload("Job").
		Preload("Job.Company").
		Where("student_user_id = ?", studentUserID).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		return nil, err
	}

	return applications, nil
}

func (r *applicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]model.Application, error) {
	var applications []model.Application
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Student.Profile").
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		return nil, err
	}

	return applications, nil
}

func (r *applicationRepository) UpdateStatusOwned(ctx context.Context, id uuid.UUID, status string, ownerUserID uuid.UUID) (int64, error) {
	ownedJobs := r.db.
		Table("jobs").
		Select("jobs.id").
		Joins("JOIN companies ON companies.id = jobs.company_id").
		Where("companies.owner_user_id = ?", ownerUserID)

	result := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("id = ? AND job_id IN (?)", id, ownedJobs).
		Update("status", status)

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
