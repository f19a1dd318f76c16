package repository

import (
	"context"
	"encoding/json"

	"github.com/campusbridge/jobmarket/internal/dto"
	"github.com/campusbridge/jobmarket/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Job, error)
	List(ctx context.Context, filter dto.JobFilter) ([]model.Job, int64, error)
	Update(ctx context.Context, job *model.Job) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	if err := r.db.WithContext(ctx).
		Preload("Company").
		Where("id = ?", id).
		First(&job).Error; err != nil {
		return nil, err
	}

	return &job, nil
}

func (r *jobRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Job, error) {
	var jobs []model.Job
	if err := r.db.WithContext(ctx).
		Preload("Company").
		Where("id IN ?", ids).
		Find(&jobs).Error; err != nil {
		return nil, err
	}

	// Preserve the caller's ordering (search relevance order).
	byID := make(map[uuid.UUID]model.Job, len(jobs))
	for _, job := range jobs {
		byID[job.ID] = job
	}

	ordered := make([]model.Job, 0, len(jobs))
	for _, id := range ids {
		if job, ok := byID[id]; ok {
			ordered = append(ordered, job)
		}
	}

	return ordered, nil
}

func (r *jobRepository) List(ctx context.Context, filter dto.JobFilter) ([]model.Job, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Job{})

	if filter.Search != "" {
		// Plain pattern match; Meilisearch handles relevance ranking when it
		// is configured, this keeps q working without it.
		pattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.Tag != "" {
		// tags is a jsonb array; containment matches a single tag.
		needle, err := json.Marshal([]string{filter.Tag})
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("tags @> ?", string(needle))
	}
	if filter.PaidOnly {
		query = query.Where("is_paid = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []model.Job
	offset := (filter.Page - 1) * filter.Limit
	if err := query.
		Preload("Company").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(offset).
		Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

func (r *jobRepository) Update(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}
