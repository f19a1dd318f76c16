package service

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/campusbridge/jobmarket/internal/dto"
	"github.com/campusbridge/jobmarket/internal/model"
	"github.com/campusbridge/jobmarket/internal/repository"
	"github.com/campusbridge/jobmarket/pkg/apperror"
	"github.com/campusbridge/jobmarket/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobImage is an uploaded image attached to a job posting.
type JobImage struct {
	Reader   io.Reader
	FileName string
}

type JobService interface {
	Create(ctx context.Context, ownerUserID uuid.UUID, input dto.CreateJobRequest) (*model.Job, error)
	Update(ctx context.Context, ownerUserID, jobID uuid.UUID, input dto.UpdateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	List(ctx context.Context, filter dto.JobFilter) (*dto.PaginatedJobResponse, error)
	AddImages(ctx context.Context, ownerUserID, jobID uuid.UUID, images []JobImage) (*model.Job, error)
	RemoveImage(ctx context.Context, ownerUserID, jobID uuid.UUID, imageURL string) (*model.Job, error)
}

type jobService struct {
	repo         repository.JobRepository
	companies    repository.CompanyRepository
	search       JobSearchService
	imageStorage storage.ImageStorage
	uploadFolder string
}

func NewJobService(repo repository.JobRepository, companies repository.CompanyRepository, search JobSearchService, imageStorage storage.ImageStorage, uploadFolder string) JobService {
	return &jobService{
		repo:         repo,
		companies:    companies,
		search:       search,
		imageStorage: imageStorage,
		uploadFolder: uploadFolder,
	}
}

func (s *jobService) Create(ctx context.Context, ownerUserID uuid.UUID, input dto.CreateJobRequest) (*model.Job, error) {
	company, err := s.companies.FindByOwner(ctx, ownerUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrBadRequest, "create a company before posting jobs")
		}
		return nil, err
	}

	job := &model.Job{
		CompanyID:     company.ID,
		Title:         input.Title,
		Description:   input.Description,
		Tags:          input.Tags,
		IsPaid:        input.IsPaid,
		StipendAmount: input.StipendAmount,
	}
	if !job.IsPaid {
		job.StipendAmount = 0
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}

	job.Company = company
	s.indexJob(job)

	return job, nil
}

func (s *jobService) Update(ctx context.Context, ownerUserID, jobID uuid.UUID, input dto.UpdateJobRequest) (*model.Job, error) {
	job, err := s.ownedJob(ctx, ownerUserID, jobID)
	if err != nil {
		return nil, err
	}

	job.Title = input.Title
	job.Description = input.Description
	job.Tags = input.Tags
	job.IsPaid = input.IsPaid
	job.StipendAmount = input.StipendAmount
	if !job.IsPaid {
		job.StipendAmount = 0
	}

	if err := s.repo.Update(ctx, job); err != nil {
		return nil, err
	}

	s.indexJob(job)

	return job, nil
}

func (s *jobService) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	return job, nil
}

func (s *jobService) List(ctx context.Context, filter dto.JobFilter) (*dto.PaginatedJobResponse, error) {
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 10
	}

	if filter.Search != "" && s.search != nil {
		return s.listBySearch(ctx, filter)
	}

	jobs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return paginatedJobs(jobs, total, filter), nil
}

func (s *jobService) listBySearch(ctx context.Context, filter dto.JobFilter) (*dto.PaginatedJobResponse, error) {
	idStrs, total, err := s.search.SearchJobs(filter.Search, filter.PaidOnly, filter.Tag, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(idStrs))
	for _, idStr := range idStrs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	jobs, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return paginatedJobs(jobs, total, filter), nil
}

func (s *jobService) AddImages(ctx context.Context, ownerUserID, jobID uuid.UUID, images []JobImage) (*model.Job, error) {
	if s.imageStorage == nil {
		return nil, apperror.Wrap(apperror.ErrInternal, "image storage is not configured")
	}

	job, err := s.ownedJob(ctx, ownerUserID, jobID)
	if err != nil {
		return nil, err
	}

	for _, image := range images {
		url, err := s.imageStorage.UploadImage(ctx, image.Reader, s.uploadFolder, image.FileName)
		if err != nil {
			return nil, err
		}
		job.Images = append(job.Images, url)
	}

	if err := s.repo.Update(ctx, job); err != nil {
		return nil, err
	}

	return job, nil
}

func (s *jobService) RemoveImage(ctx context.Context, ownerUserID, jobID uuid.UUID, imageURL string) (*model.Job, error) {
	job, err := s.ownedJob(ctx, ownerUserID, jobID)
	if err != nil {
		return nil, err
	}

	found := false
	kept := job.Images[:0]
	for _, url := range job.Images {
		if url == imageURL {
			found = true
			continue
		}
		kept = append(kept, url)
	}
	if !found {
		return nil, apperror.Wrap(apperror.ErrNotFound, "image not found on this job")
	}
	job.Images = kept

	if err := s.repo.Update(ctx, job); err != nil {
		return nil, err
	}

	// The row no longer references the blob; removal from storage is best
	// effort.
	if s.imageStorage != nil {
		if err := s.imageStorage.DeleteImage(ctx, imageURL); err != nil {
			log.Printf("Failed to delete image %s: %v", imageURL, err)
		}
	}

	return job, nil
}

func (s *jobService) ownedJob(ctx context.Context, ownerUserID, jobID uuid.UUID) (*model.Job, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if job.Company == nil || job.Company.OwnerUserID != ownerUserID {
		return nil, apperror.Wrap(apperror.ErrForbidden, "you can only manage your own company's jobs")
	}

	return job, nil
}

func (s *jobService) indexJob(job *model.Job) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexJob(job); err != nil {
		log.Printf("Failed to index job %s: %v", job.ID, err)
	}
}

func paginatedJobs(jobs []model.Job, total int64, filter dto.JobFilter) *dto.PaginatedJobResponse {
	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))

	return &dto.PaginatedJobResponse{
		Data: jobs,
		Meta: dto.PaginationMeta{
			CurrentPage: filter.Page,
			TotalPages:  totalPages,
			TotalItems:  total,
			Limit:       filter.Limit,
		},
	}
}
