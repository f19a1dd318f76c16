package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusbridge/jobmarket/internal/dto"
	"github.com/campusbridge/jobmarket/internal/model"
	"github.com/campusbridge/jobmarket/internal/repository"
	"github.com/campusbridge/jobmarket/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const applySubmitAction = "apply_submit"

type ApplicationService interface {
	Submit(ctx context.Context, studentUserID, jobID uuid.UUID, input dto.SubmitApplicationRequest) (*model.Application, error)
	UpdateStatus(ctx context.Context, employerUserID, applicationID uuid.UUID, status string) (*model.Application, error)
	ListMine(ctx context.Context, studentUserID uuid.UUID) ([]model.Application, error)
	ListForJob(ctx context.Context, employerUserID, jobID uuid.UUID) ([]model.Application, error)
}

type applicationService struct {
	repo           repository.ApplicationRepository
	jobs           repository.JobRepository
	notifications  NotificationService
	redisClient    *redis.Client
	submitCooldown time.Duration
}

func NewApplicationService(repo repository.ApplicationRepository, jobs repository.JobRepository, notifications NotificationService, redisClient *redis.Client, submitCooldown time.Duration) ApplicationService {
	return &applicationService{
		repo:           repo,
		jobs:           jobs,
		notifications:  notifications,
		redisClient:    redisClient,
		submitCooldown: submitCooldown,
	}
}

// Submit inserts the application with status "submitted". The check for an
// existing application gives a friendly error on resubmission; the unique
// index on (job_id, student_user_id) is what actually prevents duplicates
// when two submissions race past the check.
func (s *applicationService) Submit(ctx context.Context, studentUserID, jobID uuid.UUID, input dto.SubmitApplicationRequest) (*model.Application, error) {
	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, studentUserID, applySubmitAction, s.submitCooldown)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperror.Wrap(apperror.ErrRateLimitExceeded, "please wait before submitting again")
	}

	// Roll the lock back when the submission fails, so a corrected retry is
	// not stuck behind the cooldown.
	submitFailed := true
	defer func() {
		if submitFailed {
			_ = ClearRateLimit(ctx, s.redisClient, studentUserID, applySubmitAction)
		}
	}()

	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "job not found")
		}
		return nil, err
	}

	if _, err := s.repo.FindByJobAndStudent(ctx, jobID, studentUserID); err == nil {
		return nil, apperror.Wrap(apperror.ErrConflict, "already applied")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	application := &model.Application{
		JobID:         jobID,
		StudentUserID: studentUserID,
		Note:          input.Note,
		ContactEmail:  input.ContactEmail,
		ContactPhone:  input.ContactPhone,
		Status:        model.ApplicationStatusSubmitted,
	}

	if err := s.repo.Create(ctx, application); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Wrap(apperror.ErrConflict, "already applied")
		}
		return nil, err
	}

	submitFailed = false
	s.notifyEmployer(ctx, job, application)

	return application, nil
}

// UpdateStatus applies an employer's decision. The row update is scoped to
// jobs owned by the caller's company; zero affected rows means the caller
// does not own the application's job and is a permission denial, never a
// silent success.
func (s *applicationService) UpdateStatus(ctx context.Context, employerUserID, applicationID uuid.UUID, status string) (*model.Application, error) {
	application, err := s.repo.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "application not found")
		}
		return nil, err
	}

	if !isAllowedTransition(application.Status, status) {
		return nil, apperror.Wrap(apperror.ErrInvalidInput,
			fmt.Sprintf("cannot change status from %s to %s", application.Status, status))
	}

	rows, err := s.repo.UpdateStatusOwned(ctx, applicationID, status, employerUserID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperror.Wrap(apperror.ErrForbidden, "you can only review applications for your own jobs")
	}

	application.Status = status
	s.notifyStudent(ctx, application, employerUserID)

	return application, nil
}

func (s *applicationService) ListMine(ctx context.Context, studentUserID uuid.UUID) ([]model.Application, error) {
	return s.repo.ListByStudent(ctx, studentUserID)
}

func (s *applicationService) ListForJob(ctx context.Context, employerUserID, jobID uuid.UUID) ([]model.Application, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "job not found")
		}
		return nil, err
	}

	if job.Company == nil || job.Company.OwnerUserID != employerUserID {
		return nil, apperror.Wrap(apperror.ErrForbidden, "you can only view applications for your own jobs")
	}

	return s.repo.ListByJob(ctx, jobID)
}

// Status moves out of submitted exactly once; afterwards the employer may
// still flip between accepted and rejected.
func isAllowedTransition(from, to string) bool {
	if to != model.ApplicationStatusAccepted && to != model.ApplicationStatusRejected {
		return false
	}

	switch from {
	case model.ApplicationStatusSubmitted:
		return true
	case model.ApplicationStatusAccepted, model.ApplicationStatusRejected:
		return to != from
	default:
		return false
	}
}

func (s *applicationService) notifyEmployer(ctx context.Context, job *model.Job, application *model.Application) {
	if s.notifications == nil || job.Company == nil {
		return
	}

	notification := &model.Notification{
		UserID:     job.Company.OwnerUserID,
		ActorID:    application.StudentUserID,
		EntityID:   application.ID,
		EntityType: "application",
		Type:       model.NotificationApplicationReceived,
		Message:    fmt.Sprintf("New application for %s", job.Title),
	}
	_ = s.notifications.CreateNotification(ctx, notification)
}

func (s *applicationService) notifyStudent(ctx context.Context, application *model.Application, employerUserID uuid.UUID) {
	if s.notifications == nil {
		return
	}

	notification := &model.Notification{
		UserID:     application.StudentUserID,
		ActorID:    employerUserID,
		EntityID:   application.ID,
		EntityType: "application",
		Type:       model.NotificationApplicationUpdated,
		Message:    fmt.Sprintf("Your application was %s", application.Status),
	}
	_ = s.notifications.CreateNotification(ctx, notification)
}
