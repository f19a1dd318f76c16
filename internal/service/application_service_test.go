package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/campusbridge/jobmarket/internal/dto"
	"github.com/campusbridge/jobmarket/internal/model"
	"github.com/campusbridge/jobmarket/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeApplicationRepo struct {
	mu           sync.Mutex
	applications map[uuid.UUID]*model.Application
	jobs         *fakeJobRepo
}

func newFakeApplicationRepo(jobs *fakeJobRepo) *fakeApplicationRepo {
	return &fakeApplicationRepo{
		applications: make(map[uuid.UUID]*model.Application),
		jobs:         jobs,
	}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, application *model.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.applications {
		if existing.JobID == application.JobID && existing.StudentUserID == application.StudentUserID {
			return gorm.ErrDuplicatedKey
		}
	}

	if application.ID == uuid.Nil {
		application.ID = uuid.New()
	}
	stored := *application
	r.applications[application.ID] = &stored
	return nil
}

func (r *fakeApplicationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	application, ok := r.applications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *application
	return &copied, nil
}

func (r *fakeApplicationRepo) FindByJobAndStudent(ctx context.Context, jobID, studentUserID uuid.UUID) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, application := range r.applications {
		if application.JobID == jobID && application.StudentUserID == studentUserID {
			copied := *application
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeApplicationRepo) ListByStudent(ctx context.Context, studentUserID uuid.UUID) ([]model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.Application
	for _, application := range r.applications {
		if application.StudentUserID == studentUserID {
			out = append(out, *application)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.Application
	for _, application := range r.applications {
		if application.JobID == jobID {
			out = append(out, *application)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) UpdateStatusOwned(ctx context.Context, id uuid.UUID, status string, ownerUserID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	application, ok := r.applications[id]
	if !ok {
		return 0, nil
	}

	job, err := r.jobs.FindByID(ctx, application.JobID)
	if err != nil {
		return 0, nil
	}
	if job.Company == nil || job.Company.OwnerUserID != ownerUserID {
		return 0, nil
	}

	application.Status = status
	return 1, nil
}

type fakeJobRepo struct {
	mu         sync.Mutex
	jobs       map[uuid.UUID]*model.Job
	lastFilter dto.JobFilter
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*model.Job)}
}

func (r *fakeJobRepo) add(job *model.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
}

func (r *fakeJobRepo) findLocked(id uuid.UUID) (*model.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return job, nil
}

func (r *fakeJobRepo) Create(ctx context.Context, job *model.Job) error {
	r.add(job)
	return nil
}

func (r *fakeJobRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(id)
}

func (r *fakeJobRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.Job
	for _, id := range ids {
		if job, ok := r.jobs[id]; ok {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) List(ctx context.Context, filter dto.JobFilter) ([]model.Job, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastFilter = filter

	var out []model.Job
	for _, job := range r.jobs {
		out = append(out, *job)
	}
	return out, int64(len(out)), nil
}

func (r *fakeJobRepo) Update(ctx context.Context, job *model.Job) error {
	r.add(job)
	return nil
}

type fakeNotificationService struct {
	mu      sync.Mutex
	created []model.Notification
}

func (s *fakeNotificationService) CreateNotification(ctx context.Context, notification *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, *notification)
	return nil
}

func (s *fakeNotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	return nil, nil
}

func (s *fakeNotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return nil
}

func (s *fakeNotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (s *fakeNotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func newTestJob(ownerUserID uuid.UUID) *model.Job {
	companyID := uuid.New()
	return &model.Job{
		ID:        uuid.New(),
		CompanyID: companyID,
		Company: &model.Company{
			ID:          companyID,
			OwnerUserID: ownerUserID,
			Name:        "Acme Robotics",
		},
		Title: "Lab Assistant",
	}
}

func newApplicationFixture(t *testing.T) (*fakeApplicationRepo, *fakeJobRepo, *fakeNotificationService, ApplicationService) {
	t.Helper()

	jobs := newFakeJobRepo()
	apps := newFakeApplicationRepo(jobs)
	notifications := &fakeNotificationService{}
	svc := NewApplicationService(apps, jobs, notifications, nil, 0)

	return apps, jobs, notifications, svc
}

func TestSubmitCreatesSubmittedApplication(t *testing.T) {
	_, jobs, notifications, svc := newApplicationFixture(t)

	owner := uuid.New()
	student := uuid.New()
	job := newTestJob(owner)
	jobs.add(job)

	application, err := svc.Submit(context.Background(), student, job.ID, dto.SubmitApplicationRequest{
		Note:         "I would love to help",
		ContactEmail: "student@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ApplicationStatusSubmitted, application.Status)
	assert.Equal(t, student, application.StudentUserID)
	assert.Equal(t, job.ID, application.JobID)

	// The owning employer is notified about the new application.
	require.Len(t, notifications.created, 1)
	assert.Equal(t, owner, notifications.created[0].UserID)
	assert.Equal(t, model.NotificationApplicationReceived, notifications.created[0].Type)
}

func TestSubmitTwiceIsRejectedAsAlreadyApplied(t *testing.T) {
	_, jobs, _, svc := newApplicationFixture(t)

	owner := uuid.New()
	student := uuid.New()
	job := newTestJob(owner)
	jobs.add(job)

	_, err := svc.Submit(context.Background(), student, job.ID, dto.SubmitApplicationRequest{ContactEmail: "s@example.com"})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), student, job.ID, dto.SubmitApplicationRequest{ContactEmail: "s@example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
	assert.Contains(t, err.Error(), "already applied")
}

func TestSubmitDuplicateKeyFromRacingInsertIsConflict(t *testing.T) {
	apps, jobs, _, svc := newApplicationFixture(t)

	owner := uuid.New()
	student := uuid.New()
	job := newTestJob(owner)
	jobs.add(job)

	// Simulate the second racer: the row appears after the existence check
	// would have passed, so the insert itself reports the duplicate.
	racing := &model.Application{
		JobID:         job.ID,
		StudentUserID: student,
		Status:        model.ApplicationStatusSubmitted,
	}
	require.NoError(t, apps.Create(context.Background(), racing))

	_, err := svc.Submit(context.Background(), student, job.ID, dto.SubmitApplicationRequest{ContactEmail: "s@example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestSubmitUnknownJobIsNotFound(t *testing.T) {
	_, _, _, svc := newApplicationFixture(t)

	_, err := svc.Submit(context.Background(), uuid.New(), uuid.New(), dto.SubmitApplicationRequest{ContactEmail: "s@example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUpdateStatusByOwnerAcceptsAndNotifiesStudent(t *testing.T) {
	_, jobs, notifications, svc := newApplicationFixture(t)

	owner := uuid.New()
	student := uuid.New()
	job := newTestJob(owner)
	jobs.add(job)

	application, err := svc.Submit(context.Background(), student, job.ID, dto.SubmitApplicationRequest{ContactEmail: "s@example.com"})
	require.NoError(t, err)
	notifications.created = nil

	updated, err := svc.UpdateStatus(context.Background(), owner, application.ID, model.ApplicationStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusAccepted, updated.Status)

	require.Len(t, notifications.created, 1)
	assert.Equal(t, student, notifications.created[0].UserID)
	assert.Equal(t, model.NotificationApplicationUpdated, notifications.created[0].Type)
}

func TestUpdateStatusByNonOwnerIsPermissionDenied(t *testing.T) {
	_, jobs, _, svc := newApplicationFixture(t)

	owner := uuid.New()
	student := uuid.New()
	job := newTestJob(owner)
	jobs.add(job)

	application, err := svc.Submit(context.Background(), student, job.ID, dto.SubmitApplicationRequest{ContactEmail: "s@example.com"})
	require.NoError(t, err)

	// Zero rows from the ownership-scoped update is a denial, not success.
	_, err = svc.UpdateStatus(context.Background(), uuid.New(), application.ID, model.ApplicationStatusAccepted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	// The application is untouched.
	current, err := svc.ListMine(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, model.ApplicationStatusSubmitted, current[0].Status)
}

func TestUpdateStatusTransitions(t *testing.T) {
	_, jobs, _, svc := newApplicationFixture(t)

	owner := uuid.New()
	student := uuid.New()
	job := newTestJob(owner)
	jobs.add(job)

	application, err := svc.Submit(context.Background(), student, job.ID, dto.SubmitApplicationRequest{ContactEmail: "s@example.com"})
	require.NoError(t, err)

	// submitted -> rejected
	updated, err := svc.UpdateStatus(context.Background(), owner, application.ID, model.ApplicationStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusRejected, updated.Status)

	// The employer may still reverse the decision afterwards.
	updated, err = svc.UpdateStatus(context.Background(), owner, application.ID, model.ApplicationStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusAccepted, updated.Status)

	// Re-applying the same status is not a transition.
	_, err = svc.UpdateStatus(context.Background(), owner, application.ID, model.ApplicationStatusAccepted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	// submitted is never a target.
	_, err = svc.UpdateStatus(context.Background(), owner, application.ID, model.ApplicationStatusSubmitted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestUpdateStatusUnknownApplicationIsNotFound(t *testing.T) {
	_, _, _, svc := newApplicationFixture(t)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), uuid.New(), model.ApplicationStatusAccepted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestFailedSubmitReleasesRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	jobs := newFakeJobRepo()
	apps := newFakeApplicationRepo(jobs)
	svc := NewApplicationService(apps, jobs, &fakeNotificationService{}, rdb, time.Minute)

	owner := uuid.New()
	student := uuid.New()
	job := newTestJob(owner)
	jobs.add(job)

	// The first attempt targets a job that does not exist; the cooldown lock
	// it claimed must be released so a corrected retry can go through.
	_, err := svc.Submit(context.Background(), student, uuid.New(), dto.SubmitApplicationRequest{ContactEmail: "s@example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	application, err := svc.Submit(context.Background(), student, job.ID, dto.SubmitApplicationRequest{ContactEmail: "s@example.com"})
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusSubmitted, application.Status)
}

func TestSuccessfulSubmitKeepsRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	jobs := newFakeJobRepo()
	apps := newFakeApplicationRepo(jobs)
	svc := NewApplicationService(apps, jobs, &fakeNotificationService{}, rdb, time.Minute)

	owner := uuid.New()
	student := uuid.New()
	first := newTestJob(owner)
	second := newTestJob(owner)
	jobs.add(first)
	jobs.add(second)

	_, err := svc.Submit(context.Background(), student, first.ID, dto.SubmitApplicationRequest{ContactEmail: "s@example.com"})
	require.NoError(t, err)

	// A rejected attempt inside the cooldown must not release the lock either.
	_, err = svc.Submit(context.Background(), student, second.ID, dto.SubmitApplicationRequest{ContactEmail: "s@example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrRateLimitExceeded))

	_, err = svc.Submit(context.Background(), student, second.ID, dto.SubmitApplicationRequest{ContactEmail: "s@example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrRateLimitExceeded))
}

func TestListForJobRequiresOwnership(t *testing.T) {
	_, jobs, _, svc := newApplicationFixture(t)

	owner := uuid.New()
	student := uuid.New()
	job := newTestJob(owner)
	jobs.add(job)

	_, err := svc.Submit(context.Background(), student, job.ID, dto.SubmitApplicationRequest{ContactEmail: "s@example.com"})
	require.NoError(t, err)

	applications, err := svc.ListForJob(context.Background(), owner, job.ID)
	require.NoError(t, err)
	assert.Len(t, applications, 1)

	_, err = svc.ListForJob(context.Background(), uuid.New(), job.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}
