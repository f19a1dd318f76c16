package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/campusbridge/jobmarket/internal/dto"
	"github.com/campusbridge/jobmarket/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageStorage struct {
	mu      sync.Mutex
	deleted []string
}

func (s *fakeImageStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	return fmt.Sprintf("https://img.example.com/%s/%s", folder, fileName), nil
}

func (s *fakeImageStorage) DeleteImage(ctx context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, fileURL)
	return nil
}

func TestListWithoutSearchServiceQueriesDatabase(t *testing.T) {
	jobs := newFakeJobRepo()
	svc := NewJobService(jobs, newFakeCompanyRepo(), nil, nil, "jobs")

	owner := uuid.New()
	jobs.add(newTestJob(owner))

	resp, err := svc.List(context.Background(), dto.JobFilter{Search: "robotics"})
	require.NoError(t, err)
	require.NotNil(t, resp)

	// Without a search index the query term still reaches the database
	// listing instead of being dropped.
	assert.Equal(t, "robotics", jobs.lastFilter.Search)
	assert.Equal(t, 1, jobs.lastFilter.Page)
	assert.Equal(t, 10, jobs.lastFilter.Limit)
}

func TestRemoveImageUpdatesJobAndStorage(t *testing.T) {
	jobs := newFakeJobRepo()
	storage := &fakeImageStorage{}
	svc := NewJobService(jobs, newFakeCompanyRepo(), nil, storage, "jobs")

	owner := uuid.New()
	job := newTestJob(owner)
	job.Images = []string{
		"https://img.example.com/jobs/a.webp",
		"https://img.example.com/jobs/b.webp",
	}
	jobs.add(job)

	updated, err := svc.RemoveImage(context.Background(), owner, job.ID, "https://img.example.com/jobs/a.webp")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://img.example.com/jobs/b.webp"}, []string(updated.Images))
	assert.Equal(t, []string{"https://img.example.com/jobs/a.webp"}, storage.deleted)
}

func TestRemoveImageRequiresOwnership(t *testing.T) {
	jobs := newFakeJobRepo()
	storage := &fakeImageStorage{}
	svc := NewJobService(jobs, newFakeCompanyRepo(), nil, storage, "jobs")

	owner := uuid.New()
	job := newTestJob(owner)
	job.Images = []string{"https://img.example.com/jobs/a.webp"}
	jobs.add(job)

	_, err := svc.RemoveImage(context.Background(), uuid.New(), job.ID, "https://img.example.com/jobs/a.webp")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
	assert.Empty(t, storage.deleted)
}

func TestRemoveImageUnknownURLIsNotFound(t *testing.T) {
	jobs := newFakeJobRepo()
	svc := NewJobService(jobs, newFakeCompanyRepo(), nil, &fakeImageStorage{}, "jobs")

	owner := uuid.New()
	job := newTestJob(owner)
	job.Images = []string{"https://img.example.com/jobs/a.webp"}
	jobs.add(job)

	_, err := svc.RemoveImage(context.Background(), owner, job.ID, "https://img.example.com/jobs/missing.webp")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
