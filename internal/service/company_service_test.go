package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/campusbridge/jobmarket/internal/dto"
	"github.com/campusbridge/jobmarket/internal/model"
	"github.com/campusbridge/jobmarket/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeCompanyRepo struct {
	mu        sync.Mutex
	companies map[uuid.UUID]*model.Company
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: make(map[uuid.UUID]*model.Company)}
}

func (r *fakeCompanyRepo) Create(ctx context.Context, company *model.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.companies {
		if existing.OwnerUserID == company.OwnerUserID {
			return gorm.ErrDuplicatedKey
		}
	}

	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	stored := *company
	r.companies[company.ID] = &stored
	return nil
}

func (r *fakeCompanyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	company, ok := r.companies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *company
	return &copied, nil
}

func (r *fakeCompanyRepo) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*model.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, company := range r.companies {
		if company.OwnerUserID == ownerUserID {
			copied := *company
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCompanyRepo) Update(ctx context.Context, company *model.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *company
	r.companies[company.ID] = &stored
	return nil
}

func TestCreateCompanyOncePerEmployer(t *testing.T) {
	repo := newFakeCompanyRepo()
	svc := NewCompanyService(repo)
	owner := uuid.New()

	company, err := svc.Create(context.Background(), owner, dto.CreateCompanyRequest{Name: "Acme Robotics"})
	require.NoError(t, err)
	assert.Equal(t, owner, company.OwnerUserID)

	_, err = svc.Create(context.Background(), owner, dto.CreateCompanyRequest{Name: "Second Venture"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestUpdateCompanyRequiresOwnership(t *testing.T) {
	repo := newFakeCompanyRepo()
	svc := NewCompanyService(repo)
	owner := uuid.New()

	company, err := svc.Create(context.Background(), owner, dto.CreateCompanyRequest{Name: "Acme Robotics"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), owner, company.ID, dto.UpdateCompanyRequest{
		Name:     "Acme Robotics",
		Location: "Bandung",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bandung", updated.Location)

	_, err = svc.Update(context.Background(), uuid.New(), company.ID, dto.UpdateCompanyRequest{Name: "Hijacked"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}

func TestGetCompanyByOwnerNotFound(t *testing.T) {
	repo := newFakeCompanyRepo()
	svc := NewCompanyService(repo)

	_, err := svc.GetByOwner(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
