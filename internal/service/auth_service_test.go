package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/campusbridge/jobmarket/internal/dto"
	"github.com/campusbridge/jobmarket/internal/model"
	"github.com/campusbridge/jobmarket/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*model.User
	roles   map[string]*model.Role
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*model.User),
		roles: map[string]*model.Role{
			model.RoleStudent:  {ID: 1, Name: model.RoleStudent},
			model.RoleEmployer: {ID: 2, Name: model.RoleEmployer},
		},
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User, profile *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return gorm.ErrDuplicatedKey
	}

	if user.RoleID != nil {
		for _, role := range r.roles {
			if role.ID == *user.RoleID {
				user.Role = *role
			}
		}
	}
	if profile != nil {
		profile.UserID = user.ID
		user.Profile = profile
	}

	stored := *user
	r.byEmail[user.Email] = &stored
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.byEmail {
		if user.ID.String() == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	role, ok := r.roles[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *role
	return &copied, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, profile *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.byEmail {
		if user.ID == profile.UserID {
			stored := *profile
			user.Profile = &stored
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func registerInput(role string) dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:    "jane@example.com",
		Password: "hunter2hunter2",
		Role:     role,
		FullName: "Jane Doe",
	}
}

func TestRegisterIssuesTokenWithRoleClaim(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testSecret, time.Hour)

	resp, err := svc.Register(context.Background(), registerInput(model.RoleStudent))
	require.NoError(t, err)

	require.NotNil(t, resp.User)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.Empty(t, resp.User.PasswordHash)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, "Jane Doe", resp.Profile.FullName)
	assert.Equal(t, "Bearer", resp.TokenType)

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, model.RoleStudent, claims.Role)
	assert.Equal(t, resp.User.ID.String(), claims.Subject)
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testSecret, time.Hour)

	_, err := svc.Register(context.Background(), registerInput(model.RoleStudent))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerInput(model.RoleEmployer))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

// staleReadUserRepo misses freshly inserted rows on the email lookup, like a
// second registration whose existence check ran before the first insert
// landed.
type staleReadUserRepo struct {
	*fakeUserRepo
}

func (r *staleReadUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestRegisterDuplicateKeyFromRacingInsertIsConflict(t *testing.T) {
	repo := &staleReadUserRepo{fakeUserRepo: newFakeUserRepo()}
	svc := NewAuthService(repo, testSecret, time.Hour)

	seeded := &model.User{ID: uuid.New(), Email: "jane@example.com"}
	require.NoError(t, repo.fakeUserRepo.Create(context.Background(), seeded, nil))

	_, err := svc.Register(context.Background(), registerInput(model.RoleStudent))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
	assert.Contains(t, err.Error(), "email already registered")
}

func TestRegisterUnknownRoleIsRejected(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testSecret, time.Hour)

	_, err := svc.Register(context.Background(), registerInput("admin"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestLoginChecksCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testSecret, time.Hour)

	_, err := svc.Register(context.Background(), registerInput(model.RoleEmployer))
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "jane@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, model.RoleEmployer, resp.Role.Name)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong-password",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter2hunter2",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
}
