package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campusbridge/jobmarket/internal/dto"
	"github.com/campusbridge/jobmarket/internal/model"
	"github.com/campusbridge/jobmarket/internal/repository"
	"github.com/campusbridge/jobmarket/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenClaims carries the role alongside the registered claims so session
// state can be derived from the token alone, without a user lookup.
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error)
}

type authService struct {
	repo     repository.UserRepository
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(repo repository.UserRepository, secret string, tokenTTL time.Duration) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}

	return &authService{
		repo:     repo,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterRequest) (*dto.AuthResponse, error) {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.Wrap(apperror.ErrConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role, err := s.repo.FindRoleByName(ctx, input.Role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrInvalidInput, fmt.Sprintf("role %s not found", input.Role))
		}
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	roleID := role.ID
	user := &model.User{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		RoleID:       &roleID,
	}

	profile := &model.Profile{
		FullName:  input.FullName,
		Bio:       normalizeOptional(input.Bio),
		Interests: input.Interests,
		Phone:     normalizeOptional(input.Phone),
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		// The unique index catches registrations racing past the pre-check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Wrap(apperror.ErrConflict, "email already registered")
		}
		return nil, err
	}

	createdUser, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	return s.buildAuthResponse(createdUser)
}

func (s *authService) Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrUnauthorized, "invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.Wrap(apperror.ErrUnauthorized, "invalid credentials")
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *model.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        user,
		Role:        &user.Role,
		Profile:     user.Profile,
	}, nil
}

func (s *authService) generateToken(user *model.User) (string, int64, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := TokenClaims{
		Role: user.Role.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
