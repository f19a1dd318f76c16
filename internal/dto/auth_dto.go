package dto

import (
	"github.com/campusbridge/jobmarket/internal/model"
)

type RegisterRequest struct {
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required,min=8"`
	Role      string   `json:"role" binding:"required,oneof=student employer"`
	FullName  string   `json:"full_name" binding:"required,max=100"`
	Bio       *string  `json:"bio"`
	Interests []string `json:"interests"`
	Phone     *string  `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	User        *model.User    `json:"user"`
	Role        *model.Role    `json:"role"`
	Profile     *model.Profile `json:"profile"`
}
