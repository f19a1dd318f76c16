package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/campusbridge/jobmarket/internal/dto"
	"github.com/campusbridge/jobmarket/internal/middleware"
	"github.com/campusbridge/jobmarket/internal/service"
	"github.com/campusbridge/jobmarket/internal/session"
	"github.com/campusbridge/jobmarket/pkg/response"
	"github.com/campusbridge/jobmarket/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	service service.AuthService
	auth    *middleware.AuthMiddleware
}

func NewAuthHandler(service service.AuthService, auth *middleware.AuthMiddleware) *AuthHandler {
	return &AuthHandler{service: service, auth: auth}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout is stateless on the server; tokens simply expire. The endpoint
// exists so clients have an explicit sign-out to key their session resolver
// events off.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// GetSession reports the derived session state for the caller's token. The
// derivation runs through the session resolver so the endpoint and the
// navigation guard can never disagree about what authenticated means.
func (h *AuthHandler) GetSession(c *gin.Context) {
	state := h.resolveState(c)
	c.JSON(http.StatusOK, state)
}

// resolveState feeds the request's credentials through a resolver as the
// initial-session event and returns the derived state.
func (h *AuthHandler) resolveState(c *gin.Context) session.State {
	resolver := session.NewResolver()

	tokenString := ""
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		tokenString = c.Query("token")
	}

	if tokenString == "" {
		return resolver.Apply(session.Event{Kind: session.EventInitialSession})
	}

	claims, err := h.auth.ParseToken(tokenString)
	if err != nil {
		return resolver.Apply(session.Event{Kind: session.EventInitialLoadFailed, Err: err.Error()})
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return resolver.Apply(session.Event{Kind: session.EventInitialLoadFailed, Err: "invalid session subject"})
	}

	sess := &session.Session{
		UserID: userID,
		Role:   session.Role(claims.Role),
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
		if time.Now().After(sess.ExpiresAt) {
			return resolver.Apply(session.Event{Kind: session.EventInitialSession})
		}
	}

	return resolver.Apply(session.Event{Kind: session.EventInitialSession, Session: sess})
}
