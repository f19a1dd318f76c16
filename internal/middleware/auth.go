package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/campusbridge/jobmarket/internal/repository"
	"github.com/campusbridge/jobmarket/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type AuthMiddleware struct {
	userRepo repository.UserRepository
	secret   string
}

func NewAuthMiddleware(userRepo repository.UserRepository, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		secret:   secret,
	}
}

// ParseToken validates a bearer token and returns its claims.
func (m *AuthMiddleware) ParseToken(tokenString string) (*service.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &service.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(*service.TokenClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Fallback to query parameter "token" (useful for WebSockets)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		claims, err := m.ParseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group to one signup role. The role is verified
// against the user row, not just the token, so a stale token cannot keep a
// revoked user inside a section.
func (m *AuthMiddleware) RequireRole(roleName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID.(string))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}

		if user.Role.Name != roleName {
			c.JSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("%s access required", roleName)})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}
