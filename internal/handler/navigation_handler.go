package handler

import (
	"net/http"

	"github.com/campusbridge/jobmarket/internal/routeguard"
	"github.com/gin-gonic/gin"
)

// NavigationHandler exposes the route guard so thin clients ask the server
// where they are allowed to be instead of duplicating the rules.
type NavigationHandler struct {
	auth *AuthHandler
}

func NewNavigationHandler(auth *AuthHandler) *NavigationHandler {
	return &NavigationHandler{auth: auth}
}

func (h *NavigationHandler) Resolve(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter is required"})
		return
	}

	state := h.auth.resolveState(c)
	decision := routeguard.Decide(state, path)

	c.JSON(http.StatusOK, gin.H{
		"state":    state,
		"decision": decision,
	})
}
