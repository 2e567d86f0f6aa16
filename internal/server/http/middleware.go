package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mkravets/contactdesk/internal/common"
	"github.com/mkravets/contactdesk/internal/server/models"
)

const userContextKey = "current_user"

// bearerToken extracts the credential from an "Authorization: Bearer ..."
// header; empty string when absent or malformed.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireUser resolves the bearer access token to a user and stores it on
// the request context. Every failure collapses to 401.
func (s *Server) requireUser(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}

	user, err := s.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}
		s.logger.Error(c.Request.Context(), "authentication failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}

	c.Set(userContextKey, user)
	c.Next()
}

// currentUser returns the user stored by requireUser.
func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userContextKey).(*models.User)
}
