package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkravets/contactdesk/internal/common"
)

// abortWithError translates internal error kinds into boundary outcomes
// without leaking internal detail.
func (s *Server) abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "NOT FOUND"})
	case errors.Is(err, common.ErrorConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"detail": "Already exists"})
	case errors.Is(err, common.ErrorUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
	case errors.Is(err, common.ErrorUpstreamUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"detail": "Service unavailable"})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
	}
}
