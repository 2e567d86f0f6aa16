package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkravets/contactdesk/internal/common"
)

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func (s *Server) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, fmt.Errorf("%w: %v", common.ErrorValidation, err))
		return
	}

	user, err := s.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, fmt.Errorf("%w: %v", common.ErrorValidation, err))
		return
	}

	pair, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// refreshToken reads the refresh token from the Authorization header and
// rotates the pair.
func (s *Server) refreshToken(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}

	pair, err := s.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// updateAvatar uploads the posted file to the image host and stores the
// returned URL on the authenticated user.
func (s *Server) updateAvatar(c *gin.Context) {
	user := currentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		s.abortWithError(c, fmt.Errorf("%w: file is required", common.ErrorValidation))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.abortWithError(c, fmt.Errorf("%w: %v", common.ErrorValidation, err))
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	updated, err := s.auth.UpdateAvatar(c.Request.Context(), user, file, contentType)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Server) healthCheck(c *gin.Context) {
	var one int
	if err := s.db.QueryRowContext(c.Request.Context(), "SELECT 1").Scan(&one); err != nil {
		s.logger.Error(c.Request.Context(), "health check failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error connecting to the database"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Contacts App!"})
}
