package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkravets/contactdesk/internal/common"
)

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	NewPassword     string `json:"new_password_1" binding:"required,min=6"`
	ConfirmPassword string `json:"new_password_2" binding:"required"`
}

func (s *Server) confirmEmail(c *gin.Context) {
	already, err := s.auth.ConfirmEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	if already {
		c.JSON(http.StatusOK, gin.H{"message": "Your email is already confirmed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email confirmed"})
}

func (s *Server) requestEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, fmt.Errorf("%w: %v", common.ErrorValidation, err))
		return
	}

	already, err := s.auth.RequestVerification(c.Request.Context(), req.Email)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	if already {
		c.JSON(http.StatusOK, gin.H{"message": "Your email is already confirmed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Check your email for confirmation."})
}

func (s *Server) forgetPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, fmt.Errorf("%w: %v", common.ErrorValidation, err))
		return
	}

	if err := s.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Check your email for reset."})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, fmt.Errorf("%w: %v", common.ErrorValidation, err))
		return
	}

	err := s.auth.ResetPassword(c.Request.Context(), c.Param("token"), req.NewPassword, req.ConfirmPassword)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Your password changed"})
}
