package http

import "github.com/gin-gonic/gin"

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")

	api.GET("/healthchecker", s.healthCheck)

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", s.signup)
	authGroup.POST("/login", s.login)
	authGroup.POST("/refresh_token", s.refreshToken)
	authGroup.PATCH("/avatar", s.requireUser, s.updateAvatar)

	emailGroup := api.Group("/email")
	emailGroup.GET("/confirmed_email/:token", s.confirmEmail)
	emailGroup.POST("/request_email", s.requestEmail)
	emailGroup.POST("/forget-password", s.forgetPassword)
	emailGroup.POST("/reset-password/:token", s.resetPassword)

	contactGroup := api.Group("/contacts", s.requireUser)
	contactGroup.GET("", s.listContacts)
	contactGroup.GET("/search", s.searchContacts)
	contactGroup.GET("/upcoming_birthdays", s.upcomingBirthdays)
	contactGroup.GET("/:id", s.getContact)
	contactGroup.POST("", s.createContact)
	contactGroup.PUT("/:id", s.updateContact)
	contactGroup.DELETE("/:id", s.deleteContact)

	return r
}
