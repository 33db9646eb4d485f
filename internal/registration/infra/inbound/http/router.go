package http

import "github.com/gin-gonic/gin"

func RegisterRegistrationRoutes(r gin.IRouter, handler *RegistrationHandler) {
	r.POST("/register-event", handler.Register)
	r.DELETE("/cancel-registration", handler.Cancel)
	r.GET("/registration-trend", handler.Trend)
}
