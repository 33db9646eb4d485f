package http

import "github.com/gin-gonic/gin"

func RegisterEventRoutes(r gin.IRouter, handler *EventHandler) {
	r.POST("/create-event", handler.CreateEvent)
	r.GET("/upcoming-events", handler.ListUpcomingEvents)
	r.GET("/events/:eventId", handler.GetEvent)
	r.GET("/event-stats/:eventId", handler.GetEventStats)
	r.GET("/event-details/:eventId", handler.GetEventDetails)
}
