package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/eventreg/internal/event/application"
	"github.com/davicafu/eventreg/internal/event/domain"
	"github.com/davicafu/eventreg/pkg/utils"
)

// EventHandler encapsula los endpoints HTTP de eventos
type EventHandler struct {
	service *application.EventService
	log     *zap.Logger
}

func NewEventHandler(service *application.EventService, log *zap.Logger) *EventHandler {
	return &EventHandler{service: service, log: log}
}

type createEventRequest struct {
	Title    string `json:"title"`
	Location string `json:"location"`
	DateTime string `json:"date_time"`
	// Puntero para distinguir capacidad ausente de capacidad 0
	Capacity *int `json:"capacity"`
}

type createEventResponse struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
}

// CreateEvent endpoint POST /create-event
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	event, err := h.service.CreateEvent(c.Request.Context(), application.CreateEventInput{
		Title:    req.Title,
		Location: req.Location,
		DateTime: req.DateTime,
		Capacity: req.Capacity,
	})
	if err != nil {
		if domain.IsValidationError(err) {
			utils.SendBadRequest(c, err.Error())
			return
		}
		h.log.Error("Failed to create event", zap.Error(err))
		utils.SendInternalServerError(c, "Failed to create event", err)
		return
	}

	c.JSON(http.StatusCreated, createEventResponse{ID: event.ID, Message: "Event created successfully"})
}

// ListUpcomingEvents endpoint GET /upcoming-events
func (h *EventHandler) ListUpcomingEvents(c *gin.Context) {
	events, err := h.service.ListUpcomingEvents(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list upcoming events", zap.Error(err))
		utils.SendInternalServerError(c, "Failed to list upcoming events", err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, events)
}

// GetEvent endpoint GET /events/:eventId
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	event, err := h.service.GetEvent(c.Request.Context(), id)
	if err != nil {
		h.sendEventError(c, "Failed to get event", err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, event)
}

// GetEventStats endpoint GET /event-stats/:eventId
func (h *EventHandler) GetEventStats(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	stats, err := h.service.GetEventStats(c.Request.Context(), id)
	if err != nil {
		h.sendEventError(c, "Failed to get event stats", err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, stats)
}

// GetEventDetails endpoint GET /event-details/:eventId
func (h *EventHandler) GetEventDetails(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	details, err := h.service.GetEventDetails(c.Request.Context(), id)
	if err != nil {
		h.sendEventError(c, "Failed to get event details", err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, details)
}

// parseEventID responde 404 si el id no es un UUID: no puede nombrar ningún evento.
func parseEventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		utils.SendNotFound(c, domain.ErrEventNotFound.Error())
		return uuid.Nil, false
	}
	return id, true
}

func (h *EventHandler) sendEventError(c *gin.Context, message string, err error) {
	if errors.Is(err, domain.ErrEventNotFound) {
		utils.SendNotFound(c, err.Error())
		return
	}
	h.log.Error(message, zap.Error(err))
	utils.SendInternalServerError(c, message, err)
}
