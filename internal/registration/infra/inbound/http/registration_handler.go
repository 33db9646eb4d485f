package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	eventDomain "github.com/davicafu/eventreg/internal/event/domain"
	"github.com/davicafu/eventreg/internal/registration/application"
	"github.com/davicafu/eventreg/internal/registration/domain"
	userDomain "github.com/davicafu/eventreg/internal/user/domain"
	"github.com/davicafu/eventreg/pkg/utils"
)

// RegistrationHandler encapsula los endpoints de inscripción y su analítica
type RegistrationHandler struct {
	service  *application.RegistrationService
	activity *application.ActivityService
	log      *zap.Logger
}

func NewRegistrationHandler(service *application.RegistrationService, activity *application.ActivityService, log *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{service: service, activity: activity, log: log}
}

type registrationRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	EventID string `json:"event_id" binding:"required"`
}

// Register endpoint POST /register-event
func (h *RegistrationHandler) Register(c *gin.Context) {
	userID, eventID, ok := bindRegistration(c)
	if !ok {
		return
	}

	if _, err := h.service.Register(c.Request.Context(), userID, eventID); err != nil {
		switch {
		case errors.Is(err, userDomain.ErrUserNotFound), errors.Is(err, eventDomain.ErrEventNotFound):
			utils.SendNotFound(c, err.Error())
		case domain.IsConflictError(err):
			utils.SendBadRequest(c, err.Error())
		default:
			h.log.Error("Failed to register user", zap.String("event_id", eventID.String()), zap.Error(err))
			utils.SendInternalServerError(c, "Failed to register for event", err)
		}
		return
	}

	utils.SendMessage(c, http.StatusCreated, "User registered successfully")
}

// Cancel endpoint DELETE /cancel-registration
func (h *RegistrationHandler) Cancel(c *gin.Context) {
	userID, eventID, ok := bindRegistration(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), userID, eventID); err != nil {
		if errors.Is(err, domain.ErrNotRegistered) {
			utils.SendNotFound(c, err.Error())
			return
		}
		h.log.Error("Failed to cancel registration", zap.String("event_id", eventID.String()), zap.Error(err))
		utils.SendInternalServerError(c, "Failed to cancel registration", err)
		return
	}

	utils.SendMessage(c, http.StatusOK, "Registration cancelled successfully")
}

// Trend endpoint GET /registration-trend?days=N
func (h *RegistrationHandler) Trend(c *gin.Context) {
	days := domain.DefaultTrendDays
	if raw := c.Query("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			utils.SendBadRequest(c, domain.ErrInvalidTrendDays.Error())
			return
		}
		days = v
	}

	trend, err := h.activity.Trend(c.Request.Context(), days)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTrendDays) {
			utils.SendBadRequest(c, err.Error())
			return
		}
		h.log.Error("Failed to compute registration trend", zap.Error(err))
		utils.SendInternalServerError(c, "Failed to compute registration trend", err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, trend)
}

// bindRegistration responde 400 si el cuerpo no trae dos UUID válidos.
func bindRegistration(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	var req registrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return uuid.Nil, uuid.Nil, false
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid user_id", err.Error())
		return uuid.Nil, uuid.Nil, false
	}
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid event_id", err.Error())
		return uuid.Nil, uuid.Nil, false
	}
	return userID, eventID, true
}
