package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse es el cuerpo estándar de cualquier fallo.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MessageResponse es el cuerpo de las operaciones que no devuelven entidad.
type MessageResponse struct {
	Message string `json:"message"`
}

func SendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func SendMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, MessageResponse{Message: message})
}

// SendError envía {error, details}; details se omite si va vacío.
func SendError(c *gin.Context, statusCode int, message, details string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{Error: message, Details: details})
}

// --- Helpers específicos para errores comunes ---

func SendBadRequest(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message, "")
}

func SendNotFound(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, message, "")
}

// SendInternalServerError adjunta el error original en details.
func SendInternalServerError(c *gin.Context, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	SendError(c, http.StatusInternalServerError, message, details)
}
