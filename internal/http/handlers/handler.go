package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/internal/apperr"
	"taskflow/internal/service"
)

type Handler struct {
	Tasks *service.TaskService
	Auth  *service.AuthService
}

func NewHandler(tasks *service.TaskService, auth *service.AuthService) *Handler {
	return &Handler{Tasks: tasks, Auth: auth}
}

// getUserID extracts the authenticated user id set by the JWT middleware.
func getUserID(c *gin.Context) (string, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return "", false
	}
	uid, ok := uidVal.(string)
	if !ok || uid == "" {
		return "", false
	}
	return uid, true
}

// respondError maps apperr kinds onto HTTP statuses. Foreign errors are
// reported as internal without leaking details.
func respondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.Validation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.NotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case apperr.Conflict:
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case apperr.Unauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case apperr.Forbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
