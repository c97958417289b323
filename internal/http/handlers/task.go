package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskflow/internal/domain"
	"taskflow/internal/service"
)

type createTaskRequest struct {
	Title              string          `json:"title"`
	Description        *string         `json:"description"`
	Status             string          `json:"status"`
	Priority           string          `json:"priority"`
	DueDate            *string         `json:"due_date"`
	GenerateSuggestion bool            `json:"generate_suggestion"`
	ProjectContext     json.RawMessage `json:"project_context"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
}

// parseDueDate accepts a plain date or a full timestamp. An empty
// string means "clear".
func parseDueDate(s string) (*time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask persists a task and, when requested, inlines the AI
// suggestion produced for it. Suggestion absence is not an error.
func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req createTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	in := service.CreateTaskInput{
		Title:              req.Title,
		Description:        req.Description,
		Status:             domain.Status(req.Status),
		Priority:           domain.Priority(req.Priority),
		GenerateSuggestion: req.GenerateSuggestion,
		ProjectContext:     req.ProjectContext,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date"})
			return
		}
		in.DueDate = due
	}

	result, err := h.Tasks.CreateTask(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"task": result.Task}
	if result.Suggestion != nil {
		resp["suggestion"] = result.Suggestion
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) ListTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	status := domain.Status(c.Query("status"))
	tasks, err := h.Tasks.ListTasks(c.Request.Context(), userID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *Handler) GetTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	task, err := h.Tasks.GetTask(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req updateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	params := domain.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		s := domain.Status(*req.Status)
		params.Status = &s
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		params.Priority = &p
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			params.ClearDue = true
		} else {
			due, err := parseDueDate(*req.DueDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date"})
				return
			}
			params.DueDate = due
		}
	}

	task, err := h.Tasks.UpdateTask(c.Request.Context(), userID, c.Param("id"), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// UpdateTaskStatus is the status-only transition endpoint.
func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	task, err := h.Tasks.UpdateTaskStatus(c.Request.Context(), userID, c.Param("id"), domain.Status(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	if err := h.Tasks.DeleteTask(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSuggestion returns the latest AI suggestion for a task. 404 on the
// suggestion resource means "none generated", a first-class outcome.
func (h *Handler) GetSuggestion(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	record, err := h.Tasks.GetSuggestion(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestion": record})
}
