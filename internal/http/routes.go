package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskflow/internal/config"
	"taskflow/internal/http/handlers"
	"taskflow/internal/http/middleware"
	"taskflow/internal/llm"
	"taskflow/internal/repository"
	"taskflow/internal/service"
	"taskflow/internal/ws"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, version string) {
	taskRepo := repository.NewTaskRepository(db)
	suggestionRepo := repository.NewSuggestionRepository(db)
	userRepo := repository.NewUserRepository(db)

	suggester := llm.NewClient(cfg.OpenAIAPIKey)
	hub := ws.NewHub()

	taskService := service.NewTaskService(taskRepo, suggestionRepo, suggester, hub, cfg.SuggestionTimeout)
	authService := service.NewAuthService(userRepo)

	h := handlers.NewHandler(taskService, authService)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	apiWindow := time.Duration(cfg.APIRateWindow) * time.Second
	authWindow := time.Duration(cfg.AuthRateWindow) * time.Second
	suggestWindow := time.Duration(cfg.SuggestRateWindow) * time.Second

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, apiWindow))

	// Auth: in-memory limiter so sign-in keeps working without Redis
	v1.POST("/auth", middleware.SimpleRateLimit(cfg.AuthRateLimit, authWindow), h.SignIn)
	v1.GET("/me", middleware.JWT(), h.Me)

	// Per-user limiter only where an LLM call may be triggered
	suggestRL := middleware.SuggestRateLimit(cfg.SuggestRateLimit, suggestWindow)

	tasks := v1.Group("/tasks")
	tasks.Use(middleware.JWT())
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", suggestRL, h.CreateTask)
		tasks.GET("/:id", h.GetTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.PATCH("/:id/status", h.UpdateTaskStatus)
		tasks.DELETE("/:id", h.DeleteTask)
		tasks.GET("/:id/suggestion", h.GetSuggestion)
	}

	// WebSocket task event feed
	r.GET("/ws", h.WS(hub))
}
