package handler

import (
	"github.com/clasifica/clasifica-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes. A nil wsHandler leaves /ws unregistered.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, workspaceHandler *WorkspaceHandler, wsHandler *WebSocketHandler) {
	// WebSocket authenticates with a query token
	if wsHandler != nil {
		e.GET("/ws", wsHandler.HandleWS)
	}

	// API version 1
	api := e.Group("/api/v1")

	// Workspace routes (protected)
	workspaces := api.Group("/workspaces")
	workspaces.Use(authMiddleware.Authenticate())
	workspaces.GET("", workspaceHandler.GetWorkspaces)
	workspaces.POST("", workspaceHandler.CreateWorkspace)
	workspaces.GET("/:id", workspaceHandler.GetWorkspace)

	// Upload and training routes call out to storage and the training service
	limited := middleware.RateLimitMiddleware(rateLimiter)
	workspaces.POST("/import", workspaceHandler.ImportFile, limited)
	workspaces.POST("/from-file", workspaceHandler.CreateWorkspaceFromFile, limited)
	workspaces.POST("/:id/train", workspaceHandler.TrainWorkspace, limited)
	workspaces.POST("/:id/metrics", workspaceHandler.ComputeMetrics, limited)
}
