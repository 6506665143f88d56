// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"salaf/internal/delivery/http/middleware"
	"salaf/internal/delivery/http/router/handler"
	"salaf/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler   *handler.AuthHandler
	CreditHandler *handler.CreditHandler
	AdminHandler  *handler.AdminHandler
	OcrHandler    *handler.OcrHandler

	AuthMiddleware      *middleware.AuthMiddleware
	RequestIDMiddleware *middleware.RequestIDMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler   *handler.AuthHandler
	creditHandler *handler.CreditHandler
	adminHandler  *handler.AdminHandler
	ocrHandler    *handler.OcrHandler

	authMiddleware      *middleware.AuthMiddleware
	requestIDMiddleware *middleware.RequestIDMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:         params.AuthHandler,
		creditHandler:       params.CreditHandler,
		adminHandler:        params.AdminHandler,
		ocrHandler:          params.OcrHandler,
		authMiddleware:      params.AuthMiddleware,
		requestIDMiddleware: params.RequestIDMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestIDMiddleware.Process)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signup", r.authHandler.Signup)
		authGroup.POST("/signin", r.authHandler.Login)
		authGroup.GET("/profile", r.authHandler.Profile, r.authMiddleware.Authenticate)
	}

	// Credit routes. Every route requires authentication; the split between
	// client and agent routes mirrors the two projections of a request.
	creditGroup := e.Group("/credit")
	creditGroup.Use(r.authMiddleware.Authenticate)
	{
		clientGate := r.authMiddleware.RequireRole(entity.RoleClient)
		creditGroup.POST("/request", r.creditHandler.Submit, clientGate)
		creditGroup.POST("/simulate", r.creditHandler.Simulate, clientGate)
		creditGroup.GET("/my-requests", r.creditHandler.MyRequests, clientGate)
		creditGroup.GET("/my-requests/:id", r.creditHandler.GetMine, clientGate)
		creditGroup.PUT("/:id/cancel", r.creditHandler.Cancel, clientGate)

		agentGate := r.authMiddleware.RequireRole(entity.RoleAgent)
		creditGroup.GET("/requests", r.creditHandler.List, agentGate)
		creditGroup.GET("/pending", r.creditHandler.Pending, agentGate)
		creditGroup.GET("/agent/history", r.creditHandler.History, agentGate)
		creditGroup.GET("/:id", r.creditHandler.Get, agentGate)
		creditGroup.PUT("/:id/assign", r.creditHandler.Assign, agentGate)
		creditGroup.POST("/:id/score", r.creditHandler.Score, agentGate)
		creditGroup.PUT("/:id/review", r.creditHandler.Review, agentGate)
		creditGroup.PUT("/:id/paid", r.creditHandler.MarkPaid, agentGate)
	}

	// OCR-assisted form filling
	ocrGroup := e.Group("/api/ocr")
	ocrGroup.Use(r.authMiddleware.Authenticate)
	{
		ocrGroup.POST("/scan-cnie", r.ocrHandler.Scan)
	}

	// Admin routes
	adminGroup := e.Group("/admin")
	adminGroup.Use(r.authMiddleware.Authenticate)
	adminGroup.Use(r.authMiddleware.RequireRole(entity.RoleAdmin))
	{
		adminGroup.GET("/stats/overview", r.adminHandler.Stats)
		adminGroup.GET("/users", r.adminHandler.ListUsers)
		adminGroup.PUT("/users/:id/role", r.adminHandler.UpdateUserRole)
		adminGroup.DELETE("/users/:id", r.adminHandler.DeleteUser)
		adminGroup.GET("/settings", r.adminHandler.GetSettings)
		adminGroup.PUT("/settings", r.adminHandler.UpdateSettings)
	}
}
