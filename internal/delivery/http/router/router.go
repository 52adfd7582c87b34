// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"melodia/internal/delivery/http/middleware"
	"melodia/internal/delivery/http/router/handler"
	deliverymiddleware "melodia/internal/delivery/middleware"
	"melodia/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// RouterParams holds everything the router wires together, injected by Fx.
type RouterParams struct {
	fx.In

	AuthHandler         *handler.AuthHandler
	AccountHandler      *handler.AccountHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RequestIDMiddleware *deliverymiddleware.RequestIDMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler         *handler.AuthHandler
	accountHandler      *handler.AccountHandler
	authMiddleware      *middleware.AuthMiddleware
	requestIDMiddleware *deliverymiddleware.RequestIDMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:         params.AuthHandler,
		accountHandler:      params.AccountHandler,
		authMiddleware:      params.AuthMiddleware,
		requestIDMiddleware: params.RequestIDMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestIDMiddleware.Process)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes. Refresh and logout carry their own guards because the
	// refresh token, not the access token, is the credential there.
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register, r.authMiddleware.Require(middleware.Public()))
		authGroup.POST("/login", r.authHandler.Login, r.authMiddleware.Require(middleware.Public()))
		authGroup.POST("/verify-otp", r.authHandler.VerifyOTP, r.authMiddleware.Require(middleware.Public()))
		authGroup.POST("/send-otp", r.authHandler.SendOTP, r.authMiddleware.Require(middleware.Public()))
		authGroup.POST("/refresh", r.authHandler.Refresh, r.authMiddleware.RequireRefresh)
		authGroup.POST("/logout", r.authHandler.Logout, r.authMiddleware.AttachLogout)
		authGroup.GET("/profile", r.authHandler.Profile, r.authMiddleware.Require(middleware.Authenticated()))
	}

	// Account routes: password change for any principal, the rest admin-only.
	accountGroup := e.Group("/accounts")
	{
		accountGroup.PATCH("/password", r.accountHandler.ChangePassword,
			r.authMiddleware.Require(middleware.Authenticated()))

		adminOnly := r.authMiddleware.Require(middleware.Roles(entity.RoleAdmin))
		accountGroup.GET("", r.accountHandler.List, adminOnly)
		accountGroup.GET("/:id", r.accountHandler.Get, adminOnly)
		accountGroup.POST("/lookup", r.accountHandler.Lookup, adminOnly)
		accountGroup.DELETE("", r.accountHandler.Delete, adminOnly)
		accountGroup.PATCH("/activate", r.accountHandler.Activate, adminOnly)
		accountGroup.PATCH("/deactivate", r.accountHandler.Deactivate, adminOnly)
		accountGroup.PATCH("/roles", r.accountHandler.UpdateRoles, adminOnly)
	}
}
