// Package app предоставляет маршруты для основного приложения.
package app

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminusers "github.com/vigilhub/scantrack/internal/http/handlers/admin/users"
	"github.com/vigilhub/scantrack/internal/http/handlers/auth/login"
	"github.com/vigilhub/scantrack/internal/http/handlers/auth/register"
	"github.com/vigilhub/scantrack/internal/http/handlers/health"
	scancreate "github.com/vigilhub/scantrack/internal/http/handlers/scan/create"
	scanlist "github.com/vigilhub/scantrack/internal/http/handlers/scan/list"
	"github.com/vigilhub/scantrack/internal/http/middlewarectx"
	"github.com/vigilhub/scantrack/internal/models"
	authservice "github.com/vigilhub/scantrack/internal/services/auth"
	scanservice "github.com/vigilhub/scantrack/internal/services/scan"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *authservice.AuthService, scanService *scanservice.ScanService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New())

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/scans", scancreate.New(logger, scanService).ServeHTTP)
			r.Get("/scans", scanlist.New(logger, scanService).ServeHTTP)

			// Админская группа
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(models.RoleAdmin, logger))
				r.Get("/admin/users", adminusers.New(logger, authService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
}
