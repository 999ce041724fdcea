// Package users реализует админский HTTP-обработчик списка пользователей.
//
// Доступ ограничивается middleware RequireRole("admin"); обработчик
// возвращает всех пользователей без хэшей паролей.
package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vigilhub/scantrack/internal/http/response"
	"github.com/vigilhub/scantrack/internal/lib/sl"
	"github.com/vigilhub/scantrack/internal/models"
)

// Service описывает интерфейс бизнес-логики списка пользователей.
type Service interface {
	ListUsers(ctx context.Context) ([]models.PublicUser, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list users"))
		return
	}

	log.Info("list users", "count", len(users))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"list_count": len(users),
		"users":      users,
	}))
}
