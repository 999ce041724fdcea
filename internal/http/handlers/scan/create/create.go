// Package create реализует HTTP-обработчик для создания новых запросов на сканирование.
//
// Handler принимает JSON-запрос с типом и значением цели, валидирует их,
// извлекает идентификатор пользователя из контекста, вызывает бизнес-логику
// создания сканирования через сервис и возвращает созданную запись в JSON-формате.
//
// В случае ошибок формируются соответствующие HTTP-ответы с описанием проблемы.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/vigilhub/scantrack/internal/http/middlewarectx"
	"github.com/vigilhub/scantrack/internal/http/response"
	"github.com/vigilhub/scantrack/internal/lib/sl"
	"github.com/vigilhub/scantrack/internal/models"
	scanservice "github.com/vigilhub/scantrack/internal/services/scan"
)

// Handler управляет HTTP-запросами на создание новых сканирований.
//
// Использует логгер для записи операций и ошибок,
// сервис бизнес-логики для создания сканирования,
// а также валидатор для проверки структуры входных данных.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики для создания сканирований
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания сканирования.
type Service interface {
	Create(ctx context.Context, ownerUID string, req models.DummyScan) (*models.Scan, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.scan.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyScan
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	ownerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || ownerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	scan, err := h.service.Create(r.Context(), ownerUID, req)
	if err != nil {
		if errors.Is(err, scanservice.ErrInvalidTarget) {
			log.Error("invalid scan target", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("invalid scan target"))
			return
		}
		log.Error("failed to create scan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create scan"))
		return
	}

	log.Info("success to create scan", slog.String("id", scan.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(scan))
}
