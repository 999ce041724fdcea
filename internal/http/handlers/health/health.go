// Package health реализует обработчик проверки живости сервиса.
package health

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/vigilhub/scantrack/internal/http/response"
)

// New возвращает обработчик, отвечающий 200 OK без какой-либо логики.
func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OK())
	}
}
