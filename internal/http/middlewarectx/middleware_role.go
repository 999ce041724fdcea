package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vigilhub/scantrack/internal/http/response"
)

// RequireRole возвращает middleware, пропускающий только пользователей с заданной ролью.
// Должен стоять после JWTMiddleware. Несовпадение роли даёт 403 без деталей:
// ответ не подтверждает неадминистратору существование ресурса.
func RequireRole(role string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireRole"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			currentRole, ok := r.Context().Value(Role).(string)
			if !ok || currentRole != role {
				log.Error("insufficient role", slog.String("required", role))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
