package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"

	shared "github.com/sun1tar/todo-backend/shared/middleware"
)

// CORS отвечает на preflight до маршрутизации и проверки токена.
// origins из конфигурации; "*" разрешает любой источник.
func CORS(origins []string) func(http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", shared.RequestIDHeader}),
		handlers.ExposedHeaders([]string{shared.RequestIDHeader}),
	)
}
