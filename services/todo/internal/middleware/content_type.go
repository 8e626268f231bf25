package middleware

import (
	"mime"
	"net/http"

	"github.com/sun1tar/todo-backend/services/todo/internal/respond"
)

// RequireJSON отклоняет POST/PUT/PATCH с телом не в JSON (415).
// Запросы без тела пропускаются: PATCH /tasks/{id}/done тела не требует.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if r.ContentLength == 0 {
				break
			}
			ct := r.Header.Get("Content-Type")
			if ct == "" {
				break
			}
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || mediaType != "application/json" {
				respond.Status(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
