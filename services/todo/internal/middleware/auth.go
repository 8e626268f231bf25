package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/sun1tar/todo-backend/services/todo/internal/auth"
	"github.com/sun1tar/todo-backend/services/todo/internal/respond"
	"github.com/sun1tar/todo-backend/shared/logger"
	sharedmw "github.com/sun1tar/todo-backend/shared/middleware"
)

// RequireAuth определяет вызывающего по Bearer-токену и кладёт его id в контекст.
// Без валидного токена запрос до обработчика не доходит.
func RequireAuth(guard *auth.Guard, l *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := guard.ResolveCaller(r)
			if err != nil {
				logger.WithRequestID(l, sharedmw.GetRequestID(r.Context())).
					WithFields(logrus.Fields{
						"component": "auth_middleware",
						"path":      r.URL.Path,
					}).
					WithError(err).
					Warn("unauthorized request")
				respond.Error(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}
