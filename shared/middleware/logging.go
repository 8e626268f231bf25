package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sun1tar/todo-backend/shared/logger"
)

// StatusRecorder запоминает статус ответа для логов и метрик
type StatusRecorder struct {
	http.ResponseWriter
	StatusCode  int
	wroteHeader bool
}

// NewStatusRecorder оборачивает w; статус по умолчанию 200
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	if rec, ok := w.(*StatusRecorder); ok {
		return rec
	}
	return &StatusRecorder{ResponseWriter: w, StatusCode: http.StatusOK}
}

func (rw *StatusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.StatusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *StatusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap нужен http.ResponseController
func (rw *StatusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// LoggingMiddleware логирует каждый HTTP запрос в структурированном формате
func LoggingMiddleware(l *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := NewStatusRecorder(w)

			logEntry := logger.WithRequestID(l, GetRequestID(r.Context()))
			logEntry.Debugf("request started: %s %s", r.Method, r.URL.Path)

			next.ServeHTTP(wrapped, r)

			logEntry.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrapped.StatusCode,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_ip":   r.RemoteAddr,
				"user_agent":  r.UserAgent(),
			}).Info("request completed")
		})
	}
}
