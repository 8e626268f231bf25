package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/sun1tar/todo-backend/services/todo/internal/auth"
	"github.com/sun1tar/todo-backend/services/todo/internal/middleware"
	"github.com/sun1tar/todo-backend/services/todo/internal/respond"
)

// Pinger проверка доступности хранилища для /healthz
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps всё, что нужно для сборки маршрутов
type RouterDeps struct {
	Auth       *AuthHandler
	Tasks      *TaskHandler
	Performers *PerformerHandler
	Guard      *auth.Guard
	Store      Pinger
	Metrics    *middleware.Metrics
	Gatherer   prometheus.Gatherer
	Logger     *logrus.Logger

	CORSAllowedOrigins []string
}

// NewHandler оборачивает маршруты в CORS: preflight OPTIONS не доходит
// до mux и RequireAuth, поэтому токен для него не нужен.
func NewHandler(d RouterDeps) http.Handler {
	return middleware.CORS(d.CORSAllowedOrigins)(NewRouter(d))
}

// NewRouter собирает маршруты API.
// /tasks и /performers без слеша редиректятся на /tasks/ и /performers/.
func NewRouter(d RouterDeps) *mux.Router {
	r := mux.NewRouter().StrictSlash(true)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respond.Status(w, http.StatusNotFound, "Resource not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respond.Status(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.Use(d.Metrics.Middleware)

	r.Handle("/metrics", middleware.Handler(d.Gatherer)).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthz(d.Store, d.Logger)).Methods(http.MethodGet)

	r.Handle("/auth/register", middleware.RequireJSON(http.HandlerFunc(d.Auth.Register))).Methods(http.MethodPost)
	r.Handle("/auth/login", middleware.RequireJSON(http.HandlerFunc(d.Auth.Login))).Methods(http.MethodPost)

	// сначала токен, потом Content-Type: без токена всегда 401
	requireAuth := middleware.RequireAuth(d.Guard, d.Logger)
	protected := func(h http.HandlerFunc) http.Handler { return requireAuth(middleware.RequireJSON(h)) }

	r.Handle("/tasks/", protected(d.Tasks.ListTasks)).Methods(http.MethodGet)
	r.Handle("/tasks/", protected(d.Tasks.CreateTask)).Methods(http.MethodPost)
	r.Handle("/tasks/{id}", protected(d.Tasks.GetTask)).Methods(http.MethodGet)
	r.Handle("/tasks/{id}", protected(d.Tasks.UpdateTask)).Methods(http.MethodPut)
	r.Handle("/tasks/{id}", protected(d.Tasks.DeleteTask)).Methods(http.MethodDelete)
	r.Handle("/tasks/{id}/done", protected(d.Tasks.ToggleDone)).Methods(http.MethodPatch)

	r.Handle("/performers/", protected(d.Performers.ListPerformers)).Methods(http.MethodGet)
	r.Handle("/performers/", protected(d.Performers.CreatePerformer)).Methods(http.MethodPost)
	r.Handle("/performers/{id}", protected(d.Performers.GetPerformer)).Methods(http.MethodGet)
	r.Handle("/performers/{id}", protected(d.Performers.UpdatePerformer)).Methods(http.MethodPut)
	r.Handle("/performers/{id}", protected(d.Performers.DeletePerformer)).Methods(http.MethodDelete)

	return r
}

func healthz(store Pinger, l *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			handlerLog(l, r, "Healthz").WithError(err).Error("store ping failed")
			respond.Status(w, http.StatusServiceUnavailable, "Store is unavailable")
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
