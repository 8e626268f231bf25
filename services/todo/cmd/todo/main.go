package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/sun1tar/todo-backend/services/todo/internal/auth"
	"github.com/sun1tar/todo-backend/services/todo/internal/config"
	handlers "github.com/sun1tar/todo-backend/services/todo/internal/http"
	customMiddleware "github.com/sun1tar/todo-backend/services/todo/internal/middleware"
	"github.com/sun1tar/todo-backend/services/todo/internal/repository"
	"github.com/sun1tar/todo-backend/services/todo/internal/service"
	"github.com/sun1tar/todo-backend/shared/logger"
	"github.com/sun1tar/todo-backend/shared/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("todo", "info").WithError(err).Fatal("failed to load config")
	}
	logrusLogger := logger.New("todo", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализация хранилища
	store, err := openStore(ctx, cfg.DB, logrusLogger)
	if err != nil {
		logrusLogger.WithError(err).Fatal("failed to initialize store")
	}
	defer store.Close()

	// Сервисы
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	userService := service.NewUserService(store, hasher, tokens, logrusLogger)
	taskService := service.NewTaskService(store, store, logrusLogger)
	performerService := service.NewPerformerService(store, logrusLogger)

	// Метрики в собственном реестре
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := handlers.NewHandler(handlers.RouterDeps{
		Auth:       handlers.NewAuthHandler(userService, logrusLogger),
		Tasks:      handlers.NewTaskHandler(taskService, logrusLogger),
		Performers: handlers.NewPerformerHandler(performerService, logrusLogger),
		Guard:      auth.NewGuard(tokens),
		Store:      store,
		Metrics:    customMiddleware.NewMetrics(registry),
		Gatherer:   registry,
		Logger:     logrusLogger,

		CORSAllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
	})

	// Цепочка middleware (порядок важен!); CORS и проверка токена внутри router
	var handler http.Handler = router
	handler = middleware.LoggingMiddleware(logrusLogger)(handler) // 3. логирование
	handler = customMiddleware.SecurityHeadersMiddleware(handler) // 2. заголовки безопасности
	handler = middleware.RequestIDMiddleware(handler)             // 1. request-id

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logrusLogger.WithFields(logrus.Fields{
			"port":      cfg.HTTP.Port,
			"db_driver": cfg.DB.Driver,
		}).Info("todo service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrusLogger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logrusLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrusLogger.WithError(err).Error("graceful shutdown failed")
		return
	}
	logrusLogger.Info("todo service stopped")
}

// openStore выбирает хранилище по DB_DRIVER; для SQL применяет схему
func openStore(ctx context.Context, db config.DatabaseConfig, l *logrus.Logger) (repository.Store, error) {
	if db.Driver == config.DriverMemory {
		l.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := repository.NewSQLStore(connectCtx, db.Driver, db.DSN())
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(connectCtx); err != nil {
		store.Close()
		return nil, err
	}
	l.WithFields(logrus.Fields{"driver": db.Driver, "host": db.Host, "db": db.DBName}).Info("database connected")
	return store, nil
}
