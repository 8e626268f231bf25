package http

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/sun1tar/todo-backend/services/todo/internal/respond"
	"github.com/sun1tar/todo-backend/services/todo/internal/service"
)

// AuthHandler регистрация и вход; токен отдаётся телом ответа как text/plain
type AuthHandler struct {
	userService *service.UserService
	logger      *logrus.Logger
}

func NewAuthHandler(us *service.UserService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{userService: us, logger: logger}
}

// Register обрабатывает POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	logEntry := handlerLog(h.logger, r, "Register")

	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, logEntry, err, "invalid request body")
		return
	}

	token, err := h.userService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		fail(w, logEntry.WithField("username", req.Username), err, "registration failed")
		return
	}

	respond.Text(w, http.StatusCreated, token)
}

// Login обрабатывает POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logEntry := handlerLog(h.logger, r, "Login")

	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, logEntry, err, "invalid request body")
		return
	}

	token, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		fail(w, logEntry.WithField("username", req.Username), err, "login failed")
		return
	}

	logEntry.WithField("username", req.Username).Info("user logged in")
	respond.Text(w, http.StatusOK, token)
}
