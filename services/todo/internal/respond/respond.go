// Package respond пишет JSON-ответы и ошибки API в едином формате.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sun1tar/todo-backend/services/todo/internal/apperr"
)

// ErrorBody тело ответа с ошибкой
type ErrorBody struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

// MessageBody тело ответа об успешной операции
type MessageBody struct {
	Message string `json:"message"`
}

// JSON сериализует payload с заданным статусом
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Message отвечает {"message": ...}
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageBody{Message: message})
}

// Text отвечает строкой как есть
func Text(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// Error отвечает ошибкой; причина ошибки клиенту не показывается
func Error(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		JSON(w, appErr.Kind.Status(), ErrorBody{Error: appErr.Kind.String(), Description: appErr.Description})
		return
	}
	JSON(w, http.StatusInternalServerError, ErrorBody{
		Error:       apperr.ServerError.String(),
		Description: "Internal server error",
	})
}

// Status отвечает ошибкой с произвольным статусом (404/405 роутера)
func Status(w http.ResponseWriter, status int, description string) {
	JSON(w, status, ErrorBody{Error: http.StatusText(status), Description: description})
}
