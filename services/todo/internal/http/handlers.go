package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/sun1tar/todo-backend/services/todo/internal/apperr"
	"github.com/sun1tar/todo-backend/services/todo/internal/auth"
	"github.com/sun1tar/todo-backend/services/todo/internal/respond"
	"github.com/sun1tar/todo-backend/shared/logger"
	"github.com/sun1tar/todo-backend/shared/middleware"
)

// maxBodyBytes ограничение размера тела запроса
const maxBodyBytes = 1 << 20

var errInvalidJSON = apperr.New(apperr.BadRequest, "Invalid JSON")

// handlerLog запись лога с request_id и именем обработчика
func handlerLog(l *logrus.Logger, r *http.Request, handler string) *logrus.Entry {
	return logger.WithRequestID(l, middleware.GetRequestID(r.Context())).WithFields(logrus.Fields{
		"component": "http_handler",
		"handler":   handler,
	})
}

// decodeJSON читает тело запроса в dst; пустое тело и мусор дают BadRequest
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.BadRequest, "Request body is required")
		}
		return apperr.Wrap(apperr.BadRequest, errInvalidJSON.Description, err)
	}
	return nil
}

// fail логирует ошибку и отвечает клиенту.
// 5xx пишутся с причиной на уровне error, остальные на warn.
func fail(w http.ResponseWriter, entry *logrus.Entry, err error, msg string) {
	if apperr.KindOf(err) == apperr.ServerError {
		entry.WithError(err).Error(msg)
	} else {
		entry.WithError(err).Warn(msg)
	}
	respond.Error(w, err)
}

// callerID id пользователя, положенный RequireAuth
func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, apperr.New(apperr.Unauthorized, "Missing or invalid Authorization header"))
	}
	return id, ok
}
