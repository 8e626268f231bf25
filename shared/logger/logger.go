package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New создаёт структурированный JSON-логгер для сервиса.
// Пустой или неизвестный уровень означает info.
func New(serviceName, level string) *logrus.Logger {
	return NewWithOutput(serviceName, level, os.Stdout)
}

// NewWithOutput то же, что New, но с явным writer (удобно в тестах)
func NewWithOutput(serviceName, level string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	l.SetLevel(logrus.InfoLevel)
	if level != "" {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			l.SetLevel(lvl)
		}
	}

	if serviceName != "" {
		l.AddHook(serviceHook{name: serviceName})
	}
	return l
}

// WithRequestID добавляет request-id в контекст логгера
func WithRequestID(l *logrus.Logger, requestID string) *logrus.Entry {
	if requestID == "" {
		return logrus.NewEntry(l)
	}
	return l.WithField("request_id", requestID)
}

// serviceHook добавляет поле service во все записи
type serviceHook struct {
	name string
}

func (h serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h serviceHook) Fire(e *logrus.Entry) error {
	if _, ok := e.Data["service"]; !ok {
		e.Data["service"] = h.name
	}
	return nil
}
