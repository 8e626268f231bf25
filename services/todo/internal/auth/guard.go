package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sun1tar/todo-backend/services/todo/internal/apperr"
	"github.com/sun1tar/todo-backend/services/todo/internal/models"
)

const bearerPrefix = "Bearer "

// TokenVerifier проверяет токен и возвращает id пользователя
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Guard определяет вызывающего по Bearer-токену
type Guard struct {
	verifier TokenVerifier
}

func NewGuard(v TokenVerifier) *Guard {
	return &Guard{verifier: v}
}

// ResolveCaller читает заголовок Authorization вида "Bearer <token>"
func (g *Guard) ResolveCaller(r *http.Request) (int64, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, bearerPrefix)
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return 0, apperr.New(apperr.Unauthorized, "Missing or invalid Authorization header")
	}
	return g.verifier.Verify(token)
}

// ErrTaskNotFound отдаётся и для отсутствующей, и для чужой задачи,
// чтобы нельзя было узнать о существовании чужих id.
var ErrTaskNotFound = apperr.New(apperr.NotFound, "Task not found")

// AssertOwns проверяет, что задача существует и принадлежит userID
func AssertOwns(task *models.Task, userID int64) error {
	if !task.OwnedBy(userID) {
		return ErrTaskNotFound
	}
	return nil
}

type userIDKey struct{}

// WithUserID кладёт id вызывающего в контекст
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext достаёт id вызывающего из контекста
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok && id > 0
}
