package service

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sun1tar/todo-backend/services/todo/internal/apperr"
	"github.com/sun1tar/todo-backend/services/todo/internal/auth"
	"github.com/sun1tar/todo-backend/services/todo/internal/repository"
	"github.com/sun1tar/todo-backend/shared/logger"
)

type fixture struct {
	store      *repository.MemoryStore
	tokens     *auth.TokenService
	users      *UserService
	tasks      *TaskService
	performers *PerformerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	l := logger.NewWithOutput("todo", "debug", io.Discard)
	tokens := auth.NewTokenService("test-secret", 0)
	return &fixture{
		store:      store,
		tokens:     tokens,
		users:      NewUserService(store, auth.NewPasswordHasher(bcrypt.MinCost), tokens, l),
		tasks:      NewTaskService(store, store, l),
		performers: NewPerformerService(store, l),
	}
}

// register создаёт пользователя и возвращает его id
func (f *fixture) register(t *testing.T, username string) int64 {
	t.Helper()
	token, err := f.users.Register(context.Background(), username, "pw-"+username)
	require.NoError(t, err)
	id, err := f.tokens.Verify(token)
	require.NoError(t, err)
	return id
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
}
