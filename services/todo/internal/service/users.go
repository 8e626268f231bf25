package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/sun1tar/todo-backend/services/todo/internal/apperr"
	"github.com/sun1tar/todo-backend/services/todo/internal/auth"
	"github.com/sun1tar/todo-backend/services/todo/internal/models"
	"github.com/sun1tar/todo-backend/services/todo/internal/repository"
	"github.com/sun1tar/todo-backend/shared/logger"
	"github.com/sun1tar/todo-backend/shared/middleware"
)

var (
	errCredentialsRequired = apperr.New(apperr.BadRequest, "Username and password are required")
	errUserExists          = apperr.New(apperr.BadRequest, "User already exists")
	errInvalidCredentials  = apperr.New(apperr.Unauthorized, "Invalid credentials")
)

// TokenIssuer выпускает токен для пользователя
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// UserService регистрация и вход
type UserService struct {
	users  repository.UserRepository
	hasher *auth.PasswordHasher
	tokens TokenIssuer
	logger *logrus.Logger
}

func NewUserService(users repository.UserRepository, hasher *auth.PasswordHasher, tokens TokenIssuer, l *logrus.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, tokens: tokens, logger: l}
}

// Register создаёт пользователя и возвращает новый токен
func (s *UserService) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", errCredentialsRequired
	}

	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", apperr.Wrap(apperr.ServerError, "An error occurred while registering user", err)
	}
	if existing != nil {
		return "", errUserExists
	}

	hash, err := s.hasher.Hash(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.New(apperr.BadRequest, "Password is too long")
	}
	if err != nil {
		return "", apperr.Wrap(apperr.ServerError, "An error occurred while registering user", err)
	}

	user := &models.User{Username: username, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", errUserExists
		}
		return "", apperr.Wrap(apperr.ServerError, "An error occurred while registering user", err)
	}

	logger.WithRequestID(s.logger, middleware.GetRequestID(ctx)).
		WithField("user_id", user.ID).
		Info("user registered")
	return s.issue(user.ID)
}

// Login проверяет пароль и возвращает новый токен
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", errCredentialsRequired
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", apperr.Wrap(apperr.ServerError, "An error occurred while logging in", err)
	}
	if user == nil || !s.hasher.Check(user.PasswordHash, password) {
		return "", errInvalidCredentials
	}
	return s.issue(user.ID)
}

func (s *UserService) issue(userID int64) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return "", apperr.Wrap(apperr.ServerError, "Failed to generate token", err)
	}
	return token, nil
}
