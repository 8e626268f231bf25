package repository

import (
	"context"
	"errors"

	"github.com/sun1tar/todo-backend/services/todo/internal/models"
)

var (
	// ErrNotFound изменение или удаление не затронуло ни одной строки
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate нарушено ограничение уникальности
	ErrDuplicate = errors.New("duplicate record")
)

// Get-методы возвращают (nil, nil), если записи нет.

type TaskRepository interface {
	// CreateTask сохраняет задачу и её подзадачи в одной транзакции
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	// ListTasks возвращает задачи пользователя; titleSubstring фильтрует по названию без учёта регистра
	ListTasks(ctx context.Context, userID int64, titleSubstring string) ([]*models.Task, error)
	// Изменяющие методы затрагивают только задачу с совпадающим user_id,
	// иначе возвращают ErrNotFound.

	// UpdateTask сохраняет поля задачи и изменения подзадач в одной транзакции;
	// владелец берётся из task.UserID
	UpdateTask(ctx context.Context, task *models.Task, changes models.SubtaskChanges) error
	ToggleTaskDone(ctx context.Context, id string, userID int64) error
	// DeleteTask удаляет задачу вместе с подзадачами
	DeleteTask(ctx context.Context, id string, userID int64) error
	GetSubtask(ctx context.Context, id string) (*models.Subtask, error)
}

type PerformerRepository interface {
	ListPerformers(ctx context.Context) ([]*models.Performer, error)
	GetPerformer(ctx context.Context, id string) (*models.Performer, error)
	CreatePerformer(ctx context.Context, p *models.Performer) error
	UpdatePerformer(ctx context.Context, p *models.Performer) error
	// DeletePerformer удаляет исполнителя и обнуляет ссылки на него в задачах
	DeletePerformer(ctx context.Context, id string) error
}

type UserRepository interface {
	// CreateUser сохраняет пользователя и проставляет u.ID
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Store всё хранилище целиком
type Store interface {
	TaskRepository
	PerformerRepository
	UserRepository
	Ping(ctx context.Context) error
	Close() error
}
