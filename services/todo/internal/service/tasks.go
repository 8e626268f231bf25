package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sun1tar/todo-backend/services/todo/internal/apperr"
	"github.com/sun1tar/todo-backend/services/todo/internal/auth"
	"github.com/sun1tar/todo-backend/services/todo/internal/models"
	"github.com/sun1tar/todo-backend/services/todo/internal/repository"
	"github.com/sun1tar/todo-backend/shared/logger"
	"github.com/sun1tar/todo-backend/shared/middleware"
)

// SubtaskInput подзадача из запроса; nil-поля не переданы
type SubtaskInput struct {
	ID    string
	Title *string
	Done  *bool
}

type CreateTaskInput struct {
	ID          string
	Title       string
	Description *string
	Deadline    *string
	PerformerID *string
	Subtasks    []SubtaskInput
}

// UpdateTaskInput частичное обновление задачи.
// Title, Description и Done сохраняют текущее значение, если nil.
// Deadline и PerformerID перезаписываются всегда: nil очищает поле.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Done        *bool
	Deadline    *string
	PerformerID *string
	Subtasks    []SubtaskInput
}

type TaskService struct {
	tasks      repository.TaskRepository
	performers repository.PerformerRepository
	logger     *logrus.Logger
}

func NewTaskService(tasks repository.TaskRepository, performers repository.PerformerRepository, l *logrus.Logger) *TaskService {
	return &TaskService{tasks: tasks, performers: performers, logger: l}
}

func (s *TaskService) log(ctx context.Context) *logrus.Entry {
	return logger.WithRequestID(s.logger, middleware.GetRequestID(ctx)).WithField("component", "task_service")
}

func (s *TaskService) Create(ctx context.Context, ownerID int64, in CreateTaskInput) (*models.Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return nil, apperr.New(apperr.BadRequest, "Task id is required")
	}
	if in.Title == "" {
		return nil, apperr.New(apperr.BadRequest, "Task title is required")
	}

	subtasks := make([]models.Subtask, 0, len(in.Subtasks))
	for _, st := range in.Subtasks {
		if st.ID == "" || st.Title == nil || *st.Title == "" {
			return nil, apperr.New(apperr.BadRequest, "Subtask id and title are required")
		}
		subtasks = append(subtasks, models.Subtask{
			ID:     st.ID,
			Title:  *st.Title,
			Done:   st.Done != nil && *st.Done,
			TaskID: in.ID,
		})
	}

	performerID, err := s.resolvePerformer(ctx, in.PerformerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ServerError, "An error occurred while creating task", err)
	}

	task := &models.Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Done:        false, // новая задача всегда не выполнена
		Deadline:    in.Deadline,
		UserID:      ownerID,
		PerformerID: performerID,
		Subtasks:    subtasks,
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, apperr.Wrap(apperr.ServerError, "An error occurred while creating task", err)
	}

	s.log(ctx).WithFields(logrus.Fields{"task_id": task.ID, "user_id": ownerID}).Info("task created")
	return task, nil
}

// resolvePerformer возвращает id существующего исполнителя или nil.
// Неизвестный id не ошибка: задача просто сохраняется без исполнителя.
func (s *TaskService) resolvePerformer(ctx context.Context, id *string) (*string, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	p, err := s.performers.GetPerformer(ctx, *id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		s.log(ctx).WithField("performer_id", *id).Debug("performer not found, task saved without performer")
		return nil, nil
	}
	return &p.ID, nil
}

// loadOwned загружает задачу вызывающего; чужая задача неотличима от отсутствующей
func (s *TaskService) loadOwned(ctx context.Context, ownerID int64, id string) (*models.Task, error) {
	task, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.ServerError, "An error occurred while fetching task", err)
	}
	if err := auth.AssertOwns(task, ownerID); err != nil {
		if task != nil {
			s.log(ctx).WithFields(logrus.Fields{
				"task_id":  id,
				"user_id":  ownerID,
				"owner_id": task.UserID,
			}).Warn("access to foreign task denied")
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID int64, id string) (*models.Task, error) {
	return s.loadOwned(ctx, ownerID, id)
}

// List задачи вызывающего; query фильтрует по подстроке названия
func (s *TaskService) List(ctx context.Context, ownerID int64, query string) ([]*models.Task, error) {
	tasks, err := s.tasks.ListTasks(ctx, ownerID, strings.TrimSpace(query))
	if err != nil {
		return nil, apperr.Wrap(apperr.ServerError, "An error occurred while fetching tasks", err)
	}
	return tasks, nil
}

// ToggleDone переключает признак выполнения и возвращает новое значение
func (s *TaskService) ToggleDone(ctx context.Context, ownerID int64, id string) (bool, error) {
	task, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return false, err
	}
	if err := s.tasks.ToggleTaskDone(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, auth.ErrTaskNotFound
		}
		return false, apperr.Wrap(apperr.ServerError, "An error occurred while updating task", err)
	}

	s.log(ctx).WithFields(logrus.Fields{"task_id": id, "is_done": !task.Done}).Debug("task status toggled")
	return !task.Done, nil
}

func (s *TaskService) Update(ctx context.Context, ownerID int64, id string, in UpdateTaskInput) (*models.Task, error) {
	task, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, apperr.New(apperr.BadRequest, "Task title cannot be empty")
		}
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = in.Description
	}
	if in.Done != nil {
		task.Done = *in.Done
	}
	task.Deadline = in.Deadline

	performerID, err := s.resolvePerformer(ctx, in.PerformerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ServerError, "An error occurred while updating task", err)
	}
	task.PerformerID = performerID
	task.Performer = nil

	changes, err := s.mergeSubtasks(ctx, task, in.Subtasks)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.UpdateTask(ctx, task, changes); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrTaskNotFound
		}
		return nil, apperr.Wrap(apperr.ServerError, "An error occurred while updating task", err)
	}

	s.log(ctx).WithFields(logrus.Fields{
		"task_id":          id,
		"subtasks_updated": len(changes.Updated),
		"subtasks_created": len(changes.Created),
	}).Info("task updated")
	return task, nil
}

// mergeSubtasks применяет входные подзадачи к task.Subtasks: существующие
// обновляются на месте, новые добавляются. Не упомянутые остаются как есть.
func (s *TaskService) mergeSubtasks(ctx context.Context, task *models.Task, inputs []SubtaskInput) (models.SubtaskChanges, error) {
	var changes models.SubtaskChanges
	seen := make(map[string]bool, len(inputs))

	for _, in := range inputs {
		if in.ID == "" {
			return changes, apperr.New(apperr.BadRequest, "Subtask id is required")
		}
		if seen[in.ID] {
			return changes, apperr.New(apperr.BadRequest, "Duplicate subtask id: "+in.ID)
		}
		seen[in.ID] = true

		if cur, ok := task.Subtask(in.ID); ok {
			if in.Title != nil {
				if *in.Title == "" {
					return changes, apperr.New(apperr.BadRequest, "Subtask title cannot be empty")
				}
				cur.Title = *in.Title
			}
			if in.Done != nil {
				cur.Done = *in.Done
			}
			changes.Updated = append(changes.Updated, *cur)
			continue
		}

		other, err := s.tasks.GetSubtask(ctx, in.ID)
		if err != nil {
			return changes, apperr.Wrap(apperr.ServerError, "An error occurred while updating task", err)
		}
		if other != nil {
			return changes, apperr.New(apperr.BadRequest, "Subtask id already in use: "+in.ID)
		}
		if in.Title == nil || *in.Title == "" {
			return changes, apperr.New(apperr.BadRequest, "Subtask title is required")
		}

		created := models.Subtask{
			ID:     in.ID,
			Title:  *in.Title,
			Done:   in.Done != nil && *in.Done,
			TaskID: task.ID,
		}
		changes.Created = append(changes.Created, created)
		task.Subtasks = append(task.Subtasks, created)
	}
	return changes, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID int64, id string) error {
	if _, err := s.loadOwned(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return auth.ErrTaskNotFound
		}
		return apperr.Wrap(apperr.ServerError, "An error occurred while deleting task", err)
	}

	s.log(ctx).WithField("task_id", id).Info("task deleted")
	return nil
}
