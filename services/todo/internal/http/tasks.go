package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/sun1tar/todo-backend/services/todo/internal/respond"
	"github.com/sun1tar/todo-backend/services/todo/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
	logger      *logrus.Logger
}

func NewTaskHandler(ts *service.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{taskService: ts, logger: logger}
}

// ListTasks обрабатывает GET /tasks/ (?q= фильтр по названию)
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	logEntry := handlerLog(h.logger, r, "ListTasks")
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskService.List(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		fail(w, logEntry, err, "failed to list tasks")
		return
	}

	logEntry.WithField("count", len(tasks)).Debug("tasks listed")
	respond.JSON(w, http.StatusOK, toTaskResponses(tasks))
}

// CreateTask обрабатывает POST /tasks/
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	logEntry := handlerLog(h.logger, r, "CreateTask")
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, logEntry, err, "invalid request body")
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, req.toInput())
	if err != nil {
		fail(w, logEntry, err, "failed to create task")
		return
	}

	logEntry.WithField("task_id", task.ID).Info("task created successfully")
	respond.Message(w, http.StatusCreated, "Task created successfully")
}

// GetTask обрабатывает GET /tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	logEntry := handlerLog(h.logger, r, "GetTask")
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	task, err := h.taskService.Get(r.Context(), userID, id)
	if err != nil {
		fail(w, logEntry.WithField("task_id", id), err, "failed to get task")
		return
	}

	respond.JSON(w, http.StatusOK, toTaskResponse(task))
}

// UpdateTask обрабатывает PUT /tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	logEntry := handlerLog(h.logger, r, "UpdateTask")
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	logEntry = logEntry.WithField("task_id", id)

	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, logEntry, err, "invalid request body")
		return
	}

	if _, err := h.taskService.Update(r.Context(), userID, id, req.toInput()); err != nil {
		fail(w, logEntry, err, "failed to update task")
		return
	}

	logEntry.Info("task updated successfully")
	respond.Message(w, http.StatusOK, "Task updated successfully")
}

// ToggleDone обрабатывает PATCH /tasks/{id}/done
func (h *TaskHandler) ToggleDone(w http.ResponseWriter, r *http.Request) {
	logEntry := handlerLog(h.logger, r, "ToggleDone")
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	logEntry = logEntry.WithField("task_id", id)

	done, err := h.taskService.ToggleDone(r.Context(), userID, id)
	if err != nil {
		fail(w, logEntry, err, "failed to toggle task")
		return
	}

	logEntry.WithField("is_done", done).Info("task status toggled")
	respond.Message(w, http.StatusOK, "Task updated successfully")
}

// DeleteTask обрабатывает DELETE /tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	logEntry := handlerLog(h.logger, r, "DeleteTask")
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	logEntry = logEntry.WithField("task_id", id)

	if err := h.taskService.Delete(r.Context(), userID, id); err != nil {
		fail(w, logEntry, err, "failed to delete task")
		return
	}

	logEntry.Info("task deleted successfully")
	respond.Message(w, http.StatusOK, "Task deleted successfully")
}
