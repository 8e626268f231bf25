package http

import (
	"github.com/sun1tar/todo-backend/services/todo/internal/models"
	"github.com/sun1tar/todo-backend/services/todo/internal/service"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// doneFlag признак выполнения принимается и как isDone, и как is_done
type doneFlag struct {
	IsDone      *bool `json:"isDone"`
	IsDoneSnake *bool `json:"is_done"`
}

func (d doneFlag) value() *bool {
	if d.IsDone != nil {
		return d.IsDone
	}
	return d.IsDoneSnake
}

type subtaskRequest struct {
	ID    string  `json:"id"`
	Title *string `json:"title"`
	doneFlag
}

type createTaskRequest struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	Deadline    *string          `json:"deadline"`
	PerformerID *string          `json:"performer_id"`
	Subtasks    []subtaskRequest `json:"subtasks"`
}

type updateTaskRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Deadline    *string          `json:"deadline"`
	PerformerID *string          `json:"performer_id"`
	Subtasks    []subtaskRequest `json:"subtasks"`
	doneFlag
}

type performerRequest struct {
	ID         string  `json:"id"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	MiddleName *string `json:"middle_name"`
	BirthDate  *string `json:"birth_date"`
}

func toSubtaskInputs(reqs []subtaskRequest) []service.SubtaskInput {
	inputs := make([]service.SubtaskInput, len(reqs))
	for i, st := range reqs {
		inputs[i] = service.SubtaskInput{ID: st.ID, Title: st.Title, Done: st.value()}
	}
	return inputs
}

func (req createTaskRequest) toInput() service.CreateTaskInput {
	return service.CreateTaskInput{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		PerformerID: req.PerformerID,
		Subtasks:    toSubtaskInputs(req.Subtasks),
	}
}

func (req updateTaskRequest) toInput() service.UpdateTaskInput {
	return service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Done:        req.value(),
		Deadline:    req.Deadline,
		PerformerID: req.PerformerID,
		Subtasks:    toSubtaskInputs(req.Subtasks),
	}
}

func (req performerRequest) toInput() service.PerformerInput {
	return service.PerformerInput{
		ID:         req.ID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		BirthDate:  req.BirthDate,
	}
}

// Ответы. Отсутствующие необязательные поля сериализуются как null.

type subtaskResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	IsDone bool   `json:"is_done"`
}

type taskPerformerResponse struct {
	ID         string  `json:"id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	MiddleName *string `json:"middle_name"`
}

type taskResponse struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description *string                `json:"description"`
	IsDone      bool                   `json:"is_done"`
	Deadline    *string                `json:"deadline"`
	Performer   *taskPerformerResponse `json:"performer"`
	Subtasks    []subtaskResponse      `json:"subtasks"`
}

type performerResponse struct {
	ID         string  `json:"id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	MiddleName *string `json:"middle_name"`
	BirthDate  *string `json:"birth_date"`
}

func toTaskResponse(t *models.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsDone:      t.Done,
		Deadline:    t.Deadline,
		Subtasks:    make([]subtaskResponse, len(t.Subtasks)),
	}
	if p := t.Performer; p != nil {
		resp.Performer = &taskPerformerResponse{
			ID:         p.ID,
			FirstName:  p.FirstName,
			LastName:   p.LastName,
			MiddleName: p.MiddleName,
		}
	}
	for i, st := range t.Subtasks {
		resp.Subtasks[i] = subtaskResponse{ID: st.ID, Title: st.Title, IsDone: st.Done}
	}
	return resp
}

func toTaskResponses(tasks []*models.Task) []taskResponse {
	result := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = toTaskResponse(t)
	}
	return result
}

func toPerformerResponse(p *models.Performer) performerResponse {
	return performerResponse{
		ID:         p.ID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		MiddleName: p.MiddleName,
		BirthDate:  p.BirthDate,
	}
}

func toPerformerResponses(performers []*models.Performer) []performerResponse {
	result := make([]performerResponse, len(performers))
	for i, p := range performers {
		result[i] = toPerformerResponse(p)
	}
	return result
}
