package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/sun1tar/todo-backend/services/todo/internal/respond"
	"github.com/sun1tar/todo-backend/services/todo/internal/service"
)

type PerformerHandler struct {
	performerService *service.PerformerService
	logger           *logrus.Logger
}

func NewPerformerHandler(ps *service.PerformerService, logger *logrus.Logger) *PerformerHandler {
	return &PerformerHandler{performerService: ps, logger: logger}
}

func (h *PerformerHandler) ListPerformers(w http.ResponseWriter, r *http.Request) {
	performers, err := h.performerService.List(r.Context())
	if err != nil {
		fail(w, handlerLog(h.logger, r, "ListPerformers"), err, "failed to list performers")
		return
	}
	respond.JSON(w, http.StatusOK, toPerformerResponses(performers))
}

func (h *PerformerHandler) CreatePerformer(w http.ResponseWriter, r *http.Request) {
	logEntry := handlerLog(h.logger, r, "CreatePerformer")

	var req performerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, logEntry, err, "invalid request body")
		return
	}

	p, err := h.performerService.Create(r.Context(), req.toInput())
	if err != nil {
		fail(w, logEntry, err, "failed to create performer")
		return
	}

	logEntry.WithField("performer_id", p.ID).Info("performer created successfully")
	respond.Message(w, http.StatusCreated, "Performer created successfully")
}

func (h *PerformerHandler) GetPerformer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p, err := h.performerService.Get(r.Context(), id)
	if err != nil {
		fail(w, handlerLog(h.logger, r, "GetPerformer").WithField("performer_id", id), err, "failed to get performer")
		return
	}
	respond.JSON(w, http.StatusOK, toPerformerResponse(p))
}

func (h *PerformerHandler) UpdatePerformer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	logEntry := handlerLog(h.logger, r, "UpdatePerformer").WithField("performer_id", id)

	var req performerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, logEntry, err, "invalid request body")
		return
	}

	if _, err := h.performerService.Update(r.Context(), id, req.toInput()); err != nil {
		fail(w, logEntry, err, "failed to update performer")
		return
	}

	respond.Message(w, http.StatusOK, "Performer updated successfully")
}

func (h *PerformerHandler) DeletePerformer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.performerService.Delete(r.Context(), id); err != nil {
		fail(w, handlerLog(h.logger, r, "DeletePerformer").WithField("performer_id", id), err, "failed to delete performer")
		return
	}
	respond.Message(w, http.StatusOK, "Performer deleted successfully")
}
