package profile

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/user"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/user/entity"
)

// Handler exposes the caller's own study record. Routes sit behind
// user.Handler.RequireSession.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) respond(w http.ResponseWriter, v any, err error) {
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, v)
}

func actorID(r *http.Request) string {
	if u := user.ActorFrom(r.Context()); u != nil {
		return u.ID
	}
	return ""
}

func (h *Handler) UpdateData(w http.ResponseWriter, r *http.Request) {
	var patch entity.UserDataPatch
	if err := common.DecodeJSON(w, r, &patch); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	u, err := h.svc.UpdateUserData(r.Context(), actorID(r), patch)
	h.respond(w, u, err)
}

func (h *Handler) CycleTopic(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		common.WriteError(w, h.logger, common.Validation("topic id must be an integer"))
		return
	}
	u, err := h.svc.CycleTopicStatus(r.Context(), actorID(r), id)
	h.respond(w, u, err)
}

func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	var req NewTask
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	u, err := h.svc.AddTask(r.Context(), actorID(r), req)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.ToggleTask(r.Context(), actorID(r), r.PathValue("id"))
	h.respond(w, u, err)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.DeleteTask(r.Context(), actorID(r), r.PathValue("id"))
	h.respond(w, u, err)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary(r.Context(), actorID(r), r.URL.Query().Get("date"))
	h.respond(w, sum, err)
}
