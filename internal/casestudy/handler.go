// Package casestudy serves the read-only practice case-study catalogue.
package casestudy

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/syllabus"
)

type Handler struct {
	logger *zap.SugaredLogger
}

func NewHandler(logger *zap.SugaredLogger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, syllabus.CaseStudies())
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c, ok := syllabus.CaseStudy(id)
	if !ok {
		common.WriteError(w, h.logger, fmt.Errorf("case study %s: %w", id, common.ErrItemNotFound))
		return
	}
	common.WriteJSON(w, http.StatusOK, c)
}
