package casestudy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/user/entity"
)

func serve(h *Handler, id string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /case-studies", h.List)
	mux.HandleFunc("GET /case-studies/{id}", h.Get)
	path := "/case-studies"
	if id != "" {
		path += "/" + id
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler_List(t *testing.T) {
	rec := serve(NewHandler(zap.NewNop().Sugar()), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var all []entity.CaseStudy
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 8)
}

func TestHandler_Get(t *testing.T) {
	h := NewHandler(zap.NewNop().Sugar())

	rec := serve(h, "cs2")
	require.Equal(t, http.StatusOK, rec.Code)
	var c entity.CaseStudy
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "cs2", c.ID)
	assert.Len(t, c.Flashcards, 3)

	rec = serve(h, "missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body common.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "item_not_found", body.Error)
}
