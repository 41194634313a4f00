package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps err onto its status and message. Server-side failures are
// logged; client mistakes only at debug.
func WriteError(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	status := HTTPStatus(err)
	if logger != nil {
		if status >= http.StatusInternalServerError {
			logger.Errorw("request failed", "err", err)
		} else {
			logger.Debugw("request rejected", "err", err)
		}
	}
	body := ErrorBody{Error: Code(err), Message: Message(err)}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidTransition) {
		body.Detail = err.Error()
	}
	WriteJSON(w, status, body)
}

// DecodeJSON reads a JSON body, reporting malformed input as a validation error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return Validation("malformed JSON body: " + err.Error())
	}
	return nil
}
