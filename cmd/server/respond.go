package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/quote.works/internal/quote"
	"github.com/Simplici0/quote.works/internal/validate"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// bodyError reports a request body that is not valid JSON for the target type.
type bodyError struct {
	err error
}

func (e *bodyError) Error() string { return "invalid JSON body: " + e.err.Error() }
func (e *bodyError) Unwrap() error { return e.err }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads exactly one JSON value into dst. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &bodyError{err: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &bodyError{err: fmt.Errorf("body must contain a single JSON value")}
	}
	return nil
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validate.Error
	var berr *bodyError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.As(err, &berr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: berr.Error()})
	case errors.Is(err, quote.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, quote.ErrUnknownReference):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, quote.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
