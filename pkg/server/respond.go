package server

import (
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/jsonflow/pkg/errors"
	"github.com/matzehuels/jsonflow/pkg/session"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	err = classify(err)
	status := errs.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    errs.GetCode(err),
		Message: errs.UserMessage(err),
	}})
}

// classify attaches an error code to errors from packages that only use
// sentinels.
func classify(err error) error {
	if errs.GetCode(err) != "" {
		return err
	}
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, session.ErrNotFound):
		return errs.Wrap(errs.ErrCodeSessionNotFound, err, "load session")
	case errors.Is(err, session.ErrExpired):
		return errs.Wrap(errs.ErrCodeSessionExpired, err, "load session")
	case errors.As(err, &maxErr):
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "request body")
	}
	return errs.Wrap(errs.ErrCodeInternal, err, "internal error")
}
