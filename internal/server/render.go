package server

import (
	"encoding/json"
	"helpmatch/pkg/types"
	"net/http"
)

type envelope struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data,omitempty"`
	Message    string            `json:"message,omitempty"`
	Pagination *types.Pagination `json:"pagination,omitempty"`
	Error      *errorBody        `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var kindStatus = map[types.ErrorKind]int{
	types.KindNotFound:          http.StatusNotFound,
	types.KindInvalidTransition: http.StatusBadRequest,
	types.KindConflict:          http.StatusConflict,
	types.KindUnauthenticated:   http.StatusUnauthorized,
	types.KindForbidden:         http.StatusForbidden,
	types.KindInvalidInput:      http.StatusUnprocessableEntity,
	types.KindUnavailable:       http.StatusServiceUnavailable,
}

// statusFor maps an error to its HTTP status and public body. Errors that
// are not domain errors never leak their text.
func statusFor(err error) (int, *errorBody) {
	e, ok := types.AsError(err)
	if !ok {
		return http.StatusInternalServerError, &errorBody{Code: e.Code, Message: e.Message}
	}

	status, known := kindStatus[e.Kind]
	if !known {
		status = http.StatusInternalServerError
	}

	return status, &errorBody{Code: e.Code, Message: e.Message}
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) writeData(w http.ResponseWriter, status int, data any, message string) {
	s.writeJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

func writePage[T any](s *Service, w http.ResponseWriter, page *types.Page[T]) {
	s.writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       page.Data,
		Pagination: &page.Pagination,
	})
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	status, body := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("internal error")
	}

	s.writeJSON(w, status, envelope{Success: false, Error: body})
}
