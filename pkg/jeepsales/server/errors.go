package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/nekruzvatanshoev/jeepsales/pkg/jeepsales/service"
)

var (
	errRouteNotFound    = errors.New("no route matches the request")
	errMethodNotAllowed = errors.New("method not allowed")
	errPanic            = errors.New("handler panic")
)

const internalErrorMessage = "An unplanned error occurred."

// ErrorPayload is the body of every error response
type ErrorPayload struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status code"`
	Reason     string `json:"reason"`
	URI        string `json:"uri"`
	Timestamp  string `json:"timestamp"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound), errors.Is(err, errRouteNotFound):
		return http.StatusNotFound
	case errors.Is(err, errMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// newErrorPayload builds the response body for err; internal details never leave the server
func newErrorPayload(err error, status int, r *http.Request, now time.Time) ErrorPayload {
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = internalErrorMessage
	}
	return ErrorPayload{
		Message:    msg,
		StatusCode: status,
		Reason:     http.StatusText(status),
		URI:        r.URL.Path,
		Timestamp:  now.Format(time.RFC1123),
	}
}

func (h *httpServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
	} else {
		h.log.WarnContext(r.Context(), "request rejected", "error", err, "status", status, "path", r.URL.Path)
	}

	writeJSON(w, status, newErrorPayload(err, status, r, h.now()))
}
