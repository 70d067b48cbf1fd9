// Package errors renders API error responses with a consistent JSON
// shape and logs the underlying cause.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/dalemusser/enrollhub/internal/app/system/sheetsource"
)

const (
	// MsgDegraded is shown when the upstream sheet service is down and
	// no cached data can be served.
	MsgDegraded = "Report data is temporarily unavailable. Please try again shortly."
	// MsgGeneral is the catch-all for unexpected failures.
	MsgGeneral = "Something went wrong. Please try again."
)

// ErrorLogger serves error responses and records the cause.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Serve logs err and writes a JSON error body. Transient upstream
// failures get the degraded-service message so callers know to retry.
func (e *ErrorLogger) Serve(w http.ResponseWriter, r *http.Request, status int, err error) {
	e.log.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err))

	msg := MsgGeneral
	if errors.Is(err, sheetsource.ErrServiceUnavailable) {
		msg = MsgDegraded
	}
	writeJSON(w, status, msg)
}

// BadRequest writes a 400 with the given message.
func (e *ErrorLogger) BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, http.StatusBadRequest, msg)
}

// NotFound writes a 404 with the given message.
func (e *ErrorLogger) NotFound(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, http.StatusNotFound, msg)
}

func writeJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
