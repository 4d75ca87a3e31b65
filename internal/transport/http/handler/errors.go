package handler

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-notify-api/internal/domain"
	"github.com/rs/zerolog/hlog"
)

const internalMessage = "internal server error"

// httpError maps domain errors to status codes. Anything unrecognised is
// logged in full, through the request logger that carries the request id,
// and answered with a generic message.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, Envelope{Success: false, Message: verr.Message, Errors: verr.Fields})
		return
	}
	for _, m := range []struct {
		sentinel error
		status   int
	}{
		{domain.ErrBadRequest, http.StatusBadRequest},
		{domain.ErrConflict, http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrNotFound, http.StatusNotFound},
	} {
		if errors.Is(err, m.sentinel) {
			writeError(w, m.status, publicMessage(err, m.sentinel))
			return
		}
	}

	route := r.URL.Path
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		route = rc.RoutePattern()
	}
	hlog.FromRequest(r).Error().
		Err(err).
		Str("route", route).
		Str("method", r.Method).
		Bytes("stack", debug.Stack()).
		Msg("unhandled error")
	writeError(w, http.StatusInternalServerError, internalMessage)
}

// publicMessage drops the trailing ": <sentinel>" added by %w wrapping.
func publicMessage(err, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}

// NotFound answers requests for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "route "+r.Method+" "+r.URL.Path+" not found")
}

// MethodNotAllowed answers known routes requested with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed on "+r.URL.Path)
}
