package handler

import (
	"net/http"
	"time"
)

// HealthHandler handles the liveness endpoint.
type HealthHandler struct {
	now func() time.Time
}

type healthEnvelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{now: func() time.Time { return time.Now().UTC() }}
}

func (h *HealthHandler) Check(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthEnvelope{Success: true, Message: "API is running", Timestamp: h.now()})
}
