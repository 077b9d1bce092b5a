package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

type Prober interface {
	Probe(ctx context.Context) error
}

type HealthHandler struct {
	api    Prober
	logger zerolog.Logger
}

func NewHealthHandler(api Prober, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{api: api, logger: logger}
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready also checks that the library API answers.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.api.Probe(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Library API is unreachable")
		h.respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
