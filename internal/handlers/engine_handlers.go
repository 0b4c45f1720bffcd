package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"ms-reminders/internal/auth"
	"ms-reminders/internal/config"
	"ms-reminders/internal/engine"
)

// EngineHandler exposes the manual-trigger surface of the dispatch engine.
type EngineHandler struct {
	engine *engine.Engine
	cfg    config.Config
}

func NewEngineHandler(eng *engine.Engine, cfg config.Config) *EngineHandler {
	return &EngineHandler{
		engine: eng,
		cfg:    cfg,
	}
}

// RunScan handles POST /engine/v1/run. It kicks off one scan cycle
// synchronously and reports whether one was already in flight.
func (h *EngineHandler) RunScan(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserIDFromContext(r.Context())
	if err != nil {
		log.Printf("Error getting user ID from context: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	log.Printf("Manual scan requested by user %s", userID)

	err = h.engine.RunOnce(r.Context())
	if err != nil {
		if errors.Is(err, engine.ErrScanInFlight) {
			writeJSON(w, http.StatusConflict, map[string]string{
				"status": "busy",
				"detail": "a scan is already in progress",
			})
			return
		}
		log.Printf("Manual scan failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error",
			"detail": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
