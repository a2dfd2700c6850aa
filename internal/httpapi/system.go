package httpapi

import (
	"encoding/json"
	"net/http"
	"time"
)

// Health is a liveness probe: if the process can answer HTTP at all, it's
// alive. Mirrors the teacher's unconditional 200 Health handler.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready is a readiness probe: every durable dependency must answer a
// ping, following the teacher's Ready handler pattern.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]bool{}
	if h.postgres != nil {
		checks["postgres"] = h.postgres.Ping(ctx) == nil
	}
	if h.clickhouse != nil {
		checks["clickhouse"] = h.clickhouse.Ping(ctx) == nil
	}
	if h.redis != nil {
		checks["redis"] = h.redis.Ping(ctx).Err() == nil
	}

	allHealthy := true
	for _, ok := range checks {
		if !ok {
			allHealthy = false
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !allHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ready":  allHealthy,
		"checks": checks,
	})
}
