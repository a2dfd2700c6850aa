package httpapi

import (
	"net/http"

	"github.com/openmohaa/ladder-core/internal/ladderr"
	"github.com/openmohaa/ladder-core/internal/models"
)

type resolveRequest struct {
	MatchID int64          `json:"match_id"`
	AdminID int64          `json:"admin_id"`
	Outcome models.Outcome `json:"outcome"`
	Reason  string         `json:"reason"`
}

// Resolve handles POST /admin/resolve.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withIdempotency(w, r, func() (int, interface{}) {
		match, err := h.admin.Resolve(req.MatchID, req.AdminID, req.Outcome, req.Reason)
		if err != nil {
			return statusAndBodyForError(err)
		}
		h.store.RecordCommandCall(req.AdminID, "resolve")
		return http.StatusOK, match
	})
}

type adjustMMRRequest struct {
	DiscordUID int64              `json:"discord_uid"`
	Race       models.Race        `json:"race"`
	Op         models.MMRAdjustOp `json:"op"`
	Value      int                `json:"value"`
	Reason     string             `json:"reason"`
	AdminID    int64              `json:"admin_id"`
}

// AdjustMMR handles POST /admin/adjust_mmr.
func (h *Handler) AdjustMMR(w http.ResponseWriter, r *http.Request) {
	var req adjustMMRRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withIdempotency(w, r, func() (int, interface{}) {
		entry, err := h.commands.AdjustMMR(req.DiscordUID, req.Race, req.Op, req.Value, req.Reason)
		if err != nil {
			return statusAndBodyForError(err)
		}
		h.store.RecordCommandCall(req.AdminID, "adjust_mmr")
		return http.StatusOK, entry
	})
}

type targetedCommandRequest struct {
	DiscordUID int64  `json:"discord_uid"`
	Reason     string `json:"reason"`
	AdminID    int64  `json:"admin_id"`
}

// RemoveFromQueue handles POST /admin/remove_from_queue.
func (h *Handler) RemoveFromQueue(w http.ResponseWriter, r *http.Request) {
	var req targetedCommandRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withIdempotency(w, r, func() (int, interface{}) {
		h.commands.RemoveFromQueue(req.DiscordUID, req.Reason)
		h.store.RecordCommandCall(req.AdminID, "remove_from_queue")
		return http.StatusOK, map[string]bool{"removed": true}
	})
}

type resetAbortsRequest struct {
	DiscordUID int64  `json:"discord_uid"`
	NewCount   int    `json:"new_count"`
	Reason     string `json:"reason"`
	AdminID    int64  `json:"admin_id"`
}

// ResetAborts handles POST /admin/reset_aborts.
func (h *Handler) ResetAborts(w http.ResponseWriter, r *http.Request) {
	var req resetAbortsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withIdempotency(w, r, func() (int, interface{}) {
		player, err := h.commands.ResetAborts(req.DiscordUID, req.NewCount, req.Reason)
		if err != nil {
			return statusAndBodyForError(err)
		}
		h.store.RecordCommandCall(req.AdminID, "reset_aborts")
		return http.StatusOK, player
	})
}

type clearQueueRequest struct {
	Reason  string `json:"reason"`
	AdminID int64  `json:"admin_id"`
}

// ClearQueue handles POST /admin/clear_queue.
func (h *Handler) ClearQueue(w http.ResponseWriter, r *http.Request) {
	var req clearQueueRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withIdempotency(w, r, func() (int, interface{}) {
		h.commands.ClearQueue(req.Reason)
		h.store.RecordCommandCall(req.AdminID, "clear_queue")
		return http.StatusOK, map[string]bool{"cleared": true}
	})
}

// Ban handles POST /admin/ban.
func (h *Handler) Ban(w http.ResponseWriter, r *http.Request) {
	var req targetedCommandRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.withIdempotency(w, r, func() (int, interface{}) {
		if err := h.commands.Ban(req.DiscordUID, req.Reason); err != nil {
			return statusAndBodyForError(err)
		}
		h.store.RecordCommandCall(req.AdminID, "ban")
		return http.StatusOK, map[string]bool{"banned": true}
	})
}

// statusAndBodyForError maps err to an HTTP status and an error-shaped
// body, for handlers that run their logic inside withIdempotency's
// compute closure (which must itself return the final status/body pair
// rather than writing directly to the ResponseWriter).
func statusAndBodyForError(err error) (int, interface{}) {
	kind, msg := ladderr.InvalidInput, err.Error()
	if le, ok := asLadderr(err); ok {
		kind, msg = le.Kind, le.Message
	}
	return statusForKind(kind), map[string]string{"error": msg}
}
