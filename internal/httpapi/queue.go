package httpapi

import (
	"net/http"

	"github.com/openmohaa/ladder-core/internal/models"
)

type enterQueueRequest struct {
	DiscordUID      int64         `json:"discord_uid"`
	SelectedRaces   []models.Race `json:"selected_races"`
	VetoedMaps      []string      `json:"vetoed_maps"`
	PresenterHandle string        `json:"presenter_handle"`
}

// EnterQueue handles POST /queue/enter.
func (h *Handler) EnterQueue(w http.ResponseWriter, r *http.Request) {
	var req enterQueueRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.queue.Enter(req.DiscordUID, req.SelectedRaces, req.VetoedMaps, req.PresenterHandle)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.store.UpdatePreferences(req.DiscordUID, req.SelectedRaces, req.VetoedMaps)
	h.jsonResponse(w, http.StatusOK, entry)
}

type leaveQueueRequest struct {
	DiscordUID int64 `json:"discord_uid"`
}

// LeaveQueue handles POST /queue/leave.
func (h *Handler) LeaveQueue(w http.ResponseWriter, r *http.Request) {
	var req leaveQueueRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.queue.Leave(req.DiscordUID)
	h.jsonResponse(w, http.StatusOK, map[string]bool{"left": true})
}

// QueueStatus handles GET /queue/status/{uid}.
func (h *Handler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	uid := int64URLParam(r, "uid")
	h.jsonResponse(w, http.StatusOK, map[string]bool{"queued": h.queue.IsQueued(uid)})
}
