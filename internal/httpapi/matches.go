package httpapi

import (
	"net/http"
)

type confirmRequest struct {
	DiscordUID int64 `json:"discord_uid"`
}

// ConfirmMatch handles POST /matches/{id}/confirm.
func (h *Handler) ConfirmMatch(w http.ResponseWriter, r *http.Request) {
	matchID := int64URLParam(r, "id")

	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.lifecycle.Confirm(matchID, req.DiscordUID); err != nil {
		h.handleError(w, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]bool{"confirmed": true})
}

type reportRequest struct {
	DiscordUID int64 `json:"discord_uid"`
	Value      int   `json:"value"`
}

// RecordReport handles POST /matches/{id}/report.
func (h *Handler) RecordReport(w http.ResponseWriter, r *http.Request) {
	matchID := int64URLParam(r, "id")

	var req reportRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	match, err := h.lifecycle.RecordReport(matchID, req.DiscordUID, req.Value)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, match)
}

// GetMatch handles GET /matches/{id}.
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := int64URLParam(r, "id")
	match, err := h.store.GetMatch(matchID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, match)
}
