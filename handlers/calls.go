package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"pulsechat/common"
	"pulsechat/middleware"
	"pulsechat/models"
)

type recordCallRequest struct {
	ReceiverID int64             `json:"receiver_id"`
	Status     models.CallStatus `json:"status"`
	Duration   int64             `json:"duration"`
	StartedAt  time.Time         `json:"started_at"`
	EndedAt    *time.Time        `json:"ended_at"`
}

// RecordCall stores the outcome of a finished call. Records are write-once;
// live signaling never touches the database.
func (h *Handler) RecordCall(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req recordCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if req.ReceiverID <= 0 {
		h.respondError(w, r, common.ErrInvalidIdentifier)
		return
	}
	if !req.Status.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid call status"})
		return
	}
	if req.Duration < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid call duration"})
		return
	}
	if _, err := h.db.GetUser(r.Context(), req.ReceiverID); err != nil {
		h.respondError(w, r, err)
		return
	}

	startedAt := req.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}

	call, err := h.db.CreateCall(r.Context(), &models.Call{
		CallerID:   user.ID,
		ReceiverID: req.ReceiverID,
		Status:     req.Status,
		Duration:   req.Duration,
		StartedAt:  startedAt,
		EndedAt:    req.EndedAt,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, call)
}

// CallHistory returns the caller's call log, newest first.
func (h *Handler) CallHistory(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	calls, err := h.db.CallsByUser(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if calls == nil {
		calls = []models.CallWithUser{}
	}
	writeJSON(w, http.StatusOK, calls)
}

// InviteCall pushes a call invite to the callee over the relay. The HTTP
// path exists for clients that signal before their websocket is up.
func (h *Handler) InviteCall(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req models.CallInvitePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	delivered, err := h.relay.CallUser(r.Context(), user.ID, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"delivered": delivered > 0,
	})
}
