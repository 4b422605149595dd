package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"pulsechat/common"
	"pulsechat/middleware"
)

// ListChats returns the caller's conversation list, most recent first.
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	summaries, err := h.read.ListConversations(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

type createChatRequest struct {
	ParticipantID int64 `json:"participant_id"`
}

// CreateChat opens a chat with another user, or returns the existing one.
// A genuinely new chat is announced to both participants' inboxes.
func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if req.ParticipantID <= 0 {
		h.respondError(w, r, common.ErrInvalidIdentifier)
		return
	}
	if req.ParticipantID == user.ID {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Cannot open a chat with yourself"})
		return
	}
	if _, err := h.db.GetUser(r.Context(), req.ParticipantID); err != nil {
		h.respondError(w, r, err)
		return
	}

	if existing, err := h.db.GetChatByParticipants(r.Context(), user.ID, req.ParticipantID); err == nil {
		writeJSON(w, http.StatusOK, existing)
		return
	} else if !errors.Is(err, common.ErrNotFound) {
		h.respondError(w, r, err)
		return
	}

	chat, err := h.db.CreateChat(r.Context(), user.ID, req.ParticipantID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.relay.AnnounceChat(r.Context(), chat)
	writeJSON(w, http.StatusCreated, chat)
}

// DeleteChat removes a chat and its messages. Either participant may do it.
func (h *Handler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	chatID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	chat, err := h.db.GetChat(r.Context(), chatID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !chat.HasParticipant(user.ID) {
		h.respondError(w, r, common.ErrForbidden)
		return
	}

	if err := h.db.DeleteChat(r.Context(), chatID); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
