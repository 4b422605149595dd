package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"pulsechat/common"
	"pulsechat/middleware"
	"pulsechat/models"
)

const defaultMessagePage = 50

// GetMessages returns a page of a chat's messages, newest first. Fetching
// a chat's messages marks the caller's unread messages read, which in turn
// pushes fresh summaries to both participants.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
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

	limit := queryInt(r, "limit", defaultMessagePage)
	offset := queryInt(r, "offset", 0)

	messages, err := h.db.MessagesByChat(r.Context(), chatID, limit, offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if _, err := h.relay.MarkRead(r.Context(), chatID, user.ID); err != nil {
		h.log.Warn(r.Context(), "mark-read failed", "chat_id", chatID, "user_id", user.ID, "error", err)
	}

	if messages == nil {
		messages = []models.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

// SendMessage is the HTTP path into the same pipeline websocket sends use.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	chatID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req models.SendMessagePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	req.ChatID = chatID

	msg, err := h.relay.Send(r.Context(), user.ID, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// DeleteMessage removes one of the caller's own messages.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	messageID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.relay.DeleteMessage(r.Context(), messageID, user.ID); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
