package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"pulsechat/media"
	"pulsechat/middleware"
	"pulsechat/models"
)

type updateProfileRequest struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// UpdateProfile changes the caller's display name and avatar. An inline
// avatar payload is uploaded; when the media host is down the original
// payload is kept and the response carries a warning.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = user.Username
	}
	if len(username) < 3 || len(username) > 20 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username must be 3-20 characters"})
		return
	}

	avatar := req.Avatar
	if avatar == "" {
		avatar = user.Avatar
	}

	var warning string
	if media.IsInline(avatar) {
		hosted, err := h.media.Upload(r.Context(), avatar, "avatars")
		if err != nil {
			h.log.Warn(r.Context(), "avatar upload failed", "user_id", user.ID, "error", err)
			warning = "avatar could not be uploaded"
		} else {
			// The old hosted avatar is replaced, not accumulated.
			if user.Avatar != "" && h.media.Hosted(user.Avatar) {
				if err := h.media.Delete(r.Context(), user.Avatar); err != nil {
					h.log.Warn(r.Context(), "old avatar cleanup failed", "user_id", user.ID, "error", err)
				}
			}
			avatar = hosted
		}
	}

	if err := h.db.UpdateProfile(r.Context(), user.ID, username, avatar); err != nil {
		h.respondError(w, r, err)
		return
	}

	updated, err := h.db.GetUser(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resp := map[string]any{"success": true, "user": updated.ToResponse()}
	if warning != "" {
		resp["warning"] = warning
	}
	writeJSON(w, http.StatusOK, resp)
}

// SearchUsers finds users by username prefix, excluding the caller.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing search query"})
		return
	}

	users, err := h.db.SearchUsers(r.Context(), query, user.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if users == nil {
		users = []models.UserResponse{}
	}
	writeJSON(w, http.StatusOK, users)
}
