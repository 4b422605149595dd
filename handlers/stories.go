package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pulsechat/common"
	"pulsechat/media"
	"pulsechat/middleware"
	"pulsechat/models"
)

type createStoryRequest struct {
	Type          models.StoryType `json:"type"`
	Caption       string           `json:"caption"`
	MediaURL      string           `json:"media_url"`
	BackgroundURL string           `json:"background_url"`
}

// CreateStory posts a story that expires after the configured TTL. Inline
// media is uploaded; if the media host is down the story is stored with the
// original payload and the response carries a warning.
func (h *Handler) CreateStory(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req createStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if !req.Type.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid story type"})
		return
	}
	caption := strings.TrimSpace(req.Caption)
	// Media is optional: a caption over a background is a legal story.
	if req.MediaURL == "" && caption == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Story needs media or a caption"})
		return
	}

	var warning string
	upload := func(payload string) string {
		if !media.IsInline(payload) {
			return payload
		}
		hosted, err := h.media.Upload(r.Context(), payload, "stories")
		if err != nil {
			h.log.Warn(r.Context(), "story media upload failed", "user_id", user.ID, "error", err)
			warning = "media could not be uploaded"
			return payload
		}
		return hosted
	}

	mediaURL := upload(req.MediaURL)
	background := req.BackgroundURL
	if background == "" {
		background = models.DefaultStoryBackground
	} else {
		background = upload(background)
	}

	now := time.Now().UTC()
	story, err := h.db.CreateStory(r.Context(), &models.Story{
		UserID:        user.ID,
		Type:          req.Type,
		Caption:       caption,
		MediaURL:      mediaURL,
		BackgroundURL: background,
		CreatedAt:     now,
		ExpiresAt:     now.Add(h.cfg.StoryTTL),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resp := map[string]any{"success": true, "story": story}
	if warning != "" {
		resp["warning"] = warning
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ListStories returns the unexpired stories visible to the caller: their
// own and their accepted contacts', newest first.
func (h *Handler) ListStories(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	stories, err := h.db.ActiveStoriesForUser(r.Context(), user.ID, time.Now().UTC())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if stories == nil {
		stories = []models.StoryWithUser{}
	}
	writeJSON(w, http.StatusOK, stories)
}

// LikeStory increments the story's like counter.
func (h *Handler) LikeStory(w http.ResponseWriter, r *http.Request) {
	h.adjustStoryLikes(w, r, 1)
}

// UnlikeStory decrements the story's like counter, flooring at zero.
func (h *Handler) UnlikeStory(w http.ResponseWriter, r *http.Request) {
	h.adjustStoryLikes(w, r, -1)
}

func (h *Handler) adjustStoryLikes(w http.ResponseWriter, r *http.Request, delta int64) {
	storyID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	story, err := h.liveStory(r, storyID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.db.AdjustStoryLikes(r.Context(), story.ID, delta); err != nil {
		h.respondError(w, r, err)
		return
	}

	updated, err := h.db.GetStory(r.Context(), story.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "likes": updated.Likes})
}

// DeleteStory removes one of the caller's own stories, hosted media included.
func (h *Handler) DeleteStory(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	storyID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	story, err := h.db.GetStory(r.Context(), storyID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if story.UserID != user.ID {
		h.respondError(w, r, common.ErrForbidden)
		return
	}

	if err := h.db.DeleteStory(r.Context(), storyID); err != nil {
		h.respondError(w, r, err)
		return
	}
	for _, ref := range []string{story.MediaURL, story.BackgroundURL} {
		if ref != "" && h.media.Hosted(ref) {
			if err := h.media.Delete(r.Context(), ref); err != nil {
				h.log.Warn(r.Context(), "story media cleanup failed", "story_id", storyID, "error", err)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// liveStory loads a story and rejects it once expired. Expired stories are
// invisible even before the sweeper collects them.
func (h *Handler) liveStory(r *http.Request, storyID int64) (*models.Story, error) {
	story, err := h.db.GetStory(r.Context(), storyID)
	if err != nil {
		return nil, err
	}
	if story.Expired(time.Now().UTC()) {
		return nil, common.ErrExpired
	}
	return story, nil
}
