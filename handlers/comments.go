package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"pulsechat/common"
	"pulsechat/middleware"
	"pulsechat/models"
)

type createCommentRequest struct {
	ParentID *int64 `json:"parent_id"`
	Content  string `json:"content"`
}

// CreateComment adds a comment or a single-level reply to a live story.
// Replying to a reply is rejected rather than reattached to the top level.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	storyID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Comment cannot be empty"})
		return
	}

	if _, err := h.liveStory(r, storyID); err != nil {
		h.respondError(w, r, err)
		return
	}

	if req.ParentID != nil {
		parent, err := h.db.GetComment(r.Context(), *req.ParentID)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		if parent.StoryID != storyID {
			h.respondError(w, r, common.ErrValidationFailed)
			return
		}
		if parent.ParentID != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Replies cannot be nested"})
			return
		}
	}

	comment, err := h.db.CreateComment(r.Context(), storyID, user.ID, req.ParentID, content)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// ListComments returns a live story's comment tree, oldest first.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	storyID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if _, err := h.liveStory(r, storyID); err != nil {
		h.respondError(w, r, err)
		return
	}

	comments, err := h.db.CommentsByStory(r.Context(), storyID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if comments == nil {
		comments = []models.CommentWithReplies{}
	}
	writeJSON(w, http.StatusOK, comments)
}

// LikeComment increments a comment's like counter.
func (h *Handler) LikeComment(w http.ResponseWriter, r *http.Request) {
	h.adjustCommentLikes(w, r, 1)
}

// UnlikeComment decrements a comment's like counter, flooring at zero.
func (h *Handler) UnlikeComment(w http.ResponseWriter, r *http.Request) {
	h.adjustCommentLikes(w, r, -1)
}

func (h *Handler) adjustCommentLikes(w http.ResponseWriter, r *http.Request, delta int64) {
	commentID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	comment, err := h.db.GetComment(r.Context(), commentID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if _, err := h.liveStory(r, comment.StoryID); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.db.AdjustCommentLikes(r.Context(), commentID, delta); err != nil {
		h.respondError(w, r, err)
		return
	}

	updated, err := h.db.GetComment(r.Context(), commentID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "likes": updated.Likes})
}

// DeleteComment removes a comment and its replies. The comment's author and
// the story's owner may both delete.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	commentID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	comment, err := h.db.GetComment(r.Context(), commentID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if comment.UserID != user.ID {
		story, err := h.db.GetStory(r.Context(), comment.StoryID)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		if story.UserID != user.ID {
			h.respondError(w, r, common.ErrForbidden)
			return
		}
	}

	if err := h.db.DeleteComment(r.Context(), commentID); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
