package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pulsechat/common"
	"pulsechat/middleware"
	"pulsechat/models"
)

// AdminListUsers returns every account for the admin console.
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.db.ListUsers(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if users == nil {
		users = []models.UserResponse{}
	}
	writeJSON(w, http.StatusOK, users)
}

type setRoleRequest struct {
	Role models.Role `json:"role"`
}

// AdminSetRole changes a user's role. The super admin account itself is
// immutable.
func (h *Handler) AdminSetRole(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if !req.Role.Valid() || req.Role == models.RoleSuperAdmin {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid role"})
		return
	}

	target, err := h.db.GetUser(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if target.Role == models.RoleSuperAdmin {
		h.respondError(w, r, common.ErrForbidden)
		return
	}

	if err := h.db.SetUserRole(r.Context(), userID, req.Role); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type setDisabledRequest struct {
	Disabled bool `json:"disabled"`
}

// AdminSetDisabled disables or re-enables an account. Disabled users fail
// authentication on their next request; issued tokens need no revocation.
func (h *Handler) AdminSetDisabled(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserFromContext(r)

	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if userID == actor.ID {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Cannot disable your own account"})
		return
	}

	var req setDisabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	target, err := h.db.GetUser(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if target.Role == models.RoleSuperAdmin {
		h.respondError(w, r, common.ErrForbidden)
		return
	}

	if err := h.db.SetUserDisabled(r.Context(), userID, req.Disabled); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// AdminResetPassword sets a new password for a user.
func (h *Handler) AdminResetPassword(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if len(req.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Password must be at least 6 characters"})
		return
	}

	target, err := h.db.GetUser(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if target.Role == models.RoleSuperAdmin {
		h.respondError(w, r, common.ErrForbidden)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.db.SetUserPassword(r.Context(), userID, string(hashed)); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// AdminDeleteUser purges an account and everything it owns. The response
// reports the outcome of each cascade step.
func (h *Handler) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserFromContext(r)

	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if userID == actor.ID {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Cannot delete your own account"})
		return
	}

	target, err := h.db.GetUser(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if target.Role == models.RoleSuperAdmin {
		h.respondError(w, r, common.ErrForbidden)
		return
	}

	steps, err := h.cleanup.PurgeUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "Purge incomplete",
			"steps": steps,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "steps": steps})
}

// AdminDeleteStory removes any story, moderation-style. Ownership is not
// checked; the capability gate is the authorization.
func (h *Handler) AdminDeleteStory(w http.ResponseWriter, r *http.Request) {
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

// AdminDeleteChat removes any chat and its messages.
func (h *Handler) AdminDeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.db.DeleteChat(r.Context(), chatID); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// AdminReport summarizes platform activity for the console dashboard.
func (h *Handler) AdminReport(w http.ResponseWriter, r *http.Request) {
	counts, err := h.db.Counts(r.Context(), time.Now().UTC())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

type createAdminRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminCreateUser creates an account with the admin role.
func (h *Handler) AdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if len(req.Username) < 3 || len(req.Username) > 20 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username must be 3-20 characters"})
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid email address"})
		return
	}
	if len(req.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Password must be at least 6 characters"})
		return
	}
	if _, err := h.db.GetUserByEmail(r.Context(), req.Email); err == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Email already registered"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Username, req.Email, string(hashed), models.RoleAdmin)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "user": user.ToResponse()})
}

// AdminListTickets returns every support ticket.
func (h *Handler) AdminListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.db.AllTickets(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if tickets == nil {
		tickets = []models.SupportTicket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

type ticketStatusRequest struct {
	Status string `json:"status"`
}

// AdminUpdateTicketStatus moves a ticket through its workflow.
func (h *Handler) AdminUpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	ticketID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req ticketStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if !models.ValidTicketStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid status"})
		return
	}

	if err := h.db.UpdateTicketStatus(r.Context(), ticketID, req.Status); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
