package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"pulsechat/common"
	"pulsechat/middleware"
	"pulsechat/models"
)

type addContactRequest struct {
	UserID int64 `json:"user_id"`
}

// AddContact sends a contact request to another user.
func (h *Handler) AddContact(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req addContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if req.UserID <= 0 {
		h.respondError(w, r, common.ErrInvalidIdentifier)
		return
	}
	if req.UserID == user.ID {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Cannot add yourself"})
		return
	}
	if _, err := h.db.GetUser(r.Context(), req.UserID); err != nil {
		h.respondError(w, r, err)
		return
	}

	if existing, err := h.db.GetContactByUsers(r.Context(), user.ID, req.UserID); err == nil {
		status := "already added"
		if existing.Status == models.ContactStatusPending {
			status = "request already pending"
		}
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Contact " + status})
		return
	} else if !errors.Is(err, common.ErrNotFound) {
		h.respondError(w, r, err)
		return
	}

	contact, err := h.db.CreateContact(r.Context(), user.ID, req.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

// AcceptContact accepts a pending request. Only the invited party may
// accept; the requester cannot accept their own request.
func (h *Handler) AcceptContact(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	contactID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	contact, err := h.db.GetContact(r.Context(), contactID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if contact.InvitedParty() != user.ID {
		h.respondError(w, r, common.ErrForbidden)
		return
	}
	if contact.Status != models.ContactStatusPending {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Contact already accepted"})
		return
	}

	if err := h.db.AcceptContact(r.Context(), contactID); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteContact removes a relationship. Either party may remove it, which
// also serves as declining a pending request.
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	contactID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	contact, err := h.db.GetContact(r.Context(), contactID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !contact.HasUser(user.ID) {
		h.respondError(w, r, common.ErrForbidden)
		return
	}

	if err := h.db.DeleteContact(r.Context(), contactID); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListContacts returns the caller's relationships, pending ones included.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	contacts, err := h.db.ContactsByUser(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if contacts == nil {
		contacts = []models.ContactWithUser{}
	}
	writeJSON(w, http.StatusOK, contacts)
}
