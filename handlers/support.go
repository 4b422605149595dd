package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"pulsechat/middleware"
	"pulsechat/models"
)

type createTicketRequest struct {
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Priority string `json:"priority"`
}

// CreateTicket files a support request on behalf of the caller.
func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req createTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if req.Subject == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Subject and message are required"})
		return
	}
	if req.Category == "" {
		req.Category = models.TicketCategoryOther
	}
	if !models.ValidTicketCategory(req.Category) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid category"})
		return
	}
	if req.Priority == "" {
		req.Priority = models.TicketPriorityMedium
	}
	if !models.ValidTicketPriority(req.Priority) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid priority"})
		return
	}

	ticket, err := h.db.CreateTicket(r.Context(), &models.SupportTicket{
		UserID:   user.ID,
		Subject:  req.Subject,
		Message:  req.Message,
		Category: req.Category,
		Priority: req.Priority,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

// MyTickets lists the caller's own tickets, newest first.
func (h *Handler) MyTickets(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	tickets, err := h.db.TicketsByUser(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if tickets == nil {
		tickets = []models.SupportTicket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}
