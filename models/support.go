package models

import "time"

// Support ticket categories, priorities and statuses.
const (
	TicketCategoryAccount   = "account"
	TicketCategoryTechnical = "technical"
	TicketCategoryBilling   = "billing"
	TicketCategoryFeature   = "feature"
	TicketCategoryOther     = "other"

	TicketPriorityLow      = "low"
	TicketPriorityMedium   = "medium"
	TicketPriorityHigh     = "high"
	TicketPriorityCritical = "critical"

	TicketStatusPending    = "pending"
	TicketStatusInProgress = "in_progress"
	TicketStatusAnswered   = "answered"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

// ValidTicketCategory reports whether c is a recognized category.
func ValidTicketCategory(c string) bool {
	switch c {
	case TicketCategoryAccount, TicketCategoryTechnical, TicketCategoryBilling,
		TicketCategoryFeature, TicketCategoryOther:
		return true
	}
	return false
}

// ValidTicketPriority reports whether p is a recognized priority.
func ValidTicketPriority(p string) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// ValidTicketStatus reports whether s is a recognized status.
func ValidTicketStatus(s string) bool {
	switch s {
	case TicketStatusPending, TicketStatusInProgress, TicketStatusAnswered,
		TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// SupportTicket is a user-filed support request.
type SupportTicket struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	Priority  string    `json:"priority"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
