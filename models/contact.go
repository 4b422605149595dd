package models

import "time"

// ContactStatus represents the status of a contact relationship
type ContactStatus string

const (
	ContactStatusPending  ContactStatus = "pending"
	ContactStatusAccepted ContactStatus = "accepted"
)

// Contact is an unordered relationship between two users. The user columns
// are normalized (smaller id first) so at most one row exists per pair;
// RequesterID records who initiated, and only the invited party may accept.
type Contact struct {
	ID          int64         `json:"id"`
	UserOneID   int64         `json:"user_one_id"`
	UserTwoID   int64         `json:"user_two_id"`
	RequesterID int64         `json:"requester_id"`
	Status      ContactStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// InvitedParty returns the user who received the request.
func (c *Contact) InvitedParty() int64 {
	if c.RequesterID == c.UserOneID {
		return c.UserTwoID
	}
	return c.UserOneID
}

// HasUser reports whether userID belongs to the relationship.
func (c *Contact) HasUser(userID int64) bool {
	return c.UserOneID == userID || c.UserTwoID == userID
}

// ContactWithUser includes the other party's profile for display.
type ContactWithUser struct {
	Contact
	User UserResponse `json:"user"`
}
