package models

import "time"

// Chat is an unordered pair of participants. Participant columns are
// normalized so the smaller id is always first; at most one chat exists per
// pair. A chat is never mutated after creation: its last message and read
// state are always derived.
type Chat struct {
	ID               int64     `json:"id"`
	ParticipantOneID int64     `json:"participant_one_id"`
	ParticipantTwoID int64     `json:"participant_two_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// HasParticipant reports whether userID belongs to the chat.
func (c *Chat) HasParticipant(userID int64) bool {
	return c.ParticipantOneID == userID || c.ParticipantTwoID == userID
}

// OtherParticipant returns the participant that is not userID.
func (c *Chat) OtherParticipant(userID int64) int64 {
	if c.ParticipantOneID == userID {
		return c.ParticipantTwoID
	}
	return c.ParticipantOneID
}

// ChatSummary is the denormalized conversation-list row: the other
// participant's public profile plus the latest message preview and read
// state. LastMessageAt is nil for chats with no messages yet. IsRead
// mirrors the latest message's read flag for every viewer; clients use
// LastMessageSenderID to tell their own messages apart, and the flag
// flipping to true on the sender's summary is the read tick.
type ChatSummary struct {
	ChatID              int64      `json:"chat_id"`
	ParticipantID       int64      `json:"participant_id"`
	ParticipantName     string     `json:"participant_name"`
	ParticipantAvatar   string     `json:"participant_avatar"`
	ParticipantLastSeen time.Time  `json:"participant_last_seen"`
	LastMessage         string     `json:"last_message"`
	LastMessageAt       *time.Time `json:"last_message_at"`
	LastMessageSenderID int64      `json:"last_message_sender_id,omitempty"`
	IsRead              bool       `json:"is_read"`
	CreatedAt           time.Time  `json:"created_at"`
}
