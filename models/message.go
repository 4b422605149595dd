package models

import "time"

// MessageType tags a message's payload kind.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageAudio MessageType = "audio"
	MessageVideo MessageType = "video"
	MessageFile  MessageType = "file"
)

// Valid reports whether t is a recognized message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageAudio, MessageVideo, MessageFile:
		return true
	}
	return false
}

// IsMedia reports whether t carries a media reference.
func (t MessageType) IsMedia() bool {
	return t.Valid() && t != MessageText
}

// PlaceholderCaption is the canonical content stored for media messages.
func (t MessageType) PlaceholderCaption() string {
	switch t {
	case MessageImage:
		return "Sent an image"
	case MessageAudio:
		return "Sent an audio"
	case MessageVideo:
		return "Sent a video"
	case MessageFile:
		return "Sent a file"
	}
	return ""
}

// Message belongs to exactly one chat. A text message has non-empty content;
// a media message has a media reference and a placeholder caption as content.
// Only the read flag is mutated after creation.
type Message struct {
	ID        int64       `json:"id"`
	ChatID    int64       `json:"chat_id"`
	SenderID  int64       `json:"sender_id"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	MediaURL  string      `json:"media_url,omitempty"`
	IsRead    bool        `json:"is_read"`
	CreatedAt time.Time   `json:"created_at"`
}

// MessageWithSender includes sender info for display
type MessageWithSender struct {
	Message
	SenderUsername string `json:"sender_username"`
	SenderAvatar   string `json:"sender_avatar"`
}
