package models

import (
	"encoding/json"
	"time"
)

// Inbound event types (client -> relay).
const (
	EventJoinInbox   = "join-inbox"
	EventJoinChat    = "join-chat"
	EventLeaveChat   = "leave-chat"
	EventSendMessage = "send-message"
	EventCallInvite  = "call-invite"
)

// Outbound event types (relay -> client).
const (
	EventNewMessage        = "new-message"
	EventChatSummaryUpdate = "chat-summary-update"
	EventNewChat           = "new-chat"
	EventIncomingCall      = "incoming-call"
	EventDeliveryError     = "delivery-error"
)

// ClientEvent is the envelope for inbound websocket events. The payload is
// decoded per event type.
type ClientEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ServerEvent is the envelope for outbound websocket events.
type ServerEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type JoinInboxPayload struct {
	UserID int64 `json:"user_id"`
}

type JoinChatPayload struct {
	ChatID int64 `json:"chat_id"`
}

type SendMessagePayload struct {
	ChatID   int64       `json:"chat_id"`
	Type     MessageType `json:"type"`
	Content  string      `json:"content"`
	MediaURL string      `json:"media_url,omitempty"`
}

type CallInvitePayload struct {
	CalleeID  int64  `json:"callee_id"`
	ChannelID string `json:"channel_id"`
	IsVideo   bool   `json:"is_video"`
}

// IncomingCallPayload carries caller display info to the callee's inbox.
type IncomingCallPayload struct {
	CallerID     int64     `json:"caller_id"`
	CallerName   string    `json:"caller_name"`
	CallerAvatar string    `json:"caller_avatar"`
	ChannelID    string    `json:"channel_id"`
	IsVideo      bool      `json:"is_video"`
	At           time.Time `json:"at"`
}

type DeliveryErrorPayload struct {
	Reason string `json:"reason"`
}
