package models

import "time"

// CallStatus records the outcome of a completed call.
type CallStatus string

const (
	CallStatusMissed   CallStatus = "missed"
	CallStatusReceived CallStatus = "received"
)

// Valid reports whether s is a recognized call status.
func (s CallStatus) Valid() bool {
	return s == CallStatusMissed || s == CallStatusReceived
}

// Call is the write-once record of a completed signaling attempt. No
// in-progress state is persisted; live signaling is ephemeral relay state.
type Call struct {
	ID         int64      `json:"id"`
	CallerID   int64      `json:"caller_id"`
	ReceiverID int64      `json:"receiver_id"`
	Status     CallStatus `json:"status"`
	Duration   int64      `json:"duration"` // seconds
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// CallWithUser includes the counterpart's profile for call history display.
type CallWithUser struct {
	Call
	User UserResponse `json:"user"`
}
