package models

import "time"

// StoryType tags a story's media kind.
type StoryType string

const (
	StoryImage StoryType = "image"
	StoryVideo StoryType = "video"
	StoryAudio StoryType = "audio"
)

// Valid reports whether t is a recognized story type.
func (t StoryType) Valid() bool {
	switch t {
	case StoryImage, StoryVideo, StoryAudio:
		return true
	}
	return false
}

// DefaultStoryBackground is used when a story carries no background of its own.
const DefaultStoryBackground = "https://wallpapers.com/images/hd/blue-background-nsslj0em6ihbyo5q.jpg"

// Story is an ephemeral post. It is invisible once the current time passes
// ExpiresAt and is garbage-collected, together with its comments and hosted
// media, once expiry is sufficiently far in the past.
type Story struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Type          StoryType `json:"type"`
	Caption       string    `json:"caption"`
	MediaURL      string    `json:"media_url,omitempty"`
	BackgroundURL string    `json:"background_url"`
	Likes         int64     `json:"likes"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the story is past its expiry at the given time.
func (s *Story) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// StoryWithUser includes owner info for display.
type StoryWithUser struct {
	Story
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Comment belongs to a story. ParentID is nil for top-level comments;
// replies are single-level: a reply's parent must itself be top-level.
type Comment struct {
	ID        int64     `json:"id"`
	StoryID   int64     `json:"story_id"`
	UserID    int64     `json:"user_id"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	Content   string    `json:"content"`
	Likes     int64     `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentWithReplies is a top-level comment with its author and replies.
type CommentWithReplies struct {
	Comment
	Username string    `json:"username"`
	Avatar   string    `json:"avatar"`
	Replies  []Comment `json:"replies"`
}
