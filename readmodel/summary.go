// Package readmodel assembles the conversation list: for each of a user's
// chats, the other participant's public profile, a preview of the latest
// message, and its read state. Summaries are always derived from storage,
// never cached, so they cannot go stale.
package readmodel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"pulsechat/common"
	"pulsechat/models"
)

// Store is the slice of storage the read model needs.
type Store interface {
	ChatsByParticipant(ctx context.Context, userID int64) ([]models.Chat, error)
	GetChat(ctx context.Context, id int64) (*models.Chat, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	LatestMessage(ctx context.Context, chatID int64) (*models.Message, error)
}

// Service builds chat summaries for the conversation list and for the
// per-chat update events the relay emits.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListConversations returns the user's chats as summary rows, most recent
// activity first. Chats whose other participant no longer resolves are
// dropped rather than failing the whole listing.
func (s *Service) ListConversations(ctx context.Context, userID int64) ([]models.ChatSummary, error) {
	if userID == 0 {
		return nil, common.ErrUnauthenticated
	}
	if userID < 0 {
		return nil, fmt.Errorf("%w: user id %d", common.ErrInvalidIdentifier, userID)
	}

	chats, err := s.store.ChatsByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ChatSummary, 0, len(chats))
	for i := range chats {
		summary, err := s.summarize(ctx, &chats[i], userID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			return nil, err
		}
		summaries = append(summaries, *summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return activityTime(&summaries[i]).After(activityTime(&summaries[j]))
	})
	return summaries, nil
}

// ChatSummary builds the summary row for one chat from userID's point of
// view. The caller must have verified that userID participates in the chat.
func (s *Service) ChatSummary(ctx context.Context, chatID, userID int64) (*models.ChatSummary, error) {
	chat, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, common.ErrForbidden
	}
	return s.summarize(ctx, chat, userID)
}

func (s *Service) summarize(ctx context.Context, chat *models.Chat, userID int64) (*models.ChatSummary, error) {
	other, err := s.store.GetUser(ctx, chat.OtherParticipant(userID))
	if err != nil {
		return nil, err
	}

	summary := &models.ChatSummary{
		ChatID:              chat.ID,
		ParticipantID:       other.ID,
		ParticipantName:     other.Username,
		ParticipantAvatar:   other.Avatar,
		ParticipantLastSeen: other.LastSeen,
		IsRead:              true,
		CreatedAt:           chat.CreatedAt,
	}

	last, err := s.store.LatestMessage(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	if last != nil {
		at := last.CreatedAt
		summary.LastMessageAt = &at
		summary.LastMessage = preview(last, userID, other.Username)
		summary.LastMessageSenderID = last.SenderID
		// Both viewers see the raw flag: the sender's summary flipping to
		// read once the peer fetches the chat is the read receipt.
		summary.IsRead = last.IsRead
	}
	return summary, nil
}

// preview renders the latest message for the conversation list. Media
// messages show a caption naming the sender instead of the raw reference.
func preview(msg *models.Message, viewerID int64, otherName string) string {
	if !msg.Type.IsMedia() {
		return msg.Content
	}

	sender := otherName
	if msg.SenderID == viewerID {
		sender = "You"
	}
	switch msg.Type {
	case models.MessageImage:
		return sender + " sent an image."
	case models.MessageAudio:
		return sender + " sent an audio."
	case models.MessageVideo:
		return sender + " sent a video."
	default:
		return sender + " sent a file."
	}
}

// activityTime orders summaries: the latest message time, or the chat's
// creation time for empty chats.
func activityTime(s *models.ChatSummary) time.Time {
	if s.LastMessageAt != nil {
		return *s.LastMessageAt
	}
	return s.CreatedAt
}
