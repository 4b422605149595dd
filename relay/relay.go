package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pulsechat/common"
	"pulsechat/logging"
	"pulsechat/media"
	"pulsechat/models"
)

// Store is the slice of storage the relay persists through.
type Store interface {
	GetChat(ctx context.Context, id int64) (*models.Chat, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateMessage(ctx context.Context, chatID, senderID int64, msgType models.MessageType, content, mediaURL string) (*models.Message, error)
	GetMessage(ctx context.Context, id int64) (*models.Message, error)
	MarkMessagesRead(ctx context.Context, chatID, readerID int64) (int64, error)
	DeleteMessage(ctx context.Context, id int64) error
}

// Summaries builds the per-viewer conversation rows the relay fans out
// after chat state changes.
type Summaries interface {
	ChatSummary(ctx context.Context, chatID, userID int64) (*models.ChatSummary, error)
}

// Relay accepts websocket connections, routes their events, and fans out
// the results. Messages within one chat are emitted in commit order; no
// ordering is promised across chats.
type Relay struct {
	hub       *Hub
	store     Store
	summaries Summaries
	media     media.Host
	log       logging.Logger

	persistTimeout time.Duration

	// chatLocks serializes persist-then-emit per chat so emit order matches
	// commit order. Entries are never reclaimed; they are one mutex per
	// chat ever active in this process.
	chatMu    sync.Mutex
	chatLocks map[int64]*sync.Mutex
}

func New(hub *Hub, store Store, summaries Summaries, host media.Host, log logging.Logger, persistTimeout time.Duration) *Relay {
	return &Relay{
		hub:            hub,
		store:          store,
		summaries:      summaries,
		media:          host,
		log:            log,
		persistTimeout: persistTimeout,
		chatLocks:      make(map[int64]*sync.Mutex),
	}
}

// Hub exposes the underlying hub for handlers that emit directly.
func (r *Relay) Hub() *Hub { return r.hub }

// Serve runs the event loop for one authenticated connection. It blocks
// until the connection drops.
func (r *Relay) Serve(conn *websocket.Conn, userID int64) {
	c := newClient(conn, userID)
	r.log.Info(context.Background(), "websocket connected", "client", c.id, "user_id", userID)

	go c.writePump()
	c.readPump(r)

	r.log.Info(context.Background(), "websocket disconnected", "client", c.id, "user_id", userID)
}

// dispatch decodes one inbound frame and runs the matching operation.
// Failures are reported to the sending client only.
func (r *Relay) dispatch(c *Client, data []byte) {
	var event models.ClientEvent
	if err := json.Unmarshal(data, &event); err != nil {
		r.deliveryError(c, "malformed event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.persistTimeout)
	defer cancel()

	var err error
	switch event.Type {
	case models.EventJoinInbox:
		err = r.joinInbox(c, event.Payload)
	case models.EventJoinChat:
		err = r.joinChat(ctx, c, event.Payload)
	case models.EventLeaveChat:
		err = r.leaveChat(c, event.Payload)
	case models.EventSendMessage:
		var p models.SendMessagePayload
		if err = json.Unmarshal(event.Payload, &p); err == nil {
			_, err = r.Send(ctx, c.userID, p)
		}
	case models.EventCallInvite:
		var p models.CallInvitePayload
		if err = json.Unmarshal(event.Payload, &p); err == nil {
			_, err = r.CallUser(ctx, c.userID, p)
		}
	default:
		err = fmt.Errorf("%w: unknown event %q", common.ErrValidationFailed, event.Type)
	}

	if err != nil {
		r.log.Warn(ctx, "event failed", "client", c.id, "event", event.Type, "error", err)
		r.deliveryError(c, err.Error())
	}
}

func (r *Relay) joinInbox(c *Client, raw json.RawMessage) error {
	var p models.JoinInboxPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("%w: bad join-inbox payload", common.ErrValidationFailed)
	}
	if p.UserID != c.userID {
		return fmt.Errorf("%w: cannot join another user's inbox", common.ErrForbidden)
	}
	r.hub.Join(c, InboxRoom(c.userID))
	return nil
}

func (r *Relay) joinChat(ctx context.Context, c *Client, raw json.RawMessage) error {
	var p models.JoinChatPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("%w: bad join-chat payload", common.ErrValidationFailed)
	}
	chat, err := r.store.GetChat(ctx, p.ChatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(c.userID) {
		return fmt.Errorf("%w: not a participant of chat %d", common.ErrForbidden, p.ChatID)
	}
	r.hub.Join(c, ChatRoom(chat.ID))
	return nil
}

func (r *Relay) leaveChat(c *Client, raw json.RawMessage) error {
	var p models.JoinChatPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("%w: bad leave-chat payload", common.ErrValidationFailed)
	}
	r.hub.Leave(c, ChatRoom(p.ChatID))
	return nil
}

// Send validates, persists, and fans out one message. The persisted message
// is emitted to the chat room under the chat's lock, so receivers observe
// messages in commit order. Summary updates to the participants' inboxes
// follow outside the lock.
//
// When an inline media payload cannot be uploaded, the message is stored
// with the original payload instead of failing the send.
func (r *Relay) Send(ctx context.Context, senderID int64, p models.SendMessagePayload) (*models.Message, error) {
	if !p.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown message type %q", common.ErrValidationFailed, p.Type)
	}
	if p.Type == models.MessageText && strings.TrimSpace(p.Content) == "" {
		return nil, fmt.Errorf("%w: empty message", common.ErrValidationFailed)
	}
	if p.Type.IsMedia() && p.MediaURL == "" {
		return nil, fmt.Errorf("%w: media message without media", common.ErrValidationFailed)
	}

	chat, err := r.store.GetChat(ctx, p.ChatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, fmt.Errorf("%w: not a participant of chat %d", common.ErrForbidden, p.ChatID)
	}

	content := p.Content
	mediaURL := p.MediaURL
	if p.Type.IsMedia() {
		if content == "" {
			content = p.Type.PlaceholderCaption()
		}
		if media.IsInline(mediaURL) {
			hosted, err := r.media.Upload(ctx, mediaURL, "messages")
			if err != nil {
				r.log.Warn(ctx, "media upload failed, keeping inline payload",
					"chat_id", chat.ID, "error", err)
			} else {
				mediaURL = hosted
			}
		}
	}

	lock := r.chatLock(chat.ID)
	lock.Lock()
	msg, err := r.store.CreateMessage(ctx, chat.ID, senderID, p.Type, content, mediaURL)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	r.hub.Emit(ChatRoom(chat.ID), models.ServerEvent{Type: models.EventNewMessage, Payload: msg})
	lock.Unlock()

	r.emitSummaries(ctx, chat)
	return msg, nil
}

// MarkRead flips the reader's unread messages in the chat and, when anything
// changed, pushes fresh summaries to both participants. Returns the number
// of messages marked.
func (r *Relay) MarkRead(ctx context.Context, chatID, readerID int64) (int64, error) {
	chat, err := r.store.GetChat(ctx, chatID)
	if err != nil {
		return 0, err
	}
	if !chat.HasParticipant(readerID) {
		return 0, fmt.Errorf("%w: not a participant of chat %d", common.ErrForbidden, chatID)
	}

	rows, err := r.store.MarkMessagesRead(ctx, chatID, readerID)
	if err != nil {
		return 0, err
	}
	if rows > 0 {
		r.emitSummaries(ctx, chat)
	}
	return rows, nil
}

// DeleteMessage removes one of the requester's own messages, cleans up any
// hosted media behind it, and refreshes both participants' summaries.
func (r *Relay) DeleteMessage(ctx context.Context, messageID, requesterID int64) error {
	msg, err := r.store.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != requesterID {
		return fmt.Errorf("%w: only the sender can delete a message", common.ErrForbidden)
	}

	if err := r.store.DeleteMessage(ctx, messageID); err != nil {
		return err
	}
	if msg.MediaURL != "" && r.media.Hosted(msg.MediaURL) {
		if err := r.media.Delete(ctx, msg.MediaURL); err != nil {
			r.log.Warn(ctx, "media cleanup failed", "message_id", messageID, "error", err)
		}
	}

	chat, err := r.store.GetChat(ctx, msg.ChatID)
	if err != nil {
		// The delete already happened; the viewers just keep a stale
		// summary until the next refresh.
		r.log.Warn(ctx, "summary refresh skipped after delete",
			"message_id", messageID, "chat_id", msg.ChatID, "error", err)
		return nil
	}
	r.emitSummaries(ctx, chat)
	return nil
}

// CallUser delivers a call invite to every connection in the callee's inbox.
// Signaling is fire-and-forget: the returned count is how many connections
// got the invite, and zero simply means the callee is offline.
func (r *Relay) CallUser(ctx context.Context, callerID int64, p models.CallInvitePayload) (int, error) {
	if p.CalleeID <= 0 {
		return 0, fmt.Errorf("%w: callee id", common.ErrInvalidIdentifier)
	}
	if p.ChannelID == "" {
		return 0, fmt.Errorf("%w: missing channel id", common.ErrValidationFailed)
	}
	if p.CalleeID == callerID {
		return 0, fmt.Errorf("%w: cannot call yourself", common.ErrValidationFailed)
	}

	caller, err := r.store.GetUser(ctx, callerID)
	if err != nil {
		return 0, err
	}

	n := r.hub.Emit(InboxRoom(p.CalleeID), models.ServerEvent{
		Type: models.EventIncomingCall,
		Payload: models.IncomingCallPayload{
			CallerID:     caller.ID,
			CallerName:   caller.Username,
			CallerAvatar: caller.Avatar,
			ChannelID:    p.ChannelID,
			IsVideo:      p.IsVideo,
			At:           time.Now().UTC(),
		},
	})
	return n, nil
}

// AnnounceChat tells both participants' inboxes that a chat now exists,
// each seeing the summary from their own side.
func (r *Relay) AnnounceChat(ctx context.Context, chat *models.Chat) {
	r.emitEach(ctx, chat, models.EventNewChat)
}

func (r *Relay) emitSummaries(ctx context.Context, chat *models.Chat) {
	r.emitEach(ctx, chat, models.EventChatSummaryUpdate)
}

func (r *Relay) emitEach(ctx context.Context, chat *models.Chat, eventType string) {
	for _, userID := range []int64{chat.ParticipantOneID, chat.ParticipantTwoID} {
		summary, err := r.summaries.ChatSummary(ctx, chat.ID, userID)
		if err != nil {
			r.log.Warn(ctx, "summary build failed", "chat_id", chat.ID, "user_id", userID, "error", err)
			continue
		}
		r.hub.Emit(InboxRoom(userID), models.ServerEvent{Type: eventType, Payload: summary})
	}
}

func (r *Relay) deliveryError(c *Client, reason string) {
	r.hub.EmitTo(c, models.ServerEvent{
		Type:    models.EventDeliveryError,
		Payload: models.DeliveryErrorPayload{Reason: reason},
	})
}

func (r *Relay) chatLock(chatID int64) *sync.Mutex {
	r.chatMu.Lock()
	defer r.chatMu.Unlock()
	lock, ok := r.chatLocks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		r.chatLocks[chatID] = lock
	}
	return lock
}
