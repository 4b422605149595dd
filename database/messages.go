package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pulsechat/common"
	"pulsechat/models"
)

const messageColumns = `id, chat_id, sender_id, COALESCE(type, 'text'), content, COALESCE(media_url, ''), COALESCE(is_read, 0), created_at`

func scanMessage(row *sql.Row) (*models.Message, error) {
	msg := &models.Message{}
	err := row.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Type,
		&msg.Content, &msg.MediaURL, &msg.IsRead, &msg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// CreateMessage persists a message with a server-assigned timestamp and the
// read flag cleared.
func (d *DB) CreateMessage(ctx context.Context, chatID, senderID int64, msgType models.MessageType, content, mediaURL string) (*models.Message, error) {
	result, err := d.conn.ExecContext(ctx,
		"INSERT INTO messages (chat_id, sender_id, type, content, media_url, is_read, created_at) VALUES (?, ?, ?, ?, ?, 0, ?)",
		chatID, senderID, msgType, content, mediaURL, time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return d.GetMessage(ctx, id)
}

// GetMessage retrieves a message by its ID
func (d *DB) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	return scanMessage(d.conn.QueryRowContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE id = ?", id))
}

// MessagesByChat retrieves a chat's messages, newest first.
func (d *DB) MessagesByChat(ctx context.Context, chatID int64, limit, offset int) ([]models.Message, error) {
	rows, err := d.conn.QueryContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE chat_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		chatID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Type,
			&msg.Content, &msg.MediaURL, &msg.IsRead, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// LatestMessage returns the chat's most recent message, or nil when the chat
// has no messages yet.
func (d *DB) LatestMessage(ctx context.Context, chatID int64) (*models.Message, error) {
	msg, err := scanMessage(d.conn.QueryRowContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE chat_id = ? ORDER BY created_at DESC, id DESC LIMIT 1", chatID))
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	return msg, err
}

// MarkMessagesRead flips the read flag on every unread message in the chat
// not sent by readerID, in one batch. Returns the number of rows changed.
func (d *DB) MarkMessagesRead(ctx context.Context, chatID, readerID int64) (int64, error) {
	result, err := d.conn.ExecContext(ctx,
		"UPDATE messages SET is_read = 1 WHERE chat_id = ? AND sender_id != ? AND is_read = 0",
		chatID, readerID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteMessage removes a single message.
func (d *DB) DeleteMessage(ctx context.Context, id int64) error {
	return d.updateOne(ctx, "DELETE FROM messages WHERE id = ?", id)
}

// DeleteMessagesBySender removes every message a user sent. Used by the
// user-deletion cascade.
func (d *DB) DeleteMessagesBySender(ctx context.Context, senderID int64) error {
	_, err := d.conn.ExecContext(ctx, "DELETE FROM messages WHERE sender_id = ?", senderID)
	return err
}
