package database

import (
	"context"
	"database/sql"
	"errors"

	"pulsechat/common"
	"pulsechat/models"
)

func scanChat(row *sql.Row) (*models.Chat, error) {
	chat := &models.Chat{}
	err := row.Scan(&chat.ID, &chat.ParticipantOneID, &chat.ParticipantTwoID, &chat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// CreateChat creates the chat for an unordered participant pair. The pair is
// normalized before insert so the UNIQUE constraint holds regardless of
// argument order.
func (d *DB) CreateChat(ctx context.Context, userA, userB int64) (*models.Chat, error) {
	low, high := orderedPair(userA, userB)
	result, err := d.conn.ExecContext(ctx,
		"INSERT INTO chats (participant_one_id, participant_two_id) VALUES (?, ?)",
		low, high,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return d.GetChat(ctx, id)
}

// GetChat retrieves a chat by its ID
func (d *DB) GetChat(ctx context.Context, id int64) (*models.Chat, error) {
	return scanChat(d.conn.QueryRowContext(ctx,
		"SELECT id, participant_one_id, participant_two_id, created_at FROM chats WHERE id = ?", id))
}

// GetChatByParticipants retrieves the chat for an unordered pair, if any.
func (d *DB) GetChatByParticipants(ctx context.Context, userA, userB int64) (*models.Chat, error) {
	low, high := orderedPair(userA, userB)
	return scanChat(d.conn.QueryRowContext(ctx,
		"SELECT id, participant_one_id, participant_two_id, created_at FROM chats WHERE participant_one_id = ? AND participant_two_id = ?",
		low, high))
}

// ChatsByParticipant retrieves all chats the user belongs to.
func (d *DB) ChatsByParticipant(ctx context.Context, userID int64) ([]models.Chat, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, participant_one_id, participant_two_id, created_at FROM chats
		WHERE participant_one_id = ? OR participant_two_id = ?`,
		userID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		if err := rows.Scan(&chat.ID, &chat.ParticipantOneID, &chat.ParticipantTwoID, &chat.CreatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// DeleteChat removes a chat and its messages.
func (d *DB) DeleteChat(ctx context.Context, id int64) error {
	if _, err := d.conn.ExecContext(ctx, "DELETE FROM messages WHERE chat_id = ?", id); err != nil {
		return err
	}
	return d.updateOne(ctx, "DELETE FROM chats WHERE id = ?", id)
}

// DeleteChatsByParticipant removes every chat the user belongs to, messages
// included. Used by the user-deletion cascade.
func (d *DB) DeleteChatsByParticipant(ctx context.Context, userID int64) error {
	if _, err := d.conn.ExecContext(ctx,
		`DELETE FROM messages WHERE chat_id IN
			(SELECT id FROM chats WHERE participant_one_id = ? OR participant_two_id = ?)`,
		userID, userID); err != nil {
		return err
	}
	_, err := d.conn.ExecContext(ctx,
		"DELETE FROM chats WHERE participant_one_id = ? OR participant_two_id = ?",
		userID, userID)
	return err
}
