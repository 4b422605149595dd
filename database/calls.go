package database

import (
	"context"

	"pulsechat/models"
)

// CreateCall records a completed call. Write-once: calls are never updated.
func (d *DB) CreateCall(ctx context.Context, call *models.Call) (*models.Call, error) {
	result, err := d.conn.ExecContext(ctx,
		"INSERT INTO calls (caller_id, receiver_id, status, duration, started_at, ended_at) VALUES (?, ?, ?, ?, ?, ?)",
		call.CallerID, call.ReceiverID, call.Status, call.Duration, call.StartedAt, call.EndedAt,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *call
	out.ID = id
	return &out, nil
}

// CallsByUser lists the user's call history with the counterpart's profile,
// newest first.
func (d *DB) CallsByUser(ctx context.Context, userID int64) ([]models.CallWithUser, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT c.id, c.caller_id, c.receiver_id, c.status, COALESCE(c.duration, 0), c.started_at, c.ended_at,
		        u.id, u.username, u.email, u.avatar, u.last_seen, u.created_at
		FROM calls c
		JOIN users u ON u.id = CASE WHEN c.caller_id = ? THEN c.receiver_id ELSE c.caller_id END
		WHERE c.caller_id = ? OR c.receiver_id = ?
		ORDER BY c.started_at DESC`,
		userID, userID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []models.CallWithUser
	for rows.Next() {
		var c models.CallWithUser
		if err := rows.Scan(&c.ID, &c.CallerID, &c.ReceiverID, &c.Status, &c.Duration,
			&c.StartedAt, &c.EndedAt,
			&c.User.ID, &c.User.Username, &c.User.Email, &c.User.Avatar,
			&c.User.LastSeen, &c.User.CreatedAt); err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

// DeleteCallsByUser removes the user's call records. Used by the
// user-deletion cascade.
func (d *DB) DeleteCallsByUser(ctx context.Context, userID int64) error {
	_, err := d.conn.ExecContext(ctx,
		"DELETE FROM calls WHERE caller_id = ? OR receiver_id = ?", userID, userID)
	return err
}
