package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pulsechat/common"
	"pulsechat/models"
)

const userColumns = `id, username, email, password, avatar, COALESCE(role, 'user'), COALESCE(is_disabled, 0), last_seen, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password,
		&user.Avatar, &user.Role, &user.IsDisabled, &user.LastSeen, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new user. Email uniqueness is enforced by the schema.
func (d *DB) CreateUser(ctx context.Context, username, email, password string, role models.Role) (*models.User, error) {
	result, err := d.conn.ExecContext(ctx,
		"INSERT INTO users (username, email, password, role) VALUES (?, ?, ?, ?)",
		username, email, password, role,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return d.GetUser(ctx, id)
}

// GetUser retrieves a user by their ID
func (d *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(d.conn.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// GetUserByEmail retrieves a user by their email
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(d.conn.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

// GetUserByRole retrieves any one user holding the given role.
func (d *DB) GetUserByRole(ctx context.Context, role models.Role) (*models.User, error) {
	return scanUser(d.conn.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role = ? LIMIT 1", role))
}

// SearchUsers searches for users by username prefix, excluding the caller.
func (d *DB) SearchUsers(ctx context.Context, query string, excludeID int64) ([]models.UserResponse, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, username, email, avatar, COALESCE(role, 'user'), COALESCE(is_disabled, 0), last_seen, created_at
		FROM users WHERE username LIKE ? AND id != ? LIMIT 20`,
		query+"%", excludeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.UserResponse
	for rows.Next() {
		var user models.UserResponse
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Avatar,
			&user.Role, &user.IsDisabled, &user.LastSeen, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateLastSeen stamps the user's last-seen time.
func (d *DB) UpdateLastSeen(ctx context.Context, id int64, at time.Time) error {
	_, err := d.conn.ExecContext(ctx, "UPDATE users SET last_seen = ? WHERE id = ?", at, id)
	return err
}

// UpdateProfile changes display name and avatar reference.
func (d *DB) UpdateProfile(ctx context.Context, id int64, username, avatar string) error {
	_, err := d.conn.ExecContext(ctx,
		"UPDATE users SET username = ?, avatar = ? WHERE id = ?", username, avatar, id)
	return err
}

// SetUserRole changes a user's role.
func (d *DB) SetUserRole(ctx context.Context, id int64, role models.Role) error {
	return d.updateOne(ctx, "UPDATE users SET role = ? WHERE id = ?", role, id)
}

// SetUserDisabled disables or enables a user account
func (d *DB) SetUserDisabled(ctx context.Context, id int64, disabled bool) error {
	return d.updateOne(ctx, "UPDATE users SET is_disabled = ? WHERE id = ?", disabled, id)
}

// SetUserPassword resets a user's password hash.
func (d *DB) SetUserPassword(ctx context.Context, id int64, password string) error {
	return d.updateOne(ctx, "UPDATE users SET password = ? WHERE id = ?", password, id)
}

// DeleteUser removes the user row itself. Owned entities are cleaned up
// separately by the cascade steps.
func (d *DB) DeleteUser(ctx context.Context, id int64) error {
	return d.updateOne(ctx, "DELETE FROM users WHERE id = ?", id)
}

// ListUsers returns all users, newest first.
func (d *DB) ListUsers(ctx context.Context) ([]models.UserResponse, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, username, email, avatar, COALESCE(role, 'user'), COALESCE(is_disabled, 0), last_seen, created_at
		FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.UserResponse
	for rows.Next() {
		var user models.UserResponse
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Avatar,
			&user.Role, &user.IsDisabled, &user.LastSeen, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Counts returns aggregate row counts for the admin dashboard.
func (d *DB) Counts(ctx context.Context, now time.Time) (map[string]int64, error) {
	queries := map[string]struct {
		query string
		args  []any
	}{
		"users":          {query: "SELECT COUNT(*) FROM users"},
		"disabled_users": {query: "SELECT COUNT(*) FROM users WHERE is_disabled = 1"},
		"chats":          {query: "SELECT COUNT(*) FROM chats"},
		"messages":       {query: "SELECT COUNT(*) FROM messages"},
		"active_stories": {query: "SELECT COUNT(*) FROM stories WHERE expires_at > ?", args: []any{now}},
		"open_tickets":   {query: "SELECT COUNT(*) FROM support_tickets WHERE status IN ('pending', 'in_progress')"},
	}

	counts := make(map[string]int64, len(queries))
	for name, q := range queries {
		var n int64
		if err := d.conn.QueryRowContext(ctx, q.query, q.args...).Scan(&n); err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, nil
}

func (d *DB) updateOne(ctx context.Context, query string, args ...any) error {
	result, err := d.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
