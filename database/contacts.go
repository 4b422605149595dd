package database

import (
	"context"
	"database/sql"
	"errors"

	"pulsechat/common"
	"pulsechat/models"
)

const contactColumns = `id, user_one_id, user_two_id, requester_id, status, created_at`

func scanContact(row *sql.Row) (*models.Contact, error) {
	c := &models.Contact{}
	err := row.Scan(&c.ID, &c.UserOneID, &c.UserTwoID, &c.RequesterID, &c.Status, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateContact records a pending relationship initiated by requesterID.
func (d *DB) CreateContact(ctx context.Context, requesterID, otherID int64) (*models.Contact, error) {
	low, high := orderedPair(requesterID, otherID)
	result, err := d.conn.ExecContext(ctx,
		"INSERT INTO contacts (user_one_id, user_two_id, requester_id, status) VALUES (?, ?, ?, 'pending')",
		low, high, requesterID,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return d.GetContact(ctx, id)
}

// GetContact retrieves a contact relationship by its ID
func (d *DB) GetContact(ctx context.Context, id int64) (*models.Contact, error) {
	return scanContact(d.conn.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE id = ?", id))
}

// GetContactByUsers retrieves the relationship for an unordered pair, if any.
func (d *DB) GetContactByUsers(ctx context.Context, userA, userB int64) (*models.Contact, error) {
	low, high := orderedPair(userA, userB)
	return scanContact(d.conn.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE user_one_id = ? AND user_two_id = ?",
		low, high))
}

// AcceptContact flips a pending relationship to accepted.
func (d *DB) AcceptContact(ctx context.Context, id int64) error {
	return d.updateOne(ctx,
		"UPDATE contacts SET status = 'accepted' WHERE id = ? AND status = 'pending'", id)
}

// ContactsByUser lists the user's relationships with the other party's
// profile attached.
func (d *DB) ContactsByUser(ctx context.Context, userID int64) ([]models.ContactWithUser, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT c.id, c.user_one_id, c.user_two_id, c.requester_id, c.status, c.created_at,
		        u.id, u.username, u.email, u.avatar, u.last_seen, u.created_at
		FROM contacts c
		JOIN users u ON u.id = CASE WHEN c.user_one_id = ? THEN c.user_two_id ELSE c.user_one_id END
		WHERE c.user_one_id = ? OR c.user_two_id = ?
		ORDER BY c.created_at DESC`,
		userID, userID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []models.ContactWithUser
	for rows.Next() {
		var c models.ContactWithUser
		if err := rows.Scan(&c.ID, &c.UserOneID, &c.UserTwoID, &c.RequesterID, &c.Status, &c.CreatedAt,
			&c.User.ID, &c.User.Username, &c.User.Email, &c.User.Avatar,
			&c.User.LastSeen, &c.User.CreatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// DeleteContact removes a relationship.
func (d *DB) DeleteContact(ctx context.Context, id int64) error {
	return d.updateOne(ctx, "DELETE FROM contacts WHERE id = ?", id)
}

// DeleteContactsByUser removes every relationship the user belongs to. Used
// by the user-deletion cascade.
func (d *DB) DeleteContactsByUser(ctx context.Context, userID int64) error {
	_, err := d.conn.ExecContext(ctx,
		"DELETE FROM contacts WHERE user_one_id = ? OR user_two_id = ?", userID, userID)
	return err
}
