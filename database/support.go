package database

import (
	"context"
	"time"

	"pulsechat/models"
)

const ticketColumns = `id, user_id, subject, message, category, priority, status, created_at, updated_at`

// CreateTicket files a support ticket.
func (d *DB) CreateTicket(ctx context.Context, t *models.SupportTicket) (*models.SupportTicket, error) {
	now := time.Now().UTC()
	result, err := d.conn.ExecContext(ctx,
		"INSERT INTO support_tickets (user_id, subject, message, category, priority, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, 'pending', ?, ?)",
		t.UserID, t.Subject, t.Message, t.Category, t.Priority, now, now,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *t
	out.ID = id
	out.Status = models.TicketStatusPending
	out.CreatedAt = now
	out.UpdatedAt = now
	return &out, nil
}

// TicketsByUser lists a user's tickets, newest first.
func (d *DB) TicketsByUser(ctx context.Context, userID int64) ([]models.SupportTicket, error) {
	return d.queryTickets(ctx,
		"SELECT "+ticketColumns+" FROM support_tickets WHERE user_id = ? ORDER BY created_at DESC", userID)
}

// AllTickets lists every ticket for the admin console, newest first.
func (d *DB) AllTickets(ctx context.Context) ([]models.SupportTicket, error) {
	return d.queryTickets(ctx,
		"SELECT "+ticketColumns+" FROM support_tickets ORDER BY created_at DESC")
}

// UpdateTicketStatus moves a ticket through its workflow.
func (d *DB) UpdateTicketStatus(ctx context.Context, id int64, status string) error {
	return d.updateOne(ctx,
		"UPDATE support_tickets SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().UTC(), id)
}

// DeleteTicketsByUser removes a user's tickets. Used by the user-deletion
// cascade.
func (d *DB) DeleteTicketsByUser(ctx context.Context, userID int64) error {
	_, err := d.conn.ExecContext(ctx, "DELETE FROM support_tickets WHERE user_id = ?", userID)
	return err
}

func (d *DB) queryTickets(ctx context.Context, query string, args ...any) ([]models.SupportTicket, error) {
	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.SupportTicket
	for rows.Next() {
		var t models.SupportTicket
		if err := rows.Scan(&t.ID, &t.UserID, &t.Subject, &t.Message, &t.Category,
			&t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
