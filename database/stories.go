package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pulsechat/common"
	"pulsechat/models"
)

const storyColumns = `id, user_id, type, COALESCE(caption, ''), COALESCE(media_url, ''), COALESCE(background_url, ''), COALESCE(likes, 0), created_at, expires_at`

func scanStory(row *sql.Row) (*models.Story, error) {
	story := &models.Story{}
	err := row.Scan(&story.ID, &story.UserID, &story.Type, &story.Caption,
		&story.MediaURL, &story.BackgroundURL, &story.Likes, &story.CreatedAt, &story.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return story, nil
}

// CreateStory persists a story with explicit creation and expiry times.
func (d *DB) CreateStory(ctx context.Context, story *models.Story) (*models.Story, error) {
	result, err := d.conn.ExecContext(ctx,
		"INSERT INTO stories (user_id, type, caption, media_url, background_url, created_at, expires_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		story.UserID, story.Type, story.Caption, story.MediaURL, story.BackgroundURL,
		story.CreatedAt, story.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return d.GetStory(ctx, id)
}

// GetStory retrieves a story by its ID
func (d *DB) GetStory(ctx context.Context, id int64) (*models.Story, error) {
	return scanStory(d.conn.QueryRowContext(ctx,
		"SELECT "+storyColumns+" FROM stories WHERE id = ?", id))
}

// ActiveStoriesForUser lists unexpired stories visible to the user: their
// own plus those of accepted contacts, newest first. Story visibility is
// scoped to the social graph, not the whole platform.
func (d *DB) ActiveStoriesForUser(ctx context.Context, userID int64, now time.Time) ([]models.StoryWithUser, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT s.id, s.user_id, s.type, COALESCE(s.caption, ''), COALESCE(s.media_url, ''),
		        COALESCE(s.background_url, ''), COALESCE(s.likes, 0), s.created_at, s.expires_at,
		        u.username, u.avatar
		FROM stories s
		JOIN users u ON s.user_id = u.id
		WHERE s.expires_at > ?
		  AND (s.user_id = ?
		       OR s.user_id IN (
		          SELECT CASE WHEN c.user_one_id = ? THEN c.user_two_id ELSE c.user_one_id END
		          FROM contacts c
		          WHERE (c.user_one_id = ? OR c.user_two_id = ?) AND c.status = 'accepted'))
		ORDER BY s.created_at DESC`,
		now, userID, userID, userID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stories []models.StoryWithUser
	for rows.Next() {
		var s models.StoryWithUser
		if err := rows.Scan(&s.ID, &s.UserID, &s.Type, &s.Caption, &s.MediaURL,
			&s.BackgroundURL, &s.Likes, &s.CreatedAt, &s.ExpiresAt,
			&s.Username, &s.Avatar); err != nil {
			return nil, err
		}
		stories = append(stories, s)
	}
	return stories, rows.Err()
}

// ExpiredStories lists stories whose expiry precedes the cutoff. Used by the
// sweeper, which passes now minus a grace window.
func (d *DB) ExpiredStories(ctx context.Context, cutoff time.Time) ([]models.Story, error) {
	rows, err := d.conn.QueryContext(ctx,
		"SELECT "+storyColumns+" FROM stories WHERE expires_at < ?", cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stories []models.Story
	for rows.Next() {
		var s models.Story
		if err := rows.Scan(&s.ID, &s.UserID, &s.Type, &s.Caption, &s.MediaURL,
			&s.BackgroundURL, &s.Likes, &s.CreatedAt, &s.ExpiresAt); err != nil {
			return nil, err
		}
		stories = append(stories, s)
	}
	return stories, rows.Err()
}

// StoriesByUser lists every story a user owns, expiry regardless.
func (d *DB) StoriesByUser(ctx context.Context, userID int64) ([]models.Story, error) {
	rows, err := d.conn.QueryContext(ctx,
		"SELECT "+storyColumns+" FROM stories WHERE user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stories []models.Story
	for rows.Next() {
		var s models.Story
		if err := rows.Scan(&s.ID, &s.UserID, &s.Type, &s.Caption, &s.MediaURL,
			&s.BackgroundURL, &s.Likes, &s.CreatedAt, &s.ExpiresAt); err != nil {
			return nil, err
		}
		stories = append(stories, s)
	}
	return stories, rows.Err()
}

// AdjustStoryLikes changes the like counter by delta, flooring at zero.
func (d *DB) AdjustStoryLikes(ctx context.Context, id int64, delta int64) error {
	return d.updateOne(ctx,
		"UPDATE stories SET likes = MAX(likes + ?, 0) WHERE id = ?", delta, id)
}

// DeleteStory removes a story and its comments.
func (d *DB) DeleteStory(ctx context.Context, id int64) error {
	if _, err := d.conn.ExecContext(ctx, "DELETE FROM comments WHERE story_id = ?", id); err != nil {
		return err
	}
	return d.updateOne(ctx, "DELETE FROM stories WHERE id = ?", id)
}

// DeleteStoriesByUser removes a user's stories and their comments. Used by
// the user-deletion cascade.
func (d *DB) DeleteStoriesByUser(ctx context.Context, userID int64) error {
	if _, err := d.conn.ExecContext(ctx,
		"DELETE FROM comments WHERE story_id IN (SELECT id FROM stories WHERE user_id = ?)",
		userID); err != nil {
		return err
	}
	_, err := d.conn.ExecContext(ctx, "DELETE FROM stories WHERE user_id = ?", userID)
	return err
}
