package database

import (
	"context"
	"database/sql"
	"errors"

	"pulsechat/common"
	"pulsechat/models"
)

const commentColumns = `id, story_id, user_id, parent_id, content, COALESCE(likes, 0), created_at`

func scanComment(row *sql.Row) (*models.Comment, error) {
	c := &models.Comment{}
	err := row.Scan(&c.ID, &c.StoryID, &c.UserID, &c.ParentID, &c.Content, &c.Likes, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateComment persists a comment or a single-level reply.
func (d *DB) CreateComment(ctx context.Context, storyID, userID int64, parentID *int64, content string) (*models.Comment, error) {
	result, err := d.conn.ExecContext(ctx,
		"INSERT INTO comments (story_id, user_id, parent_id, content) VALUES (?, ?, ?, ?)",
		storyID, userID, parentID, content,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return d.GetComment(ctx, id)
}

// GetComment retrieves a comment by its ID
func (d *DB) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	return scanComment(d.conn.QueryRowContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE id = ?", id))
}

// CommentsByStory returns top-level comments with author info and their
// replies, oldest first.
func (d *DB) CommentsByStory(ctx context.Context, storyID int64) ([]models.CommentWithReplies, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT c.id, c.story_id, c.user_id, c.parent_id, c.content, COALESCE(c.likes, 0), c.created_at,
		        u.username, u.avatar
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.story_id = ?
		ORDER BY c.created_at ASC, c.id ASC`,
		storyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []models.CommentWithReplies
	replies := make(map[int64][]models.Comment)
	index := make(map[int64]int)

	for rows.Next() {
		var c models.CommentWithReplies
		if err := rows.Scan(&c.ID, &c.StoryID, &c.UserID, &c.ParentID, &c.Content,
			&c.Likes, &c.CreatedAt, &c.Username, &c.Avatar); err != nil {
			return nil, err
		}
		if c.ParentID == nil {
			index[c.ID] = len(top)
			top = append(top, c)
		} else {
			replies[*c.ParentID] = append(replies[*c.ParentID], c.Comment)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for parentID, rs := range replies {
		if i, ok := index[parentID]; ok {
			top[i].Replies = rs
		}
	}
	return top, nil
}

// AdjustCommentLikes changes the like counter by delta, flooring at zero.
func (d *DB) AdjustCommentLikes(ctx context.Context, id int64, delta int64) error {
	return d.updateOne(ctx,
		"UPDATE comments SET likes = MAX(likes + ?, 0) WHERE id = ?", delta, id)
}

// DeleteComment removes a comment and any replies to it.
func (d *DB) DeleteComment(ctx context.Context, id int64) error {
	if _, err := d.conn.ExecContext(ctx, "DELETE FROM comments WHERE parent_id = ?", id); err != nil {
		return err
	}
	return d.updateOne(ctx, "DELETE FROM comments WHERE id = ?", id)
}

// DeleteCommentsByUser removes every comment a user authored. Used by the
// user-deletion cascade.
func (d *DB) DeleteCommentsByUser(ctx context.Context, userID int64) error {
	_, err := d.conn.ExecContext(ctx, "DELETE FROM comments WHERE user_id = ?", userID)
	return err
}
