// Package database is the persistence gateway: CRUD and queries over the
// users, chats, messages, stories, comments, contacts, calls and support
// collections. It owns all SQL; no other package touches the database.
package database

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sql handle. All methods take a context so callers can bound
// persistence calls.
type DB struct {
	conn *sql.DB
}

// Open sets up the database connection and creates tables.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	// sqlite allows one writer; a single pooled connection avoids
	// SQLITE_BUSY under concurrent relay traffic.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn}
	if err := db.createTables(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) createTables() error {
	tables := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		avatar TEXT DEFAULT '',
		role TEXT DEFAULT 'user',
		is_disabled BOOLEAN DEFAULT FALSE,
		last_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS chats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		participant_one_id INTEGER NOT NULL,
		participant_two_id INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (participant_one_id) REFERENCES users(id),
		FOREIGN KEY (participant_two_id) REFERENCES users(id),
		UNIQUE(participant_one_id, participant_two_id)
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL,
		sender_id INTEGER NOT NULL,
		type TEXT DEFAULT 'text',
		content TEXT NOT NULL,
		media_url TEXT DEFAULT '',
		is_read BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (chat_id) REFERENCES chats(id) ON DELETE CASCADE,
		FOREIGN KEY (sender_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS stories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		type TEXT NOT NULL,
		caption TEXT DEFAULT '',
		media_url TEXT DEFAULT '',
		background_url TEXT DEFAULT '',
		likes INTEGER DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		story_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		parent_id INTEGER,
		content TEXT NOT NULL,
		likes INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (story_id) REFERENCES stories(id) ON DELETE CASCADE,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_one_id INTEGER NOT NULL,
		user_two_id INTEGER NOT NULL,
		requester_id INTEGER NOT NULL,
		status TEXT DEFAULT 'pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_one_id) REFERENCES users(id),
		FOREIGN KEY (user_two_id) REFERENCES users(id),
		UNIQUE(user_one_id, user_two_id)
	);

	CREATE TABLE IF NOT EXISTS calls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		caller_id INTEGER NOT NULL,
		receiver_id INTEGER NOT NULL,
		status TEXT DEFAULT 'missed',
		duration INTEGER DEFAULT 0,
		started_at TIMESTAMP,
		ended_at TIMESTAMP,
		FOREIGN KEY (caller_id) REFERENCES users(id),
		FOREIGN KEY (receiver_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS support_tickets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		subject TEXT NOT NULL,
		message TEXT NOT NULL,
		category TEXT DEFAULT 'other',
		priority TEXT DEFAULT 'medium',
		status TEXT DEFAULT 'pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id);
	CREATE INDEX IF NOT EXISTS idx_chats_participant_one ON chats(participant_one_id);
	CREATE INDEX IF NOT EXISTS idx_chats_participant_two ON chats(participant_two_id);
	CREATE INDEX IF NOT EXISTS idx_stories_user ON stories(user_id);
	CREATE INDEX IF NOT EXISTS idx_stories_expires ON stories(expires_at);
	CREATE INDEX IF NOT EXISTS idx_comments_story ON comments(story_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments(parent_id);
	CREATE INDEX IF NOT EXISTS idx_contacts_users ON contacts(user_one_id, user_two_id);
	CREATE INDEX IF NOT EXISTS idx_calls_caller ON calls(caller_id);
	CREATE INDEX IF NOT EXISTS idx_calls_receiver ON calls(receiver_id);
	CREATE INDEX IF NOT EXISTS idx_support_user ON support_tickets(user_id);
	`

	_, err := d.conn.Exec(tables)
	return err
}

// orderedPair normalizes an unordered id pair so the smaller id comes first.
func orderedPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
