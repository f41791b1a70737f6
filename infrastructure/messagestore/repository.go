// Package messagestore keeps the durable log of messages that passed the
// persistence gate, backed by SQLite.
package messagestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/knd27/kn-whatsapp-gateway/domains/storage"
)

const defaultQueryLimit = 50

type Repository struct {
	db *sql.DB
}

// NewRepository opens the message log database, applies pragmas and runs
// pending schema migrations.
func NewRepository(uri string, enableWAL bool) (*Repository, error) {
	dsn := uri
	if !strings.Contains(dsn, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	dsn += "_busy_timeout=5000&_foreign_keys=on"
	if enableWAL {
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open message store: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping message store: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	logrus.Infof("[MESSAGE_STORE] Opened %s", uri)
	return &Repository{db: db}, nil
}

func (r *Repository) Insert(ctx context.Context, msg *storage.StoredMessage) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (message_id, timestamp, sender_number, to_number, remote_jid, push_name, text, media)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.MessageID, msg.Timestamp, msg.SenderNumber, msg.ToNumber,
		msg.RemoteJID, msg.PushName, msg.Text, msg.Media,
	)
	if err != nil {
		return fmt.Errorf("insert message %s: %w", msg.MessageID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		msg.ID = id
	}
	return nil
}

// Inbox returns received messages, newest first. A non-empty senderNumber
// narrows the result to one counterpart; otherwise every row with a known
// sender qualifies.
func (r *Repository) Inbox(ctx context.Context, senderNumber string, limit int) ([]storage.StoredMessage, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	query := `
		SELECT id, message_id, timestamp, sender_number, to_number, remote_jid, push_name, text, media
		FROM messages WHERE sender_number IS NOT NULL
		ORDER BY timestamp DESC LIMIT ?`
	args := []any{limit}
	if senderNumber != "" {
		query = `
		SELECT id, message_id, timestamp, sender_number, to_number, remote_jid, push_name, text, media
		FROM messages WHERE sender_number = ?
		ORDER BY timestamp DESC LIMIT ?`
		args = []any{senderNumber, limit}
	}

	return r.queryMessages(ctx, query, args...)
}

// Sent returns messages authored by the connected account, newest first.
// Sent rows are the ones whose sender was rewritten to NULL by the
// persistence gate.
func (r *Repository) Sent(ctx context.Context, toNumber string, limit int) ([]storage.StoredMessage, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	query := `
		SELECT id, message_id, timestamp, sender_number, to_number, remote_jid, push_name, text, media
		FROM messages WHERE sender_number IS NULL
		ORDER BY timestamp DESC LIMIT ?`
	args := []any{limit}
	if toNumber != "" {
		query = `
		SELECT id, message_id, timestamp, sender_number, to_number, remote_jid, push_name, text, media
		FROM messages WHERE sender_number IS NULL AND to_number = ?
		ORDER BY timestamp DESC LIMIT ?`
		args = []any{toNumber, limit}
	}

	return r.queryMessages(ctx, query, args...)
}

func (r *Repository) ByMessageID(ctx context.Context, messageID string) (*storage.StoredMessage, error) {
	rows, err := r.queryMessages(ctx, `
		SELECT id, message_id, timestamp, sender_number, to_number, remote_jid, push_name, text, media
		FROM messages WHERE message_id = ? LIMIT 1`, messageID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) queryMessages(ctx context.Context, query string, args ...any) ([]storage.StoredMessage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []storage.StoredMessage
	for rows.Next() {
		var msg storage.StoredMessage
		if err := rows.Scan(
			&msg.ID, &msg.MessageID, &msg.Timestamp, &msg.SenderNumber, &msg.ToNumber,
			&msg.RemoteJID, &msg.PushName, &msg.Text, &msg.Media,
		); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
