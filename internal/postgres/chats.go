package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aeriksson/hackathon-chatbot-starter/internal/model"
)

// CreateChat inserts a new chat session with the supplied metadata (nil means
// empty) and returns its generated id. created_at and updated_at start equal.
func (c *Client) CreateChat(ctx context.Context, metadata model.Metadata) (chatID string, err error) {
	defer func() { observe("create_chat", err) }()

	db, err := c.ensureReady(ctx)
	if err != nil {
		return "", err
	}

	meta, err := encodeMetadata(metadata)
	if err != nil {
		return "", err
	}

	chatID = uuid.NewString()
	now := time.Now().UTC()

	query := fmt.Sprintf(`INSERT INTO %s.chats (id, created_at, updated_at, metadata) VALUES ($1, $2, $3, $4)`, c.ns)
	if _, err := db.ExecContext(ctx, query, chatID, now, now, meta); err != nil {
		slog.Error("Failed to create chat", "error", err)
		return "", fmt.Errorf("create chat: %w", err)
	}

	slog.Info("Created chat session", "chat_id", chatID)
	return chatID, nil
}

// AddMessage appends a message to an existing chat. The parent chat is looked
// up first; a missing chat fails with ErrChatNotFound and writes nothing. The
// chat's updated_at bump and the message insert run in a single transaction,
// so a failure of either leaves the store untouched. Returns the generated
// message id and its creation time.
func (c *Client) AddMessage(ctx context.Context, chatID, role, content string, metadata model.Metadata) (msgID int64, createdAt time.Time, err error) {
	defer func() { observe("add_message", err) }()

	db, err := c.ensureReady(ctx)
	if err != nil {
		return 0, time.Time{}, err
	}

	meta, err := encodeMetadata(metadata)
	if err != nil {
		return 0, time.Time{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Lock the parent row for the duration of the insert; a concurrent
	// delete of the chat waits until this transaction ends.
	var parent string
	query := fmt.Sprintf(`SELECT id FROM %s.chats WHERE id = $1 FOR UPDATE`, c.ns)
	if err := tx.QueryRowContext(ctx, query, chatID).Scan(&parent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, time.Time{}, fmt.Errorf("chat %s: %w", chatID, ErrChatNotFound)
		}
		slog.Error("Failed to look up chat for message", "chat_id", chatID, "error", err)
		return 0, time.Time{}, fmt.Errorf("look up chat: %w", err)
	}

	createdAt = time.Now().UTC()
	msgID = c.nextMessageID(createdAt)

	query = fmt.Sprintf(`UPDATE %s.chats SET updated_at = $1 WHERE id = $2`, c.ns)
	if _, err := tx.ExecContext(ctx, query, createdAt, chatID); err != nil {
		slog.Error("Failed to bump chat timestamp", "chat_id", chatID, "error", err)
		return 0, time.Time{}, fmt.Errorf("update chat timestamp: %w", err)
	}

	query = fmt.Sprintf(`INSERT INTO %s.messages (id, chat_id, role, content, created_at, metadata) VALUES ($1, $2, $3, $4, $5, $6)`, c.ns)
	if _, err := tx.ExecContext(ctx, query, msgID, chatID, role, content, createdAt, meta); err != nil {
		slog.Error("Failed to insert message", "chat_id", chatID, "error", err)
		return 0, time.Time{}, fmt.Errorf("insert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, time.Time{}, fmt.Errorf("commit message: %w", err)
	}

	slog.Info("Added message", "chat_id", chatID, "message_id", msgID, "role", role)
	return msgID, createdAt, nil
}

// GetChat fetches a chat by id. A missing chat returns ErrChatNotFound;
// store failures are logged and returned as themselves, so callers can tell
// confirmed absence apart from an unreachable store.
func (c *Client) GetChat(ctx context.Context, chatID string) (chat *model.Chat, err error) {
	defer func() { observe("get_chat", err) }()

	db, err := c.ensureReady(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, created_at, updated_at, metadata FROM %s.chats WHERE id = $1`, c.ns)
	var (
		out  model.Chat
		meta []byte
	)
	if err := db.QueryRowContext(ctx, query, chatID).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt, &meta); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		slog.Error("Failed to get chat", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("get chat: %w", err)
	}

	if out.Metadata, err = decodeMetadata(meta); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMessages returns all messages of a chat in ascending created_at order.
// A chat with no messages, or an unknown chat id, yields an empty slice, not
// an error. The store's readiness probe runs first, so the first call on a
// fresh process blocks until the database answers.
func (c *Client) GetMessages(ctx context.Context, chatID string) (messages []model.Message, err error) {
	defer func() { observe("get_messages", err) }()

	// Probe first: a reconnect inside AwaitReady swaps the handle, so the
	// one we query with has to be fetched afterwards.
	if err := c.AwaitReady(ctx); err != nil {
		return nil, err
	}
	db, err := c.ensureReady(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, chat_id, role, content, created_at, metadata FROM %s.messages WHERE chat_id = $1 ORDER BY created_at ASC`, c.ns)
	rows, err := db.QueryContext(ctx, query, chatID)
	if err != nil {
		slog.Error("Failed to get messages", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer rows.Close()

	messages = []model.Message{}
	for rows.Next() {
		var (
			msg  model.Message
			meta []byte
		)
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &msg.CreatedAt, &meta); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if msg.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		slog.Error("Failed to iterate messages", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// DeleteChat removes a chat and, through the ON DELETE CASCADE constraint,
// all of its messages. It reports whether a row was actually deleted; a
// missing chat returns (false, nil) and performs no writes.
func (c *Client) DeleteChat(ctx context.Context, chatID string) (deleted bool, err error) {
	defer func() { observe("delete_chat", err) }()

	if err := c.AwaitReady(ctx); err != nil {
		return false, err
	}
	db, err := c.ensureReady(ctx)
	if err != nil {
		return false, err
	}

	if _, err := c.GetChat(ctx, chatID); err != nil {
		if errors.Is(err, ErrChatNotFound) {
			return false, nil
		}
		return false, err
	}

	query := fmt.Sprintf(`DELETE FROM %s.chats WHERE id = $1`, c.ns)
	res, err := db.ExecContext(ctx, query, chatID)
	if err != nil {
		slog.Error("Failed to delete chat", "chat_id", chatID, "error", err)
		return false, fmt.Errorf("delete chat: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete chat rows affected: %w", err)
	}
	if affected > 0 {
		slog.Info("Deleted chat and its messages", "chat_id", chatID)
		return true, nil
	}
	return false, nil
}
