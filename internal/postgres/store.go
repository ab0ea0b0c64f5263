package postgres

import (
	"context"
	"time"

	"github.com/aeriksson/hackathon-chatbot-starter/internal/model"
)

// Store defines the interface for chat persistence operations. *Client is the
// PostgreSQL implementation; consumers depend on this interface so tests can
// substitute a mock.
type Store interface {
	CreateChat(ctx context.Context, metadata model.Metadata) (string, error)
	GetChat(ctx context.Context, chatID string) (*model.Chat, error)
	DeleteChat(ctx context.Context, chatID string) (bool, error)

	AddMessage(ctx context.Context, chatID, role, content string, metadata model.Metadata) (int64, time.Time, error)
	GetMessages(ctx context.Context, chatID string) ([]model.Message, error)
}

var _ Store = (*Client)(nil)
