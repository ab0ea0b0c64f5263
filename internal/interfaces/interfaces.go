package interfaces

import (
	"context"

	"github.com/aeriksson/hackathon-chatbot-starter/internal/model"
)

// This file defines the interfaces for our core services. Depending on these
// instead of concrete implementations decouples the API layer from the
// service layer and makes handlers testable via mocking.

// ChatService defines the contract for chat-related business logic.
type ChatService interface {
	CreateChat(ctx context.Context, metadata model.Metadata) (*model.Chat, error)
	GetChat(ctx context.Context, chatID string) (*model.Chat, error)
	ListMessages(ctx context.Context, chatID string) ([]model.Message, error)
	Respond(ctx context.Context, chatID, content string, metadata model.Metadata) (*model.Message, error)
	DeleteChat(ctx context.Context, chatID string) error
}
