package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	app_errors "github.com/aeriksson/hackathon-chatbot-starter/internal/errors"
	"github.com/aeriksson/hackathon-chatbot-starter/internal/llm"
	"github.com/aeriksson/hackathon-chatbot-starter/internal/model"
	"github.com/aeriksson/hackathon-chatbot-starter/internal/postgres"
)

// ChatService implements the chat business logic on top of the persistence
// layer and the LLM provider. It owns the conversation policy: which model
// answers, with which system prompt, and how histories are assembled.
type ChatService struct {
	store        postgres.Store
	llm          llm.Provider
	model        string
	systemPrompt string
}

func NewChatService(store postgres.Store, llm llm.Provider, model, systemPrompt string) *ChatService {
	return &ChatService{store: store, llm: llm, model: model, systemPrompt: systemPrompt}
}

// translateStoreErr converts persistence sentinels into the domain errors the
// API layer knows how to map, decoupling handlers from the storage layer.
func translateStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, postgres.ErrChatNotFound):
		return fmt.Errorf("%w: chat", app_errors.ErrNotFound)
	case errors.Is(err, postgres.ErrUnavailable):
		return fmt.Errorf("%w: %v", app_errors.ErrUnavailable, err)
	default:
		return err
	}
}

// CreateChat starts a new chat session and returns it in full.
func (s *ChatService) CreateChat(ctx context.Context, metadata model.Metadata) (*model.Chat, error) {
	chatID, err := s.store.CreateChat(ctx, metadata)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	chat, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("could not read back chat: %w", translateStoreErr(err))
	}
	return chat, nil
}

// GetChat retrieves a chat's stored representation.
func (s *ChatService) GetChat(ctx context.Context, chatID string) (*model.Chat, error) {
	chat, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return chat, nil
}

// ListMessages retrieves a chat's full message history in creation order.
func (s *ChatService) ListMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	messages, err := s.store.GetMessages(ctx, chatID)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return messages, nil
}

// DeleteChat removes a chat and all of its messages.
func (s *ChatService) DeleteChat(ctx context.Context, chatID string) error {
	deleted, err := s.store.DeleteChat(ctx, chatID)
	if err != nil {
		return translateStoreErr(err)
	}
	if !deleted {
		return fmt.Errorf("%w: chat", app_errors.ErrNotFound)
	}
	return nil
}

// Respond processes a new user message: it is stored first, then the chat's
// full history plus the configured system prompt goes to the LLM, and the
// model's reply is stored and returned as the assistant message. The user
// message survives even when the LLM call fails, so a client can retry
// without losing input.
func (s *ChatService) Respond(ctx context.Context, chatID, content string, metadata model.Metadata) (*model.Message, error) {
	if _, _, err := s.store.AddMessage(ctx, chatID, "user", content, metadata); err != nil {
		return nil, translateStoreErr(err)
	}

	history, err := s.store.GetMessages(ctx, chatID)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	llmMessages := make([]llm.Message, 0, len(history)+1)
	llmMessages = append(llmMessages, llm.Message{Role: "system", Content: s.systemPrompt})
	for _, msg := range history {
		llmMessages = append(llmMessages, llm.Message{Role: msg.Role, Content: msg.Content})
	}

	resp, err := s.llm.Chat(ctx, &llm.ChatRequest{Model: s.model, Messages: llmMessages})
	if err != nil {
		slog.Error("LLM request failed", "chat_id", chatID, "model", s.model, "error", err)
		return nil, fmt.Errorf("%w: %v", app_errors.ErrUpstream, err)
	}

	answeredBy := resp.Model
	if answeredBy == "" {
		answeredBy = s.model
	}
	reply := resp.Message.Content

	msgID, createdAt, err := s.store.AddMessage(ctx, chatID, "assistant", reply, model.Metadata{"model": answeredBy})
	if err != nil {
		return nil, translateStoreErr(err)
	}

	return &model.Message{
		ID:        msgID,
		ChatID:    chatID,
		Role:      "assistant",
		Content:   reply,
		CreatedAt: createdAt,
		Metadata:  model.Metadata{"model": answeredBy},
	}, nil
}
