package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	app_errors "github.com/aeriksson/hackathon-chatbot-starter/internal/errors"
	"github.com/aeriksson/hackathon-chatbot-starter/internal/interfaces"
)

// ChatHandler handles HTTP requests for chat sessions and their messages.
type ChatHandler struct {
	service interfaces.ChatService
}

func NewChatHandler(svc interfaces.ChatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// HandleCreateChat godoc
// @Summary      Start a new chat
// @Description  Creates a new chat session, optionally tagged with free-form metadata.
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        chatRequest  body  CreateChatRequest  false  "Optional chat metadata"
// @Success      201  {object}  model.Chat
// @Failure      400  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /chats [post]
func (h *ChatHandler) HandleCreateChat(w http.ResponseWriter, r *http.Request) {
	// The body is optional; an empty POST starts a chat with no metadata.
	var req CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}

	chat, err := h.service.CreateChat(r.Context(), req.Metadata)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, chat)
}

// HandleGetChat godoc
// @Summary      Get a chat
// @Description  Retrieves a chat session by its id.
// @Tags         Chats
// @Produce      json
// @Param        chatID  path  string  true  "Chat ID"
// @Success      200  {object}  model.Chat
// @Failure      404  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /chats/{chatID} [get]
func (h *ChatHandler) HandleGetChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	chat, err := h.service.GetChat(r.Context(), chatID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, chat)
}

// HandleDeleteChat godoc
// @Summary      Delete a chat
// @Description  Deletes a chat session and all of its messages.
// @Tags         Chats
// @Produce      json
// @Param        chatID  path  string  true  "Chat ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /chats/{chatID} [delete]
func (h *ChatHandler) HandleDeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	if err := h.service.DeleteChat(r.Context(), chatID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleGetMessages godoc
// @Summary      List a chat's messages
// @Description  Returns the chat's full message history in creation order.
// @Tags         Messages
// @Produce      json
// @Param        chatID  path  string  true  "Chat ID"
// @Success      200  {array}   model.Message
// @Failure      503  {object}  ErrorResponse
// @Router       /chats/{chatID}/messages [get]
func (h *ChatHandler) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	messages, err := h.service.ListMessages(r.Context(), chatID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, messages)
}

// HandleSendMessage godoc
// @Summary      Send a message
// @Description  Stores the user message, asks the language model for a reply and returns the stored assistant message.
// @Tags         Messages
// @Accept       json
// @Produce      json
// @Param        chatID          path  string              true  "Chat ID"
// @Param        messageRequest  body  SendMessageRequest  true  "Message content"
// @Success      201  {object}  model.Message
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /chats/{chatID}/messages [post]
func (h *ChatHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	reply, err := h.service.Respond(r.Context(), chatID, req.Content, req.Metadata)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, reply)
}
