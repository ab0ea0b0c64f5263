package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	app_errors "github.com/aeriksson/hackathon-chatbot-starter/internal/errors"
	"github.com/aeriksson/hackathon-chatbot-starter/internal/model"
)

// This file contains shared DTOs (Data Transfer Objects) for API responses
// and helper functions for sending consistent HTTP responses.

// ErrorResponse defines the standard JSON structure for error messages.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse defines a generic success response for operations that do
// not return a full resource.
type StatusResponse struct {
	Status string `json:"status"`
}

// CreateChatRequest is the DTO for starting a new chat. Metadata is free-form
// and stored verbatim with the chat.
type CreateChatRequest struct {
	Metadata model.Metadata `json:"metadata,omitempty"`
}

// SendMessageRequest is the DTO for posting a user message to a chat. It
// includes validation tags enforced at the API boundary.
type SendMessageRequest struct {
	Content  string         `json:"content" validate:"required,min=1" example:"My invoice looks wrong."`
	Metadata model.Metadata `json:"metadata,omitempty"`
}

// respondWithError is the centralized error handling function for the API
// layer. It maps business-layer errors to HTTP status codes and formats a
// standard JSON error response.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "The requested resource was not found."
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		// Validation errors from the service layer are already descriptive
		// and safe to show.
		message = err.Error()
	case errors.Is(err, app_errors.ErrUnavailable):
		statusCode = http.StatusServiceUnavailable
		message = "The chat store is currently unavailable. Please retry."
	case errors.Is(err, app_errors.ErrUpstream):
		statusCode = http.StatusBadGateway
		message = "The language model backend failed to answer."
	default:
		// Any unhandled error is an internal server error. The canned message
		// avoids leaking implementation details to the client.
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal server error occurred."
	}

	// The detailed error goes to the log, the generic message to the client.
	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)

	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondWithJSON marshals a payload and writes it with the given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}
