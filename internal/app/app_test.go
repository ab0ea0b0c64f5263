package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeriksson/hackathon-chatbot-starter/internal/config"
)

func TestNewApp(t *testing.T) {
	cfg := &config.Config{
		AppPort:      8123,
		PostgresHost: "localhost",
		PostgresPort: 5432,
		PostgresUser: "postgres",
		PostgresDB:   "chat",
		OllamaURL:    "http://localhost:11434",
		MainModel:    "llama3.2",
		SystemPrompt: "You are helpful.",
		LogLevel:     "DEBUG",
	}

	app := NewApp(cfg)
	require.NotNil(t, app)

	// Wiring must not open any connections; the store connects lazily.
	assert.NotNil(t, app.Store)
	assert.NotNil(t, app.Server)
	assert.Equal(t, ":8123", app.Server.Addr)

	require.NoError(t, app.Store.Close())
}
