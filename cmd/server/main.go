package main

import (
	"os"

	"github.com/aeriksson/hackathon-chatbot-starter/internal/app"
)

// @title           Customer Support Chat API
// @version         1.0.0
// @description     HTTP API for customer support chat sessions, backed by PostgreSQL with an Ollama language model answering on the other side.
// @BasePath        /api
func main() {
	os.Exit(app.Run())
}
