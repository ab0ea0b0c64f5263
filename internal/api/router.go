package api

import (
	"context"
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "github.com/aeriksson/hackathon-chatbot-starter/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Pinger reports whether the backing store currently answers a liveness
// probe. The readiness endpoint depends on this instead of the concrete
// store client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter creates and configures a new chi router with all the
// application's routes.
func NewRouter(chatHandler *ChatHandler, store Pinger) *chi.Mux {
	r := chi.NewRouter()

	// --- Global Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// The starter setup accepts any origin so local frontends can talk to
	// the API without extra configuration.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Serves the auto-generated Swagger UI for API documentation.
	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	// Liveness probe: answers as long as the process runs.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	})

	// Readiness probe: answers 200 only while the chat store does. Container
	// orchestrators use this to keep traffic away until PostgreSQL is up.
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "unavailable"})
			return
		}
		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	// --- API Routes ---
	r.Route("/api", func(r chi.Router) {

		// Standard JSON routes get a request timeout so client connections
		// cannot hang indefinitely.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Post("/chats", chatHandler.HandleCreateChat)
			r.Get("/chats/{chatID}", chatHandler.HandleGetChat)
			r.Delete("/chats/{chatID}", chatHandler.HandleDeleteChat)
			r.Get("/chats/{chatID}/messages", chatHandler.HandleGetMessages)
		})

		// The reply endpoint waits on the language model, which can easily
		// exceed a minute on cold model loads, so it runs without a timeout.
		r.Group(func(r chi.Router) {
			r.Post("/chats/{chatID}/messages", chatHandler.HandleSendMessage)
		})
	})

	return r
}
