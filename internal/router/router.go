package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"assistant-backend/internal/handlers"
	"assistant-backend/internal/middleware"
)

func New(
	assistantHandler *handlers.AssistantHandler,
	chatHandler *handlers.ChatHandler,
	speechHandler *handlers.SpeechHandler,
	chatLimiter *middleware.RateLimiter,
	log logrus.FieldLogger,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", handlers.Health)

	// ──── Assistant Routes ────
	r.Route("/assistants", func(r chi.Router) {
		r.Post("/", assistantHandler.Create)
		r.Get("/", assistantHandler.List)
		r.Get("/{id}", assistantHandler.Get)
	})

	// ──── Chat Routes ────
	r.Route("/chat/sessions", func(r chi.Router) {
		if chatLimiter != nil {
			r.Use(chatLimiter.Middleware)
		}
		r.Post("/", chatHandler.StartSession)
		r.Get("/{id}", chatHandler.GetSession)
		r.Post("/{id}/messages", chatHandler.SendMessage)
		r.Delete("/{id}", chatHandler.EndSession)
	})

	// ──── Speech ────
	r.Group(func(r chi.Router) {
		if chatLimiter != nil {
			r.Use(chatLimiter.Middleware)
		}
		r.Post("/speech", speechHandler.Synthesize)
	})

	return r
}
