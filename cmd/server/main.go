package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"assistant-backend/internal/config"
	"assistant-backend/internal/conversation"
	"assistant-backend/internal/database"
	"assistant-backend/internal/handlers"
	"assistant-backend/internal/middleware"
	"assistant-backend/internal/repository"
	"assistant-backend/internal/router"
	"assistant-backend/internal/services"
	"assistant-backend/internal/session"
	"assistant-backend/internal/worker"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "assistant-server",
		Short:        "Chat assistant backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			setupLogging(cfg)

			db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			logrus.Println("✓ Database migrations applied")
			return nil
		},
	})

	return root
}

func setupLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// writeTimeout leaves headroom past the generation deadline. A zero
// generation timeout disables both.
func writeTimeout(generation time.Duration) time.Duration {
	if generation <= 0 {
		return 0
	}
	return generation + 15*time.Second
}

func serve(ctx context.Context) error {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	setupLogging(cfg)
	logrus.Println("🚀 Starting Assistant Backend...")
	if err := cfg.Validate(); err != nil {
		logrus.Errorf("✗ Invalid configuration: %v", err)
		return err
	}
	logrus.Println("✓ Environment variables loaded")

	// ──── Step 2: Open Database ────
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logrus.Errorf("✗ Database connection failed: %v", err)
		return err
	}
	defer db.Close()
	logrus.Printf("✓ %s connected", cfg.DatabaseDriver)

	// ──── Step 3: Run Database Migrations ────
	if err := db.Migrate(ctx); err != nil {
		logrus.Errorf("✗ Database migration failed: %v", err)
		return err
	}
	logrus.Println("✓ Database migrations applied")

	assistantRepo, err := repository.NewAssistantRepo(db)
	if err != nil {
		return err
	}

	// ──── Step 4: Session Store ────
	var sessions session.Store
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logrus.Errorf("✗ Redis connection failed: %v", err)
			return err
		}
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient, cfg.SessionTTL)
		logrus.Println("✓ Redis session store connected")
	} else {
		memoryStore := session.NewMemoryStore()
		janitor := worker.NewJanitor(memoryStore, cfg.SessionTTL, time.Minute)
		janitor.Start()
		defer janitor.Stop()
		sessions = memoryStore
		logrus.Println("✓ In-memory session store ready")
	}

	// ──── Step 5: Initialize Generator ────
	generator, err := services.NewGenerator(ctx, cfg)
	if err != nil {
		logrus.Errorf("✗ %s client initialization failed: %v", cfg.LLMProvider, err)
		return err
	}
	defer generator.Close()
	logrus.Printf("✓ %s generator initialized", cfg.LLMProvider)

	params := conversation.GenerationParams{
		Temperature:      cfg.Temperature,
		TopP:             cfg.TopP,
		TopK:             cfg.TopK,
		MaxOutputTokens:  cfg.MaxOutputTokens,
		ResponseMIMEType: "text/plain",
		SafetyThreshold:  cfg.SafetyThreshold,
	}
	if err := params.Validate(); err != nil {
		logrus.Errorf("✗ Invalid generation parameters: %v", err)
		return err
	}

	counter, err := conversation.NewTokenCounter(ctx, 10*time.Second)
	if err != nil {
		logrus.WithError(err).Warn("tiktoken encoding unavailable, using approximate token counts")
		counter = conversation.NewApproxTokenCounter()
	}
	transformer := conversation.NewTransformer(conversation.TransformerConfig{
		Params:           params,
		EscapeInput:      cfg.EscapeInput,
		HistoryTokenWarn: cfg.HistoryTokenWarn,
		Counter:          counter,
	})

	persona, err := services.LoadPersona(cfg.PersonaFile, cfg.PersonaSuffix)
	if err != nil {
		logrus.Errorf("✗ Persona load failed: %v", err)
		return err
	}

	// ──── Step 6: Initialize Services ────
	chatService := services.NewChatService(generator, sessions, assistantRepo, transformer, persona, cfg.GenerationTimeout)

	speechHandler := handlers.NewSpeechHandler(nil)
	if cfg.TTSAPIKey != "" {
		speechService, err := services.NewSpeechService(ctx, services.SpeechConfig{
			APIKey:       cfg.TTSAPIKey,
			LanguageCode: cfg.TTSLanguage,
			VoiceName:    cfg.TTSVoice,
			Gender:       cfg.TTSGender,
		})
		if err != nil {
			logrus.Errorf("✗ Text-to-speech client initialization failed: %v", err)
			return err
		}
		speechHandler = handlers.NewSpeechHandler(speechService)
		logrus.Println("✓ Text-to-speech client initialized")
	}

	chatLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer chatLimiter.Stop()

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		handlers.NewAssistantHandler(assistantRepo),
		handlers.NewChatHandler(chatService),
		speechHandler,
		chatLimiter,
		logrus.StandardLogger(),
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(cfg.GenerationTimeout),
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logrus.Printf("✓ Assistant Backend ready on http://localhost:%s", cfg.Port)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logrus.Errorf("Server error: %v", err)
		return err
	case <-sigChan:
	}

	logrus.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
