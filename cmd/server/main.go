package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/MAdityaRao/Resume-agent/adapters"
	"github.com/MAdityaRao/Resume-agent/adapters/llm"
	"github.com/MAdityaRao/Resume-agent/adapters/mongo"
	"github.com/MAdityaRao/Resume-agent/adapters/stt"
	"github.com/MAdityaRao/Resume-agent/adapters/tts"
	"github.com/MAdityaRao/Resume-agent/adapters/vad"
	"github.com/MAdityaRao/Resume-agent/domain/repositories"
	"github.com/MAdityaRao/Resume-agent/internal/api"
	"github.com/MAdityaRao/Resume-agent/internal/interview"
	"github.com/MAdityaRao/Resume-agent/internal/websocket"
)

const (
	cleanupPeriod = 30 * time.Minute
	staleAfter    = 24 * time.Hour
)

func main() {
	// Local development secrets live in .env.local; absence is fine in
	// deployed environments.
	godotenv.Load(".env.local")

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	resume, err := interview.LoadResume(interview.DefaultResumePath)
	if err != nil {
		logger.Fatal("Failed to load resume", zap.Error(err))
	}
	composer := interview.NewComposer(resume)

	ctx := context.Background()

	languageModel, err := llm.NewGemini(ctx, llm.ConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize language model", zap.Error(err))
	}

	synthesizer, err := tts.NewElevenLabs(tts.ConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize speech synthesizer", zap.Error(err))
	}

	transcriber := stt.NewGoogleSpeechToText(logger)
	detector := vad.NewEnergyDetector()

	store := newInterviewStore(logger)

	hub := websocket.NewHub(composer, languageModel, transcriber, synthesizer, detector, store, logger)
	go hub.Run()
	go expireStaleInterviews(store, logger)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.InitRoutes(e, hub, store, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Interview agent started", zap.String("port", port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newInterviewStore picks MongoDB when MONGODB_URI is set, otherwise an
// in-process store so the agent runs without external infrastructure.
func newInterviewStore(logger *zap.Logger) repositories.InterviewRepository {
	if os.Getenv("MONGODB_URI") == "" {
		logger.Info("MONGODB_URI not set, using in-memory interview store")
		return adapters.NewMemoryInterviewRepository()
	}

	client, err := mongo.NewClient(logger)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	return mongo.NewInterviewRepository(client.Database)
}

// expireStaleInterviews marks long-idle sessions expired so transcripts of
// abandoned rooms do not stay active forever.
func expireStaleInterviews(store repositories.InterviewRepository, logger *zap.Logger) {
	ticker := time.NewTicker(cleanupPeriod)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := store.ExpireStale(ctx, staleAfter); err != nil {
			logger.Warn("Failed to expire stale interviews", zap.Error(err))
		}
		cancel()
	}
}
