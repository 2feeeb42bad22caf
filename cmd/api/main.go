package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/soignetech/itsupport-chatbot/internal/config"
	"github.com/soignetech/itsupport-chatbot/internal/handler"
	"github.com/soignetech/itsupport-chatbot/internal/language"
	"github.com/soignetech/itsupport-chatbot/internal/logger"
	aiservice "github.com/soignetech/itsupport-chatbot/internal/service/ai"
	chatservice "github.com/soignetech/itsupport-chatbot/internal/service/chat"
	searchservice "github.com/soignetech/itsupport-chatbot/internal/service/search"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.Log.FilePath, cfg.Log.Prod)
	defer func() { _ = zlog.Sync() }()

	detector := language.NewDetector()

	genClient := aiservice.NewClient(cfg.OpenAI.URL(), cfg.OpenAI.APIKey, cfg.OpenAI.RequestsPerSec, zlog.Named("ai"))
	translator := aiservice.NewTranslator(genClient, detector, cfg.OpenAI.TranslateTimeout, zlog.Named("translate"))
	generator := aiservice.NewGenerator(genClient, detector, aiservice.GeneratorOptions{
		Temperature: cfg.Chat.Temperature,
		TopP:        cfg.Chat.TopP,
		MaxTokens:   cfg.Chat.MaxTokens,
		Timeout:     cfg.OpenAI.GenerateTimeout,
	}, zlog.Named("generate"))

	searchClient := searchservice.NewClient(cfg.Search.URL(), cfg.Search.APIKey, searchservice.Options{
		Timeout:            cfg.Search.Timeout,
		MaxAttempts:        cfg.Search.MaxAttempts,
		RetryAfterFallback: cfg.Search.RetryAfterFallback,
	}, zlog.Named("search"))

	store := chatservice.NewStore(cfg.Chat.SessionTTL, config.MaxHistoryTurns, zlog.Named("sessions"))
	chatSvc := chatservice.NewService(store, detector, translator, searchClient, generator, cfg.Chat.RateLimitWindow, zlog.Named("chat"))

	router := handler.NewRouter(chatSvc, cfg.Server.AllowedOrigins)

	zlog.Info("IT support chatbot starting",
		zap.String("addr", cfg.Server.Addr),
		zap.String("index", cfg.Search.Index))

	startServer(ctx, cfg.Server.Addr, router, zlog)
}

func startServer(ctx context.Context, addr string, router http.Handler, zlog *zap.Logger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := runServer(ctx, srv); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
	zlog.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
