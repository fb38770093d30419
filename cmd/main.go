package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ghostsnap/moderation"
	"ghostsnap/observability"
	"ghostsnap/projection"
	"ghostsnap/repositories"
	"ghostsnap/search"
	"ghostsnap/services"
	"ghostsnap/storage"
	"ghostsnap/web"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle and
// centralizes error reporting so deferred cleanup always executes.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Full-text index (Bluge)
	indexWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = indexWriter.Close()
	}()
	index := search.NewMessageIndex(indexWriter, log)

	// 4. Blob store & moderation
	blobs, err := storage.NewDiskStore(config.MediaDir, config.MediaBaseURL)
	if err != nil {
		return fmt.Errorf("media dir setup failed: %w", err)
	}
	var moderator *moderation.Moderator
	if len(config.CensoredWords) > 0 {
		m, err := moderation.NewModerator(config.CensoredWords, config.ModerationCharReplacement)
		if err != nil {
			return fmt.Errorf("moderator setup failed: %w", err)
		}
		moderator = &m
	}

	// 5. Repositories, services, projections
	userRepository := repositories.NewUserRepository(db)
	friendshipRepository := repositories.NewFriendshipRepository(db)
	imageRepository := repositories.NewImageRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)

	authService := services.NewAuthService(userRepository, config.AuthTokenDuration)
	friendService := services.NewFriendService(friendshipRepository, userRepository, nil)
	imageService := services.NewImageService(imageRepository, blobs, log, nil)
	messageService := services.NewMessageService(
		messageRepository, imageRepository, userRepository,
		index, moderator, log, config.RevealWindow, nil,
	)
	conversations := projection.NewConversations(messageRepository, userRepository, nil)
	monitor := observability.NewMonitor(log)

	server := web.NewServer(
		authService, friendService, imageService, messageService,
		conversations, monitor, log, config.MediaDir,
	)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. HTTP Server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}
