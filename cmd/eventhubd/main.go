package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/eventhub/internal/config"
	"github.com/example/eventhub/internal/gateway/local"
	httptransport "github.com/example/eventhub/internal/http"
	"github.com/example/eventhub/internal/logging"
	"github.com/example/eventhub/internal/persistence/sqlstore"
	"github.com/example/eventhub/internal/realtime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("gateway stopped with error", "error", err)
		os.Exit(1)
	}
}

// gatewayServer is the assembled gateway process.
type gatewayServer struct {
	handler http.Handler
	chat    *httptransport.ChatHandler
	storage *sqlstore.Store
	broker  realtime.Broker
	logger  *slog.Logger
}

// newGatewayServer opens storage, applies migrations, connects the broker and
// wires the HTTP handlers.
func newGatewayServer(ctx context.Context, cfg config.Config, logger *slog.Logger) (*gatewayServer, error) {
	storage, err := sqlstore.Open(ctx, cfg.DatabaseDSN, sqlstore.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	var broker realtime.Broker = realtime.NewMemoryBroker()
	if cfg.NATSURL != "" {
		natsBroker, err := realtime.DialNATS(cfg.NATSURL, logger)
		if err != nil {
			_ = storage.Close()
			return nil, fmt.Errorf("connect to nats: %w", err)
		}
		broker = natsBroker
	}

	gw, err := local.New(storage, broker, local.Options{
		Secret:         []byte(cfg.JWTSecret),
		SessionTTL:     cfg.SessionTTL,
		OAuthClientIDs: cfg.OAuthClientIDs,
		Now:            time.Now,
		NewID:          uuid.NewString,
		Logger:         logger,
	})
	if err != nil {
		_ = broker.Close()
		_ = storage.Close()
		return nil, fmt.Errorf("build gateway: %w", err)
	}

	chat := httptransport.NewChatHandler(gw, logger)
	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:       httptransport.NewAuthHandler(gw, cfg.PublicOrigin, logger),
		Events:     httptransport.NewEventHandler(gw, logger),
		Social:     httptransport.NewSocialHandler(gw, logger),
		Chat:       chat,
		Session:    httptransport.RequireSession(gw, logger),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	return &gatewayServer{handler: handler, chat: chat, storage: storage, broker: broker, logger: logger}, nil
}

// Close disconnects chat sockets, then releases the broker and storage.
func (s *gatewayServer) Close() error {
	s.chat.Close()
	var errs []error
	if err := s.broker.Close(); err != nil && !errors.Is(err, realtime.ErrClosed) {
		errs = append(errs, fmt.Errorf("close broker: %w", err))
	}
	if err := s.storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	gs, err := newGatewayServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := gs.Close(); cerr != nil {
			logger.Error("failed to release resources", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           gs.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		gs.chat.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("eventhub gateway listening", "addr", server.Addr, "nats", cfg.NATSURL != "")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
