package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"citizenpress/cmd/app"
	"citizenpress/internal/config"
	handlers "citizenpress/internal/handler"
	"citizenpress/internal/logger"
	"citizenpress/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zapLog, err := logger.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zapLog.Sync()

	if err := run(cfg, zapLog); err != nil {
		zapLog.Error("server stopped with error", zap.Error(err))
		zapLog.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, services, err := app.App(cfg, log)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	router := handlers.NewRouter(handlers.NewHandlers(services, cfg, log.Named("http")))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		purgeExpiredCodes(ctx, services.Auth, cfg.OTPPurgeInterval, log.Named("janitor"))
	}()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", server.Addr), zap.String("env", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		<-janitorDone
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-janitorDone

	log.Info("server stopped")
	return nil
}

// purgeExpiredCodes deletes expired reset codes every interval until ctx is done.
func purgeExpiredCodes(ctx context.Context, auth service.AuthService, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		log.Info("expired code purge disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := auth.PurgeExpiredCodes(ctx, now)
			if err != nil {
				log.Warn("purge expired codes", zap.Error(err))
				continue
			}
			if removed > 0 {
				log.Info("purged expired codes", zap.Int64("removed", removed))
			}
		}
	}
}
