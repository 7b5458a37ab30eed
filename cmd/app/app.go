package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"citizenpress/internal/config"
	"citizenpress/internal/database"
	"citizenpress/internal/notify"
	"citizenpress/internal/repository"
	"citizenpress/internal/service"
	"citizenpress/internal/storage"
)

const startupTimeout = 30 * time.Second

// App connects and migrates the database, then builds the blob store, mailer, repositories and services.
// The returned DB must be closed by the caller.
func App(cfg *config.Config, log *zap.Logger) (*database.DB, *service.Service, error) {
	db, err := database.ConnectDB(cfg, log.Named("db"))
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	minioClient, err := storage.NewMinIOClient(cfg, log.Named("storage"))
	if err != nil {
		db.CloseDB()
		return nil, nil, fmt.Errorf("init minio: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := minioClient.EnsureBucket(ctx, cfg.MinIO.Region); err != nil {
		db.CloseDB()
		return nil, nil, fmt.Errorf("ensure bucket: %w", err)
	}

	notifier, err := newNotifier(cfg, log.Named("notify"))
	if err != nil {
		db.CloseDB()
		return nil, nil, err
	}

	repo := repository.NewRepository(db.DB)
	services := service.NewService(repo, cfg, minioClient, notifier, log)

	return db, services, nil
}

// newNotifier mails codes over SMTP. Outside production an unconfigured relay falls back to logging the code.
func newNotifier(cfg *config.Config, log *zap.Logger) (notify.Notifier, error) {
	if cfg.SMTP.Enabled() {
		return notify.NewSMTPMailer(cfg.SMTP, log), nil
	}

	if cfg.IsProduction() {
		return nil, errors.New("SMTP_HOST, SMTP_USER and SMTP_PASS must be set in production")
	}

	log.Warn("SMTP is not configured, reset codes will be written to the log")
	return notify.NewLogNotifier(log), nil
}
