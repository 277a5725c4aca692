package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bananalab/canvas-api/internal/config"
	"github.com/bananalab/canvas-api/internal/domain/preset"
	"github.com/bananalab/canvas-api/internal/domain/project"
	"github.com/bananalab/canvas-api/internal/domain/render"
	"github.com/bananalab/canvas-api/internal/pkg/database"
	"github.com/bananalab/canvas-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().Msg("Starting render-worker")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	store, err := newStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage")
	}

	projectRepo := project.NewRepository(db)
	snapshots := project.NewRedisSnapshotStore(rdb, cfg.AutosaveTTL, cfg.SaveLockTTL)
	presetService := preset.NewService(preset.NewRepository(db))
	projectService := project.NewService(projectRepo, snapshots, nil, presetService)

	renderer := render.NewPDFRenderer(render.NewStorageImageSource(store, storageBaseURL(store)))
	renderService := render.NewService(projectService, projectRepo, render.NewJobRepository(db), store, renderer, rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis pub/sub wake-up cuts queue latency; polling still runs.
	wake := make(chan struct{}, 1)
	go renderService.SubscribeWakeups(ctx, wake)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	ticker := time.NewTicker(cfg.ExportPollInterval)
	defer ticker.Stop()
	lastIdleLog := time.Time{}
	idleLogEvery := 1 * time.Minute

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("render-worker stopped")
			return
		case <-wake:
			// immediate poll
		case <-ticker.C:
		}

		// Drain the queue one job at a time, then go back to waiting.
		worked := false
		for renderService.ProcessNext(ctx) {
			worked = true
			if ctx.Err() != nil {
				break
			}
		}
		if worked {
			lastIdleLog = time.Time{}
			continue
		}

		now := time.Now()
		if lastIdleLog.IsZero() || now.Sub(lastIdleLog) >= idleLogEvery {
			log.Info().Msg("Idle: no queued exports found")
			lastIdleLog = now
		}
	}
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.StorageDriver == "s3" {
		return storage.NewS3Storage(storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	}
	return storage.NewLocalStorage(cfg.StoragePath, cfg.StorageBaseURL)
}

func storageBaseURL(store storage.Storage) string {
	return strings.TrimSuffix(store.GetURL(""), "/")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
