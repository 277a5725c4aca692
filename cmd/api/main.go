package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bananalab/canvas-api/internal/config"
	"github.com/bananalab/canvas-api/internal/domain/asset"
	"github.com/bananalab/canvas-api/internal/domain/editor"
	"github.com/bananalab/canvas-api/internal/domain/preset"
	"github.com/bananalab/canvas-api/internal/domain/project"
	"github.com/bananalab/canvas-api/internal/domain/registry"
	"github.com/bananalab/canvas-api/internal/domain/render"
	"github.com/bananalab/canvas-api/internal/middleware"
	"github.com/bananalab/canvas-api/internal/pkg/database"
	"github.com/bananalab/canvas-api/internal/pkg/imaging"
	"github.com/bananalab/canvas-api/internal/pkg/response"
	"github.com/bananalab/canvas-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Canvas API")

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

	processor := imaging.NewProcessor(imaging.DefaultConfig())

	// ---------- Repositories ----------
	presetRepo := preset.NewRepository(db)
	projectRepo := project.NewRepository(db)
	assetRepo := asset.NewRepository(db)
	jobRepo := render.NewJobRepository(db)

	snapshots := project.NewRedisSnapshotStore(rdb, cfg.AutosaveTTL, cfg.SaveLockTTL)

	// ---------- Services ----------
	presetService := preset.NewService(presetRepo)

	// Project and asset services reference each other: saves materialize
	// embedded images through assets, cleanup asks projects which images
	// are still referenced. Wire in two steps.
	projectService := project.NewService(projectRepo, snapshots, nil, presetService)
	assetService := asset.NewService(assetRepo, store, processor, projectService)
	projectService = project.NewService(projectRepo, snapshots, assetService, presetService)

	renderer := render.NewPDFRenderer(render.NewStorageImageSource(store, storageBaseURL(store)))
	renderService := render.NewService(projectService, projectRepo, jobRepo, store, renderer, rdb)

	// ---------- Handlers ----------
	presetHandler := preset.NewHandler(presetService)
	projectHandler := project.NewHandler(projectService)
	assetHandler := asset.NewHandler(assetService)
	renderHandler := render.NewHandler(renderService)
	registryHandler := registry.NewHandler()
	editorHandler := editor.NewHandler(projectService, projectService, cfg.AllowedOrigins)

	identity := middleware.Identity()

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/presets", presetHandler.Routes())
		r.Mount("/", registryHandler.Routes())

		r.Mount("/projects", projectHandler.Routes(identity))
		r.Route("/projects/{id}", func(r chi.Router) {
			r.Use(identity)
			r.Mount("/images", assetHandler.ProjectRoutes())
			r.Mount("/export", renderHandler.ProjectRoutes())
			r.Mount("/editor", editorHandler.Routes())
		})

		r.Mount("/images", assetHandler.Routes(identity))
	})

	// Local driver serves its files directly; S3 serves from its own URL.
	if cfg.StorageDriver == "local" {
		fs := http.StripPrefix("/files/", http.FileServer(http.Dir(cfg.StoragePath)))
		r.Get("/files/*", fs.ServeHTTP)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
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
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
