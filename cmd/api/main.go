package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sarthakagrawal927/reader-backend/config"
	"github.com/sarthakagrawal927/reader-backend/internal/ai"
	"github.com/sarthakagrawal927/reader-backend/internal/auth"
	"github.com/sarthakagrawal927/reader-backend/internal/blob"
	"github.com/sarthakagrawal927/reader-backend/internal/bootstrap"
	"github.com/sarthakagrawal927/reader-backend/internal/cache"
	"github.com/sarthakagrawal927/reader-backend/internal/maintenance"
	"github.com/sarthakagrawal927/reader-backend/internal/pdf"
	"github.com/sarthakagrawal927/reader-backend/internal/reader"
	"github.com/sarthakagrawal927/reader-backend/internal/search"
	"github.com/sarthakagrawal927/reader-backend/internal/store"
)

const serviceName = "reader-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	setupLogger(cfg.App.LogLevel, cfg.App.Environment)
	ctx := context.Background()

	// Firestore when a project is configured, otherwise the in-memory
	// store so the API runs locally without credentials.
	var db store.Store
	if cfg.Firebase.ProjectID != "" {
		db, err = bootstrap.OpenStore(ctx, bootstrap.StoreOptions{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsPath: cfg.Firebase.CredentialsPath,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("firestore connection failed")
		}
	} else {
		log.Warn().Msg("no Firebase project configured, running with the in-memory store")
		db = store.NewMemory()
	}
	defer db.Close()

	var verifier auth.TokenVerifier
	if cfg.Firebase.CredentialsPath != "" {
		client, err := auth.InitFirebase(ctx, &cfg.Firebase)
		if err != nil {
			log.Fatal().Err(err).Msg("firebase auth init failed")
		}
		verifier = client
	} else {
		log.Warn().Msg("no Firebase credentials configured, auth uses the dev fallback identity")
	}

	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c, err = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer c.Close()
	}

	idx, err := openIndex(cfg.Search.IndexPath)
	if err != nil {
		log.Fatal().Err(err).Msg("search index open failed")
	}
	defer idx.Close()
	searchSvc := search.NewService(idx, db)

	var uploads pdf.Uploader
	if cfg.Blob.Bucket != "" {
		blobStore, err := blob.New(ctx, &cfg.Blob)
		if err != nil {
			log.Fatal().Err(err).Msg("blob storage init failed")
		}
		uploads = blobStore
	}

	scrapeTimeout := time.Duration(cfg.Scrape.TimeoutSeconds) * time.Second
	var browser reader.Renderer
	if cfg.Scrape.BrowserEnabled {
		browser = reader.NewBrowser(scrapeTimeout)
	}
	scraper := reader.NewService(browser, reader.NewFetcher(scrapeTimeout))

	if cfg.Sweep.Enabled {
		sweeper := maintenance.NewSweeper(db, cfg.Sweep.Schedule)
		if err := sweeper.Start(); err != nil {
			log.Fatal().Err(err).Msg("sweeper start failed")
		}
		defer sweeper.Stop()
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
		CORSOrigins: cfg.CORS.AllowedOrigins,

		DB:       db,
		Verifier: verifier,
		Cache:    c,
		Search:   searchSvc,
		Scraper:  scraper,
		Uploads:  uploads,
		AI:       &ai.Registry{OllamaURL: cfg.AI.OllamaURL},

		ProxyTTL:     time.Duration(cfg.Proxy.CacheTTLSeconds) * time.Second,
		ProxyMaxBody: cfg.Proxy.MaxBodyBytes,
		PDFMaxBytes:  cfg.PDF.MaxUploadBytes,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No WriteTimeout: AI chat responses stream for as long as the
		// provider keeps talking.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.App.Environment).Msg("reader API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

func setupLogger(level, env string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func openIndex(path string) (*search.Index, error) {
	if path == "" {
		return search.OpenMemory()
	}
	return search.Open(path)
}
