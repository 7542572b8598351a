package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/meetlive/caption-coach/internal/coach"
	"github.com/meetlive/caption-coach/internal/config"
	"github.com/meetlive/caption-coach/internal/dispatcher"
	"github.com/meetlive/caption-coach/internal/guard"
	"github.com/meetlive/caption-coach/internal/httpapi"
	"github.com/meetlive/caption-coach/internal/llm"
	"github.com/meetlive/caption-coach/internal/persistence"
	"github.com/meetlive/caption-coach/internal/pipeline"
	"github.com/meetlive/caption-coach/internal/resultcache"
	"github.com/meetlive/caption-coach/pkg/log"
)

func main() {
	_ = godotenv.Load()
	log.InitLogger(log.ParseLevel(os.Getenv("LOG_LEVEL")))

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal("captioncoach exited with error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := persistence.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := llm.NewClient(&llm.Config{
		APIKey:  cfg.LLM.APIKey,
		APIURL:  cfg.LLM.APIURL,
		Timeout: cfg.LLM.Timeout,
		SiteURL: cfg.LLM.SiteURL,
		AppName: cfg.LLM.AppName,
	})
	if err != nil {
		return err
	}

	cache := resultcache.New(
		resultcache.WithTTL(cfg.Pipeline.ResultCacheTTL),
		resultcache.WithMaxEntries(cfg.Pipeline.ResultCacheEntries),
	)
	disp := dispatcher.New(client, cache, dispatcher.WithResumeProvider(store))

	hub := httpapi.NewHub()
	share := httpapi.NewShareState()

	orchestrator := coach.NewOrchestrator(pipeline.CoachRequester{
		Settings:   store,
		Dispatcher: disp,
	}, hub)

	session := pipeline.NewSession(ctx, store, disp, orchestrator, hub,
		pipeline.WithQuietPeriod(cfg.Pipeline.QuietPeriod),
		pipeline.WithSourceDedupTTL(cfg.Pipeline.SourceDedupTTL),
		pipeline.WithHistorySize(cfg.Pipeline.HistorySize),
	)
	defer session.Close()

	panelGuard := guard.New(share,
		func(ctx context.Context) error {
			return store.SetPanelVisible(ctx, false)
		},
		guard.WithCheckInterval(cfg.Pipeline.ShareCheckInterval),
	)
	go panelGuard.Run(ctx)

	cronEngine := cron.New()
	if _, err := cronEngine.AddFunc(cfg.Maintenance.SweepCronExpr, func() {
		if removed := cache.Sweep(); removed > 0 {
			log.Debug("result cache sweep removed %d entries", removed)
		}
	}); err != nil {
		return err
	}
	cronEngine.Start()
	defer cronEngine.Stop()

	server := httpapi.NewServer(session, store, hub, share,
		httpapi.WithGuard(panelGuard),
		httpapi.WithCoachControl(orchestrator),
	)

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP API listening on %s", cfg.Server.ListenAddr)
		errCh <- server.ListenAndServe(cfg.Server.ListenAddr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
