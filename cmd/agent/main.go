package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storycut/storycut-agent/internal/api"
	"github.com/storycut/storycut-agent/internal/archive"
	"github.com/storycut/storycut-agent/internal/compose"
	"github.com/storycut/storycut-agent/internal/config"
	"github.com/storycut/storycut-agent/internal/db"
	"github.com/storycut/storycut-agent/internal/history"
	"github.com/storycut/storycut-agent/internal/logging"
	"github.com/storycut/storycut-agent/internal/media"
	"github.com/storycut/storycut-agent/internal/playback"
	"github.com/storycut/storycut-agent/internal/segments"
	"github.com/storycut/storycut-agent/internal/timeline"
	"github.com/storycut/storycut-agent/internal/ui"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.MediaDir(), 0755); err != nil {
		return fmt.Errorf("failed to create media dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting storycut agent", "version", config.Version, "data_dir", logging.SanitizePath(cfg.DataDir()))

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := history.NewRepository(database.Conn())

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                   STORYCUT AGENT v0.1.0                   ║")
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	segmentStore := segments.NewStore(logger)
	segmentStore.Load(cfg.SegmentsPath(), cfg.TermsPath())

	timelineStore := timeline.Load(cfg.CompositionPath(), config.DefaultTimebase, logger)

	// Re-seed the frame rate from a previous session's timebase; on a
	// fresh environment fps stays unset until the operator supplies one.
	clock := timeline.NewClock()
	if timelineStore.Loaded() {
		clock = timeline.NewClockWithFPS(float64(timelineStore.Snapshot().Timebase))
	}

	archiveLog := archive.Load(cfg.ArchivePath(), logger)
	downloadIndex := media.LoadIndex(cfg.DownloadIndexPath(), logger)

	fetcher := media.NewHTTPFetcher(cfg.MediaDir(), cfg.FetchTimeout(), logger)

	var downloader media.Downloader
	dl, err := media.NewDownloader(media.DownloaderConfig{
		PythonPath: cfg.DownloaderPython(),
		ModuleName: cfg.DownloaderModule(),
		MediaDir:   cfg.MediaDir(),
		Timeout:    cfg.DownloaderTimeout(),
		Logger:     logger,
	})
	if err != nil {
		logger.Warn("video downloader unavailable, video acquisition disabled", "error", err)
		downloader = media.NewStubDownloader(logger)
	} else {
		downloader = dl
	}

	service := compose.NewService(compose.Config{
		Segments:   segmentStore,
		Clock:      clock,
		Timeline:   timelineStore,
		Archive:    archiveLog,
		Index:      downloadIndex,
		History:    repo,
		Fetcher:    fetcher,
		Downloader: downloader,
		ExportPath: cfg.FrameExportPath(),
		Logger:     logger,
	})

	apiServer := api.NewServer(api.ServerConfig{
		Port:       cfg.Port(),
		MediaDir:   cfg.MediaDir(),
		Service:    service,
		Repository: repo,
		Playback:   playback.NewServer(cfg.MediaDir(), logger),
		Logger:     logger,
		StartTime:  startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Service: service,
			Logger:  logger,
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func ensureAuthToken(repo history.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "auth_token")
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 24)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}
	return token, nil
}
