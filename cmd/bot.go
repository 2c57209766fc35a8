package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nextlevelbuilder/topicbot/internal/channels"
	"github.com/nextlevelbuilder/topicbot/internal/channels/discord"
	"github.com/nextlevelbuilder/topicbot/internal/config"
	"github.com/nextlevelbuilder/topicbot/internal/tracing"
)

func runBot() {
	setupLogging()

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(true); err != nil {
		slog.Error("invalid configuration", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Telemetry, Version)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		slog.Error("failed to build routing engine", "error", err)
		os.Exit(1)
	}

	channelMgr := channels.NewManager()
	dc, err := discord.New(cfg.Discord, engine, cfg.Routing.ShouldAnnounce())
	if err != nil {
		slog.Error("failed to create discord channel", "error", err)
		os.Exit(1)
	}
	channelMgr.RegisterChannel(dc.Name(), dc)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if err := channelMgr.StartAll(ctx); err != nil {
		slog.Error("failed to start channels", "error", err)
		os.Exit(1)
	}

	slog.Info("topicbot running",
		"version", Version,
		"channels", channelMgr.GetEnabledChannels(),
		"categories", engine.Table().Len(),
		"cutoff", cfg.Routing.ConfidenceCutoff,
		"announce", cfg.Routing.ShouldAnnounce(),
	)

	sig := <-sigCh
	slog.Info("graceful shutdown initiated", "signal", sig)

	channelMgr.StopAll(context.Background())
	cancel()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := shutdownTracing(flushCtx); err != nil {
		slog.Warn("tracing shutdown failed", "error", err)
	}

	slog.Info("topicbot stopped")
}
