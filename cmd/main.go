package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"reviewdigest/internal/bot"
	"reviewdigest/internal/collector"
	"reviewdigest/internal/config"
	"reviewdigest/internal/database"
	"reviewdigest/internal/scheduler"
	"reviewdigest/internal/service"
	"reviewdigest/internal/steam"
	"reviewdigest/internal/summarizer"
	"reviewdigest/internal/textclean"
	"reviewdigest/internal/tokenizer"
	"syscall"
	"time"
)

func main() {
	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	steamClient, err := steam.NewClient(cfg.SteamBaseURL, cfg.SteamTimeout, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize Steam client",
			"error", err,
			"baseURL", cfg.SteamBaseURL)

		return
	}

	orchestrator := summarizer.NewOrchestrator(
		initTokenizer(ctx, cfg, log),
		initEngine(ctx, cfg, log),
		textclean.Normalize,
		summarizer.OrchestratorConfig{
			ReservedOffset: cfg.ReservedOffset,
			SafetyMargin:   cfg.SafetyMargin,
			Parallelism:    cfg.SummaryParallelism,
		},
		log,
	)

	svc := service.New(
		steamClient,
		collector.New(steamClient, cfg.PagePause, log),
		orchestrator,
		cfg.SummaryMinLen,
		cfg.SummaryMaxLen,
		log,
	)

	botInst, err := bot.New(cfg.Token, svc, steamClient, db, bot.Options{
		AllowedUsers: cfg.AllowedUsers,
		MaxReviews:   cfg.MaxReviews,
		Bulleted:     cfg.Bulleted,
	}, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot",
			"error", err,
			"allowedUsersCount", len(cfg.AllowedUsers))

		return
	}
	log.InfoContext(ctx, "Bot is initialized",
		"allowedUsersCount", len(cfg.AllowedUsers))

	sched := scheduler.New(ctx, db, svc, botInst, steamClient.AppURL, scheduler.Options{
		Spec:       cfg.DigestSpec,
		MaxReviews: cfg.MaxReviews,
		Bulleted:   cfg.Bulleted,
	}, log)

	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", cfg.DigestSpec,
			"timezone", scheduler.Timezone)

		return
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", cfg.DigestSpec,
		"timezone", scheduler.Timezone)

	go botInst.Start(ctx)
	log.InfoContext(ctx, "Bot is started")

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	log.InfoContext(ctx, "Shutdown signal is received",
		"signal", sig.String())
	cancel()

	log.InfoContext(ctx, "Exiting...",
		"signal", sig.String(),
		"uptimeSeconds", time.Since(start).Seconds())

	botInst.Stop()
	log.InfoContext(ctx, "Bot is stopped",
		"uptimeSeconds", time.Since(start).Seconds())
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func initTokenizer(ctx context.Context, cfg config.Config, log *slog.Logger) tokenizer.Tokenizer {
	if cfg.Tokenizer == "words" {
		log.InfoContext(ctx, "Words tokenizer is initialized",
			"maxInputTokens", cfg.MaxInputTokens)

		return tokenizer.NewWords(cfg.MaxInputTokens)
	}

	tok, err := tokenizer.NewTiktoken(cfg.TiktokenEncoding, cfg.MaxInputTokens)
	if err != nil {
		log.WarnContext(ctx, "Failed to load tiktoken encoding so words tokenizer will be used",
			"error", err,
			"encoding", cfg.TiktokenEncoding)

		return tokenizer.NewWords(cfg.MaxInputTokens)
	}

	log.InfoContext(ctx, "Tiktoken tokenizer is initialized",
		"encoding", cfg.TiktokenEncoding,
		"maxInputTokens", cfg.MaxInputTokens)

	return tok
}

func initEngine(ctx context.Context, cfg config.Config, log *slog.Logger) summarizer.Engine {
	if cfg.OpenAIAPIKey == "" {
		log.WarnContext(ctx, "OPENAI_API_KEY is missing so fallback will be used",
			"envVar", "OPENAI_API_KEY")

		return summarizer.LeadEngine{}
	}

	engine, err := summarizer.NewOpenAIEngine(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create OpenAI engine so fallback will be used",
			"error", err,
			"envVar", "OPENAI_API_KEY")

		return summarizer.LeadEngine{}
	}

	log.InfoContext(ctx, "OpenAI engine is initialized",
		"provider", "openai",
		"model", cfg.OpenAIModel)

	return engine
}
