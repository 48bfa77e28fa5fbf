// Command casinha runs the household expenses chat bot on Discord, or on the
// terminal with -console.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"casinha/internal/backend"
	"casinha/internal/bot"
	"casinha/internal/cache"
	"casinha/internal/cli"
	"casinha/internal/config"
	"casinha/internal/log"
	"casinha/internal/middleware/ratelimit"
	"casinha/internal/middleware/trace"
	"casinha/internal/services"
)

func main() {
	console := flag.Bool("console", false, "chat on stdin/stdout instead of Discord")
	user := flag.String("user", "console", "user id for console mode")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	logger.Info("Starting casinha", "console", *console)

	cfg := cli.LoadAndValidateConfig(logger)
	if !*console {
		if err := cfg.ValidateBot(); err != nil {
			logger.Error("Configuration validation failed", "error", err)
			os.Exit(1)
		}
	}
	household, err := cfg.Household()
	if err != nil {
		logger.Error("Invalid household", "error", err)
		os.Exit(1)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger)
	res, err := factory.CreateBackend(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	entries, err := factory.NewEntryService(cfg.SubmitMode == config.SubmitQueued, res.Submitter, backend.QueueConfig{
		SQLiteDBPath: cfg.SQLiteDBPath,
		AMQPURL:      cfg.AMQPURL,
		AMQPExchange: cfg.AMQPExchange,
		AMQPQueue:    cfg.AMQPQueue,
	})
	if err != nil {
		logger.Error("Failed to initialize entry service", "error", err, "submit_mode", cfg.SubmitMode)
		os.Exit(1)
	}

	reports := services.NewReportService(res.Source, household, logger.WithComponent(log.ComponentReport))
	entries.OnStored(reports.Invalidate)

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache))
	caches.Register(res.Cleaners...)
	if cfg.SnapshotCacheTTL > 0 {
		caches.StartCleanup(context.Background(), cfg.SnapshotCacheTTL)
	}

	if *console {
		runConsole(logger, cfg, reports, entries, caches, *user)
		return
	}

	discord, err := bot.NewDiscord(cfg.DiscordToken, logger.WithComponent(log.ComponentBot))
	if err != nil {
		logger.Error("Failed to create Discord session", "error", err)
		os.Exit(1)
	}
	router := bot.NewRouter(reports, entries, discord, cfg.CommandPrefix, logger.WithComponent(log.ComponentBot))
	handler, stopLimiter := wrapHandler(logger, cfg, discord, router.Handle)

	ctx, done := cli.GracefulShutdown(context.Background(), logger, 10*time.Second, func() {
		if err := discord.Stop(); err != nil {
			logger.Error("Discord close error", "error", err)
		}
		stopLimiter()
		caches.Stop()
		if err := entries.Close(); err != nil {
			logger.Error("Entry service close error", "error", err)
		}
	})

	if err := discord.Start(ctx, handler); err != nil {
		logger.Error("Failed to connect to Discord", "error", err)
		os.Exit(1)
	}
	logger.Info("Bot is running", "prefix", cfg.CommandPrefix, "backend", cfg.DataBackend, "submit_mode", cfg.SubmitMode)

	cli.WaitForShutdown(ctx, done)
	logger.Info("Bot stopped gracefully")
}

func runConsole(logger *log.Logger, cfg *config.Config, reports *services.ReportService, entries *services.EntryService, caches *cache.Manager, user string) {
	parent, stop := context.WithCancel(context.Background())
	ctx, done := cli.GracefulShutdown(parent, logger, 5*time.Second, func() {
		caches.Stop()
		if err := entries.Close(); err != nil {
			logger.Error("Entry service close error", "error", err)
		}
	})

	console := bot.NewConsole(os.Stdout)
	router := bot.NewRouter(reports, entries, console, cfg.CommandPrefix, logger.WithComponent(log.ComponentBot))
	handler, stopLimiter := wrapHandler(logger, cfg, console, router.Handle)
	defer stopLimiter()
	if err := bot.RunConsole(ctx, os.Stdin, "console", user, handler); err != nil && ctx.Err() == nil {
		logger.Error("Console session failed", "error", err)
	}
	stop()
	cli.WaitForShutdown(ctx, done)
}

// wrapHandler adds message tracing and, when enabled, the per-user rate limit.
func wrapHandler(logger *log.Logger, cfg *config.Config, messenger bot.Messenger, next bot.HandlerFunc) (bot.HandlerFunc, func()) {
	stop := func() {}
	if cfg.RateLimitPerMinute > 0 {
		limiter := ratelimit.NewLimiter(ratelimit.Config{
			MessagesPerMinute: cfg.RateLimitPerMinute,
			Burst:             cfg.RateLimitBurst,
		})
		onLimit := func(ctx context.Context, m bot.Message) error {
			logger.WarnContext(ctx, "Message rate limited", log.FieldChatID, m.ChatID, log.FieldUserID, m.UserID)
			return messenger.Send(ctx, m.ChatID, bot.ReplyRateLimited, nil)
		}
		next = limiter.Middleware(onLimit)(next)
		stop = limiter.Stop
	}
	return trace.NewMiddleware(logger.WithComponent(log.ComponentBot)).Wrap(next), stop
}
