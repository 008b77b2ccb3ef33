package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"wordpair/internal/audit"
	"wordpair/internal/config"
	"wordpair/internal/database"
	"wordpair/internal/directory"
	"wordpair/internal/dispatch"
	"wordpair/internal/metrics"
	"wordpair/internal/notify"
	"wordpair/internal/schedule"
	"wordpair/internal/server"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("WORDPAIR_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New("wordpair")

	pushLimiter := rate.NewLimiter(rate.Limit(cfg.Dispatch.SendRate), cfg.Dispatch.SendBurst)
	emailLimiter := rate.NewLimiter(rate.Limit(cfg.Dispatch.SendRate), cfg.Dispatch.SendBurst)

	if cfg.Push.CredentialsPath == "" {
		logger.Fatal().Msg("set push.credentials_path in config")
	}
	pushSender, err := notify.NewFCMSender(ctx, cfg.Push.CredentialsPath, pushLimiter, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init FCM sender")
	}

	emailSender := notify.NewSendGridSender(notify.EmailConfig{
		APIKey: cfg.Email.SendGridKey,
		From:   cfg.Email.From,
	}, emailLimiter, &logger)

	var dir directory.Directory = db
	if rdb != nil && cfg.DirectoryCacheTTL() > 0 {
		dir = directory.NewCachedDirectory(db, rdb, cfg.DirectoryCacheTTL())
	}

	var sink dispatch.AuditSink
	var recorder *audit.Recorder
	if cfg.Audit.Enabled {
		recorder = audit.NewRecorder(db, m, &logger)
		sink = recorder
	}

	svc := dispatch.NewService(dir, db, pushSender, emailSender, sink, m,
		dispatch.Config{MaxConcurrent: cfg.Dispatch.MaxConcurrent}, &logger)

	triggers := []schedule.Trigger{
		{
			Name:  dispatch.ModeMarkNotResponded.String(),
			Times: []string{cfg.Schedule.MarkNotResponded},
			Run: func(ctx context.Context, today string) {
				_, _ = svc.Run(ctx, dispatch.ModeMarkNotResponded, today)
			},
		},
		{
			Name:  dispatch.ModeIntervalPush.String(),
			Times: cfg.Schedule.IntervalPush,
			Run: func(ctx context.Context, today string) {
				_, _ = svc.Run(ctx, dispatch.ModeIntervalPush, today)
			},
		},
		{
			Name:  dispatch.ModeMorningEmail.String(),
			Times: []string{cfg.Schedule.MorningEmail},
			Run: func(ctx context.Context, today string) {
				_, _ = svc.Run(ctx, dispatch.ModeMorningEmail, today)
			},
		},
		{
			Name:  dispatch.ModeEveningEmail.String(),
			Times: []string{cfg.Schedule.EveningEmail},
			Run: func(ctx context.Context, today string) {
				_, _ = svc.Run(ctx, dispatch.ModeEveningEmail, today)
			},
		},
	}

	scheduler, err := schedule.NewScheduler(schedule.Config{
		Timezone:      cfg.Schedule.Timezone,
		CheckInterval: cfg.CheckInterval(),
	}, triggers, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create scheduler")
	}

	if recorder != nil {
		go runAuditCleanup(ctx, recorder, cfg.AuditRetention())
	}

	backup := database.NewBackupService(cfg.Database.Path, database.BackupConfig{
		Enabled:       cfg.Backup.Enabled,
		StoragePath:   cfg.Backup.Path,
		IntervalHours: cfg.Backup.IntervalHours,
		RetentionDays: cfg.Backup.RetentionDays,
	}, &logger)
	go backup.Start(ctx)

	srv := server.New(db, rdb, scheduler, emailSender, cfg.Email.TestRecipient, &logger)

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go srv.Start(ctx, cfg.Monitoring.HealthCheckPort)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		go srv.StartMetrics(ctx, cfg.Monitoring.PrometheusPort)
	}

	logger.Info().
		Str("timezone", cfg.Schedule.Timezone).
		Msg("reminder dispatcher started")
	scheduler.Start(ctx)
}

func runAuditCleanup(ctx context.Context, recorder *audit.Recorder, retention time.Duration) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			recorder.Cleanup(ctx, retention)
		}
	}
}
