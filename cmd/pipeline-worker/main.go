package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/pulsecheck-backend/internal/ingest"
	"github.com/angelmondragon/pulsecheck-backend/internal/notify"
	"github.com/angelmondragon/pulsecheck-backend/internal/opportunities"
	"github.com/angelmondragon/pulsecheck-backend/internal/rawstore"
	"github.com/angelmondragon/pulsecheck-backend/internal/scheduler"
	"github.com/angelmondragon/pulsecheck-backend/internal/snapshot"
	"github.com/angelmondragon/pulsecheck-backend/internal/staging"
	"github.com/angelmondragon/pulsecheck-backend/pkg/config"
	"github.com/angelmondragon/pulsecheck-backend/pkg/db"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
	"github.com/angelmondragon/pulsecheck-backend/pkg/logger"
	"github.com/angelmondragon/pulsecheck-backend/pkg/metrics"
	"github.com/angelmondragon/pulsecheck-backend/pkg/migrate"
	"github.com/angelmondragon/pulsecheck-backend/pkg/pubsub"
	"github.com/angelmondragon/pulsecheck-backend/pkg/redis"
)

const lockKeyFormat = "pc:pipeline-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "pipeline-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "pipeline-worker"

	logg = logger.New(logger.Options{
		ServiceName: "pipeline-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	jobMetrics := metrics.NewPipelineJobMetrics(prometheus.DefaultRegisterer)

	lock, err := scheduler.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create pipeline lock", err)
		os.Exit(1)
	}

	dataMode, err := enums.ParseDataMode(cfg.Pipeline.DataMode)
	if err != nil {
		logg.Error(context.Background(), "invalid pipeline data mode", err)
		os.Exit(1)
	}

	rawRepo := rawstore.NewRepository(dbClient.DB())
	ingestService, err := ingest.NewService(rawRepo, logg, dataMode)
	if err != nil {
		logg.Error(context.Background(), "failed to create ingest service", err)
		os.Exit(1)
	}
	if dataMode == enums.DataModeDemo {
		if err := seedDemoData(context.Background(), ingestService, rawRepo, logg); err != nil {
			logg.Error(context.Background(), "failed to seed demo data", err)
			os.Exit(1)
		}
	}

	stagingRepo := staging.NewRepository(dbClient.DB())
	normalizer, err := staging.NewService(dbClient, rawRepo, stagingRepo, logg, jobMetrics, cfg.Pipeline.BatchSize)
	if err != nil {
		logg.Error(context.Background(), "failed to create staging normalizer", err)
		os.Exit(1)
	}
	normalizeJob, err := scheduler.NewNormalizeJob(normalizer)
	if err != nil {
		logg.Error(context.Background(), "failed to create normalize job", err)
		os.Exit(1)
	}

	source, err := buildSnapshotSource(context.Background(), cfg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot source", err)
		os.Exit(1)
	}
	if closer, ok := source.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logg.Error(context.Background(), "error closing snapshot source", err)
			}
		}()
	}

	oppService, err := opportunities.NewService(opportunities.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create opportunity service", err)
		os.Exit(1)
	}

	notifier, err := buildNotifier(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create opportunity notifier", err)
		os.Exit(1)
	}

	detectJob, err := scheduler.NewDetectJob(source, oppService, notifier, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create detect job", err)
		os.Exit(1)
	}

	// Normalization first so detection reads fresh staging rows.
	registry := scheduler.NewRegistry(normalizeJob, detectJob)
	service, err := scheduler.NewService(scheduler.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Pipeline.RunInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pipeline service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting pipeline worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "pipeline worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "pipeline worker shutting down gracefully")
}

// seedDemoData fills an empty raw store with the synthetic demo batch so a
// fresh demo deployment has a full pipeline run's worth of data.
func seedDemoData(ctx context.Context, svc ingest.Service, repo rawstore.Repository, logg *logger.Logger) error {
	count, err := repo.CountByEntity(ctx, enums.RawEntityOrders)
	if err != nil {
		return fmt.Errorf("checking raw store: %w", err)
	}
	if count > 0 {
		logg.Info(ctx, "raw store already seeded, skipping demo batch")
		return nil
	}

	written, err := svc.Ingest(ctx, ingest.DemoBatch(time.Now()))
	if err != nil {
		return fmt.Errorf("ingesting demo batch: %w", err)
	}
	logg.Info(logg.WithField(ctx, "records", written), "demo data seeded")
	return nil
}

func buildSnapshotSource(ctx context.Context, cfg *config.Config, dbClient *db.Client) (snapshot.Source, error) {
	switch strings.ToLower(cfg.Pipeline.SnapshotSource) {
	case "", "staging":
		return snapshot.NewStagingSource(dbClient, cfg.Pipeline)
	case "bigquery":
		return snapshot.NewBigQuerySource(ctx, cfg.GCP, cfg.BigQuery, cfg.Pipeline)
	default:
		return nil, fmt.Errorf("unknown snapshot source %q", cfg.Pipeline.SnapshotSource)
	}
}

// buildNotifier returns nil when GCP is not configured; the detect job stores
// opportunities without announcing them in that case.
func buildNotifier(ctx context.Context, cfg *config.Config, logg *logger.Logger) (scheduler.OpportunityNotifier, error) {
	if strings.TrimSpace(cfg.GCP.ProjectID) == "" {
		logg.Warn(ctx, "gcp project not configured, opportunity notifications disabled")
		return nil, nil
	}

	psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	return notify.NewNotifier(psClient, logg)
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
