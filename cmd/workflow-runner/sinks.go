package main

import (
	"context"
	"fmt"
	"time"

	"bluemedix-workflow/internal/common/aws"
	"bluemedix-workflow/internal/common/config"
	"bluemedix-workflow/internal/common/database"
	"bluemedix-workflow/internal/common/logger"
	"bluemedix-workflow/internal/report"
)

// retryWithBackoff attempts to execute a function with exponential backoff.
// It gives up early when ctx is done.
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s abandoned after %d attempts: %w", operationName, i+1, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

const (
	connectAttempts = 3
	connectDelay    = time.Second
)

// connectStore pings store with backoff. A reachable store is queued for
// closing; an unreachable one is closed and logged.
func connectStore(ctx context.Context, store database.Store, log logger.Logger, closers *[]func()) bool {
	err := retryWithBackoff(ctx, func() error { return store.Ping(ctx) }, connectAttempts, connectDelay, log, store.Kind()+" connection")
	if err != nil {
		log.Error("Report sink disabled", map[string]interface{}{"store": store.Kind(), "error": err})
		_ = store.Close()
		return false
	}
	*closers = append(*closers, func() { _ = store.Close() })
	return true
}

// attachSinks registers every configured sink on the reporter. A store that
// cannot be reached is logged and left out; it never blocks the run.
func attachSinks(ctx context.Context, cfg *config.Config, reporter *report.Reporter, log logger.Logger) (func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	reporter.AddSink(report.NewFileSink(cfg.Report.Path))
	if cfg.Report.MetricsTextfile != "" {
		reporter.AddSink(report.NewTextfileSink(cfg.Report.MetricsTextfile, nil))
	}

	if cfg.Sinks.Redis.Enabled {
		rc := database.NewRedis(cfg.Sinks.Redis)
		if connectStore(ctx, rc, log, &closers) {
			reporter.AddSink(report.NewRedisSink(rc.Client, cfg.Sinks.Redis.Key, cfg.Sinks.Redis.Keep))
		}
	}

	if cfg.Sinks.Postgres.Enabled {
		pg, err := database.NewPostgres(cfg.Sinks.Postgres)
		if err != nil {
			closeAll()
			return nil, err
		}
		sink := report.NewPostgresSink(pg.DB)
		if connectStore(ctx, pg, log, &closers) {
			if err := sink.EnsureSchema(ctx); err != nil {
				log.Error("Postgres sink disabled", map[string]interface{}{"error": err})
			} else {
				reporter.AddSink(sink)
			}
		}
	}

	if cfg.Sinks.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Sinks.Elasticsearch)
		if err != nil {
			closeAll()
			return nil, err
		}
		if connectStore(ctx, es, log, &closers) {
			reporter.AddSink(report.NewElasticsearchSink(es.Client, cfg.Sinks.Elasticsearch.Index))
		}
	}

	if cfg.Sinks.Mongo.Enabled {
		mc, err := database.NewMongo(ctx, cfg.Sinks.Mongo)
		if err != nil {
			log.Error("Report sink disabled", map[string]interface{}{"store": "mongo", "error": err})
		} else if connectStore(ctx, mc, log, &closers) {
			reporter.AddSink(report.NewMongoSink(mc.Collection))
		}
	}

	notify := cfg.Notifications
	if notify.SNS.Enabled || notify.SES.Enabled {
		awsCfg, err := aws.LoadConfig(ctx, notify.AWS.Region)
		if err != nil {
			log.Error("Failure notifications disabled", map[string]interface{}{"error": err})
		} else {
			var opts []report.NotifierOption
			if notify.SNS.Enabled {
				opts = append(opts, report.WithSNS(aws.NewSNSClient(awsCfg), notify.SNS.TopicARN))
			}
			if notify.SES.Enabled {
				opts = append(opts, report.WithSES(aws.NewSESClient(awsCfg), notify.SES.FromEmail, notify.SES.To))
			}
			reporter.AddSink(report.NewNotifier(opts...))
		}
	}

	return closeAll, nil
}
