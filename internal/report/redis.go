package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSink pushes each report onto a capped list and keeps the latest
// summary under <key>:latest.
type RedisSink struct {
	client redis.Cmdable
	key    string
	keep   int
}

func NewRedisSink(client redis.Cmdable, key string, keep int) *RedisSink {
	if keep <= 0 {
		keep = 50
	}
	return &RedisSink{client: client, key: key, keep: keep}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Write(ctx context.Context, rep *Report) error {
	payload, err := rep.JSON()
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	latest, err := latestSummary(rep)
	if err != nil {
		return err
	}

	if err := s.client.LPush(ctx, s.key, payload).Err(); err != nil {
		return fmt.Errorf("redis lpush failed: %w", err)
	}
	if err := s.client.LTrim(ctx, s.key, 0, int64(s.keep-1)).Err(); err != nil {
		return fmt.Errorf("redis ltrim failed: %w", err)
	}
	if err := s.client.Set(ctx, s.key+":latest", latest, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func latestSummary(rep *Report) ([]byte, error) {
	data, err := json.Marshal(map[string]interface{}{
		"runId":      rep.RunID,
		"finishedAt": rep.FinishedAt,
		"summary":    rep.Summary,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return data, nil
}
