package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telemarketing_backend/platform/config"
	"telemarketing_backend/platform/redisx"

	"github.com/hibiken/asynq"
)

type Client struct {
	client *asynq.Client
	queue  string
}

// ArchiveExpiryScheduler is what the import service needs from the scheduler.
type ArchiveExpiryScheduler interface {
	ScheduleArchiveExpiry(ctx context.Context, payload ImportArchiveExpirePayload, after time.Duration) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleArchiveExpiry enqueues the cleanup to run once the preview has expired.
// The import id doubles as task id, so re-scheduling the same import is a no-op.
func (c *Client) ScheduleArchiveExpiry(ctx context.Context, payload ImportArchiveExpirePayload, after time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewImportArchiveExpireTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.ProcessIn(after),
		asynq.Queue(c.queue),
		asynq.TaskID("import-archive:"+payload.ImportID),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return "default"
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redisx.ParseOptions(redisURL, tlsInsecure)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
