package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"dealership_crm_backend/platform/config"
)

// redisClientOpt translates the configured Redis URL into asynq's
// connection options.
func redisClientOpt(cfg config.SchedulerConfig) (asynq.RedisClientOpt, error) {
	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("parse redis url: %w", err)
	}

	clientOpt := asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	}
	if opts.TLSConfig != nil {
		clientOpt.TLSConfig = opts.TLSConfig
		if cfg.GetRedisTLSInsecure() {
			clientOpt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
		}
	}
	return clientOpt, nil
}

// Client enqueues background jobs.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{
		client: asynq.NewClient(opt),
		queue:  cfg.GetAsynqQueueName(),
	}, nil
}

// EnqueueLeadSweeps queues one sweep run. Unique for the sweep
// interval so a slow worker does not pile up identical jobs.
func (c *Client) EnqueueLeadSweeps(ctx context.Context, cfg config.SchedulerConfig) error {
	task, err := NewLeadSweepsTask()
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.Unique(cfg.GetSweepInterval()),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			// A sweep for this interval is already queued.
			return nil
		}
		return fmt.Errorf("enqueue lead sweeps: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
