package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskCache struct {
	client    *redislib.Client
	prefix    string
	genPrefix string
	ttl       time.Duration
}

// NewTaskCache caches each user's task list as one JSON value next to a
// generation counter. The counter has no expiry so a bump is never lost.
func NewTaskCache(client *redislib.Client, ttl time.Duration) repository.TaskCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &taskCache{
		client:    client,
		prefix:    "tasks:",
		genPrefix: "tasks-gen:",
		ttl:       ttl,
	}
}

func (c *taskCache) Get(ctx context.Context, userID string) ([]domain.Task, bool, error) {
	raw, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var tasks []domain.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, false, err
	}
	return tasks, true, nil
}

func (c *taskCache) Generation(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(userID)).Int64()
	if errors.Is(err, redislib.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set writes the list inside a WATCH on the generation key. A generation that
// differs, or changes before EXEC, leaves the cache untouched.
func (c *taskCache) Set(ctx context.Context, userID string, tasks []domain.Task, generation int64) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	payload, err := json.Marshal(tasks)
	if err != nil {
		return err
	}

	genKey := c.genKey(userID)
	err = c.client.Watch(ctx, func(tx *redislib.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redislib.Nil) {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
			pipe.Set(ctx, c.key(userID), payload, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redislib.TxFailedErr) {
		return nil
	}
	return err
}

func (c *taskCache) Invalidate(ctx context.Context, userID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Del(ctx, c.key(userID))
		pipe.Incr(ctx, c.genKey(userID))
		return nil
	})
	return err
}

func (c *taskCache) key(userID string) string {
	return fmt.Sprintf("%s%s", c.prefix, userID)
}

func (c *taskCache) genKey(userID string) string {
	return fmt.Sprintf("%s%s", c.genPrefix, userID)
}
