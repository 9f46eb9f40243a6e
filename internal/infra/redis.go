package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects the client backing the PDV sync queue and its DLQ.
// A dead Redis means lost enqueues (the retry cron papers over them, but
// slowly), so the connection is verified before the server starts taking
// orders.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}
