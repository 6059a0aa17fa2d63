// Package redisx builds Redis connections from configuration.
// This is part of the platform layer and contains no business logic.
package redisx

import (
	"context"
	"crypto/tls"
	"fmt"

	"telemarketing_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// ParseOptions parses a redis:// or rediss:// URL. When tlsInsecure is set the
// server certificate is not verified, for managed Redis behind self-signed certs.
func ParseOptions(redisURL string, tlsInsecure bool) (*redis.Options, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		opt.TLSConfig = clone
	} else if tlsInsecure {
		opt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return opt, nil
}

// NewClient connects to Redis and verifies the connection with PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.GetRedisURL() == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := ParseOptions(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Health adapts a Redis client to the health endpoint.
type Health struct {
	client redis.UniversalClient
}

// NewHealth wraps client for health checks.
func NewHealth(client redis.UniversalClient) *Health {
	return &Health{client: client}
}

// Ping verifies Redis is reachable.
func (h *Health) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}
