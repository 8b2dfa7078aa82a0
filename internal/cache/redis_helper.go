package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/shiftops/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	// Entries of superseded snapshot versions are never read again and only
	// leave through expiry, so the TTL is capped.
	defaultStatisticsTTL = time.Minute
	maxStatisticsTTL     = time.Hour

	redisClientName  = "shiftops-statistics"
	redisDefaultHost = "127.0.0.1"
	redisDefaultPort = "6379"
	pingTimeout      = 5 * time.Second
)

func newRedisClient(cfg config.CacheConfig) (*redis.Client, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", opts.Addr, err)
	}

	return client, nil
}

// statisticsTTL turns the configured seconds into an expiry within
// (0, maxStatisticsTTL].
func statisticsTTL(seconds int) time.Duration {
	ttl := time.Duration(seconds) * time.Second
	switch {
	case ttl <= 0:
		return defaultStatisticsTTL
	case ttl > maxStatisticsTTL:
		return maxStatisticsTTL
	default:
		return ttl
	}
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	var opts *redis.Options
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		host := cfg.RedisHost
		if host == "" {
			host = redisDefaultHost
		}
		port := cfg.RedisPort
		if port == "" {
			port = redisDefaultPort
		}
		opts = &redis.Options{
			Addr:     net.JoinHostPort(host, port),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}

	if opts.ClientName == "" {
		opts.ClientName = redisClientName
	}
	return opts, nil
}

// unlinkKeysWithPrefix walks the keyspace with SCAN and unlinks matches in
// batches. It returns how many keys were removed.
func unlinkKeysWithPrefix(ctx context.Context, client *redis.Client, prefix string, batchSize int64) (int64, error) {
	var (
		removed int64
		batch   = make([]string, 0, batchSize)
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := client.Unlink(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("redis unlink failed: %w", err)
		}
		removed += n
		batch = batch[:0]
		return nil
	}

	iter := client.Scan(ctx, 0, prefix+"*", batchSize).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if int64(len(batch)) >= batchSize {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan failed: %w", err)
	}
	if err := flush(); err != nil {
		return removed, err
	}
	return removed, nil
}
