package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/shiftops/internal/config"
	"github.com/andresuchdata/shiftops/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	statisticsKeyPrefix = "shifts:statistics"
	scanBatchSize       = 100
)

// StatisticsCache stores table statistics per snapshot version and filter
// state. A new version makes every older entry unreachable.
type StatisticsCache interface {
	GetStatistics(ctx context.Context, version string, filter domain.FilterState) (*domain.TableStatistics, bool, error)
	SetStatistics(ctx context.Context, version string, filter domain.FilterState, stats *domain.TableStatistics) error
	InvalidateAll(ctx context.Context) error
}

type redisStatisticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopStatisticsCache struct{}

func NewStatisticsCache(cfg config.CacheConfig) (StatisticsCache, error) {
	if !cfg.Enabled {
		return &noopStatisticsCache{}, nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisStatisticsCache{
		client: client,
		ttl:    statisticsTTL(cfg.StatisticsTTLSeconds),
	}, nil
}

func NewNoopStatisticsCache() StatisticsCache {
	return &noopStatisticsCache{}
}

func (c *redisStatisticsCache) GetStatistics(ctx context.Context, version string, filter domain.FilterState) (*domain.TableStatistics, bool, error) {
	payload, err := c.client.Get(ctx, StatisticsKey(version, filter)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var stats domain.TableStatistics
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil, false, fmt.Errorf("decode statistics cache: %w", err)
	}

	return &stats, true, nil
}

func (c *redisStatisticsCache) SetStatistics(ctx context.Context, version string, filter domain.FilterState, stats *domain.TableStatistics) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode statistics cache: %w", err)
	}

	if err := c.client.Set(ctx, StatisticsKey(version, filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisStatisticsCache) InvalidateAll(ctx context.Context) error {
	removed, err := unlinkKeysWithPrefix(ctx, c.client, statisticsKeyPrefix+":", scanBatchSize)
	if err != nil {
		return err
	}
	log.Debug().Int64("keys", removed).Msg("Statistics cache invalidated")
	return nil
}

func (n *noopStatisticsCache) GetStatistics(ctx context.Context, version string, filter domain.FilterState) (*domain.TableStatistics, bool, error) {
	return nil, false, nil
}

func (n *noopStatisticsCache) SetStatistics(ctx context.Context, version string, filter domain.FilterState, stats *domain.TableStatistics) error {
	return nil
}

func (n *noopStatisticsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// StatisticsKey returns the cache key for a filter state over a snapshot
// version. Filter states that select the same shifts map to the same key.
func StatisticsKey(version string, filter domain.FilterState) string {
	return fmt.Sprintf("%s:%s:%s", statisticsKeyPrefix, versionTag(version), filterHash(filter))
}

// versionTag shortens a snapshot version to a fixed-width key segment.
func versionTag(version string) string {
	if version == "" {
		return "unversioned"
	}
	sum := sha1.Sum([]byte(version))
	return hex.EncodeToString(sum[:6])
}

func filterHash(filter domain.FilterState) string {
	parts := []string{}

	addTriState := func(name string, v *bool) {
		if v != nil {
			parts = append(parts, name+"="+strconv.FormatBool(*v))
		}
	}
	addTriState("paid_by_organization", filter.PaidByOrganization)
	addTriState("paid_to_worker", filter.PaidToWorker)
	addTriState("paid_kvv", filter.PaidKVV)
	addTriState("paid_kms", filter.PaidKMS)

	if len(filter.Organizations) > 0 {
		parts = append(parts, "organizations="+joinStrings(filter.Organizations))
	}
	if len(filter.Promoters) > 0 {
		parts = append(parts, "promoters="+joinStrings(filter.Promoters))
	}
	if len(filter.PaymentTypes) > 0 {
		types := make([]string, len(filter.PaymentTypes))
		for i, pt := range filter.PaymentTypes {
			types[i] = string(pt)
		}
		parts = append(parts, "payment_types="+joinStrings(types))
	}

	if !filter.DateRange.From.IsZero() {
		parts = append(parts, "date_from="+filter.DateRange.From.Format(domain.DateLayout))
	}
	if !filter.DateRange.To.IsZero() {
		parts = append(parts, "date_to="+filter.DateRange.To.Format(domain.DateLayout))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// joinStrings trims, dedupes, sorts and quotes values, mirroring how the
// filter compares names. Case is kept.
func joinStrings(values []string) string {
	seen := make(map[string]struct{}, len(values))
	c := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		c = append(c, strconv.Quote(v))
	}
	sort.Strings(c)
	return strings.Join(c, ",")
}
