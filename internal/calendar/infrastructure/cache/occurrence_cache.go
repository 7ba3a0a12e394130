package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/application/services"
	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/felixgeelhaar/carecal/pkg/observability"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "carecal:occurrences:"
	DefaultTTL = 10 * time.Minute
)

// Client is the part of redis.Cmdable the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// span is the cached form of one occurrence. Display fields come from the
// series on every read so a renamed series never shows stale titles.
type span struct {
	Start time.Time `json:"s"`
	End   time.Time `json:"e"`
}

// OccurrenceCache remembers expansions in Redis. Keys carry the series
// version, so any change to a series misses the cache. Redis failures are
// logged and fall back to computing.
type OccurrenceCache struct {
	next    services.OccurrenceSource
	client  Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewOccurrenceCache wraps next. A non-positive ttl uses DefaultTTL.
func NewOccurrenceCache(next services.OccurrenceSource, client Client, ttl time.Duration, logger *slog.Logger, metrics observability.Metrics) *OccurrenceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &OccurrenceCache{next: next, client: client, ttl: ttl, logger: logger, metrics: metrics}
}

// Key is the cache key of one series version over one window.
func Key(series *domain.EventSeries, window domain.Window) string {
	return fmt.Sprintf("%s%s:v%d:%d:%d",
		keyPrefix, series.ID(), series.Version(), window.From.UTC().Unix(), window.To.UTC().Unix())
}

func (c *OccurrenceCache) Occurrences(ctx context.Context, series *domain.EventSeries, window domain.Window) ([]domain.Occurrence, error) {
	key := Key(series, window)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var spans []span
		if jsonErr := json.Unmarshal(raw, &spans); jsonErr == nil {
			c.metrics.Counter(observability.MetricCacheHit, 1)
			return fromSpans(series, spans), nil
		}
		c.logger.WarnContext(ctx, "discarding unreadable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "occurrence cache read failed", "key", key, "error", err)
	}
	c.metrics.Counter(observability.MetricCacheMiss, 1)

	occurrences, err := c.next.Occurrences(ctx, series, window)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(toSpans(occurrences))
	if err != nil {
		return occurrences, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "occurrence cache write failed", "key", key, "error", err)
	}
	return occurrences, nil
}

func toSpans(occurrences []domain.Occurrence) []span {
	spans := make([]span, len(occurrences))
	for i, o := range occurrences {
		spans[i] = span{Start: o.Start, End: o.End}
	}
	return spans
}

func fromSpans(series *domain.EventSeries, spans []span) []domain.Occurrence {
	occurrences := make([]domain.Occurrence, len(spans))
	for i, s := range spans {
		occurrences[i] = domain.NewOccurrence(series, s.Start, s.End)
	}
	return occurrences
}
