package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/carecal/pkg/observability"
)

// ProcessorConfig holds configuration for the outbox processor.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
	Retention        time.Duration
}

// DefaultProcessorConfig returns sensible defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     500 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		Retention:        7 * 24 * time.Hour,
	}
}

// Processor polls the outbox and publishes envelopes to the event bus.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics
	now       func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex

	statsMu sync.Mutex
	stats   Stats
}

// Option customizes a Processor.
type Option func(*Processor)

// WithMetrics records published, failed and dead-lettered counts.
func WithMetrics(m observability.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// NewProcessor creates a new outbox processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins the polling loop in a goroutine.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)
	return nil
}

// Stop gracefully stops the processor.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("outbox processor stopped")
}

// IsRunning returns true if the processor is running.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) run(ctx context.Context) {
	defer p.wg.Done()

	interval := p.config.PollInterval
	if interval <= 0 {
		interval = DefaultProcessorConfig().PollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error("failed to process outbox batch", "error", err)
			}
		}
	}
}

// ProcessOnce processes a single batch synchronously. Local mode calls it
// after each write so in-process consumers see the events immediately.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	return p.processBatch(ctx)
}

// Cleanup deletes messages published longer ago than the retention period.
func (p *Processor) Cleanup(ctx context.Context) (int64, error) {
	retention := p.config.Retention
	if retention <= 0 {
		retention = DefaultProcessorConfig().Retention
	}
	deleted, err := p.repo.DeleteOld(ctx, p.now().Add(-retention))
	if err != nil {
		p.recordError(err)
		return 0, err
	}
	if deleted > 0 {
		p.logger.Info("outbox cleanup", "deleted", deleted)
	}
	return deleted, nil
}

func (p *Processor) processBatch(ctx context.Context) error {
	batch := p.config.BatchSize
	if batch <= 0 {
		batch = DefaultProcessorConfig().BatchSize
	}

	messages, err := p.repo.GetUnpublished(ctx, p.now(), batch)
	if err != nil {
		p.recordError(err)
		return err
	}

	p.recordProcessed(messages)

	for _, msg := range messages {
		if err := p.publishMessage(ctx, msg); err != nil {
			p.handleFailure(ctx, msg, err)
			continue
		}

		if err := p.repo.MarkPublished(ctx, msg.ID, p.now()); err != nil {
			p.logger.Error("failed to mark message as published",
				"id", msg.ID,
				"event_id", msg.EventID,
				"error", err,
			)
			continue
		}
		p.recordPublished(msg)
	}

	return nil
}

func (p *Processor) publishMessage(ctx context.Context, msg *Message) error {
	body, err := msg.Envelope()
	if err != nil {
		return err
	}
	return p.publisher.Publish(p.messageContext(ctx, msg), msg.RoutingKey, body)
}

// messageContext carries the correlation ID of the originating request
// into the publish call, so in-process consumers log under it.
func (p *Processor) messageContext(ctx context.Context, msg *Message) context.Context {
	if len(msg.Metadata) == 0 {
		return ctx
	}
	var metadata domain.EventMetadata
	if err := json.Unmarshal(msg.Metadata, &metadata); err != nil {
		return ctx
	}
	return observability.WithCorrelationID(ctx, metadata.CorrelationID.String())
}

func (p *Processor) handleFailure(ctx context.Context, msg *Message, err error) {
	p.logger.WarnContext(p.messageContext(ctx, msg), "failed to publish message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"retry_count", msg.RetryCount,
		"error", err,
	)

	if p.shouldDeadLetter(msg) {
		p.recordDead(err)
		if markErr := p.repo.MarkDead(ctx, msg.ID, err.Error(), p.now()); markErr != nil {
			p.logger.Error("failed to mark message as dead-lettered", "id", msg.ID, "error", markErr)
		}
		return
	}

	p.recordFailed(err)
	nextRetryAt := p.now().Add(p.retryBackoff(msg.RetryCount + 1))
	if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error(), nextRetryAt); markErr != nil {
		p.logger.Error("failed to mark message as failed", "id", msg.ID, "error", markErr)
	}
}

func (p *Processor) shouldDeadLetter(msg *Message) bool {
	if p.config.MaxRetries <= 0 {
		return true
	}
	return msg.RetryCount+1 >= p.config.MaxRetries
}

// retryBackoff doubles from the base per attempt, capped at the maximum.
func (p *Processor) retryBackoff(attempt int) time.Duration {
	base := p.config.RetryBackoffBase
	if base <= 0 {
		base = time.Second
	}
	limit := p.config.RetryBackoffMax
	if limit <= 0 {
		limit = time.Minute
	}

	backoff := base
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= limit {
			return limit
		}
	}
	return min(backoff, limit)
}

// Stats returns processor statistics.
type Stats struct {
	IsRunning       bool
	PublishedCount  uint64
	FailedCount     uint64
	DeadCount       uint64
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
	OldestMessageAt *time.Time
}

// GetStats returns current processor statistics.
func (p *Processor) GetStats() Stats {
	running := p.IsRunning()

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	stats := p.stats
	stats.IsRunning = running
	return stats
}

func (p *Processor) recordPublished(msg *Message) {
	p.metrics.Counter(observability.MetricOutboxPublished, 1, observability.T("routing_key", msg.RoutingKey))

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.PublishedCount++
}

func (p *Processor) recordFailed(err error) {
	p.metrics.Counter(observability.MetricOutboxFailed, 1)

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.FailedCount++
	p.setLastError(err)
}

func (p *Processor) recordDead(err error) {
	p.metrics.Counter(observability.MetricOutboxDead, 1)

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.DeadCount++
	p.setLastError(err)
}

func (p *Processor) recordError(err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.setLastError(err)
}

// setLastError expects statsMu to be held.
func (p *Processor) setLastError(err error) {
	now := p.now()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &now
}

func (p *Processor) recordProcessed(messages []*Message) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	now := p.now()
	p.stats.LastProcessedAt = &now
	if len(messages) == 0 {
		p.stats.LagSeconds = 0
		p.stats.OldestMessageAt = nil
		return
	}

	oldest := messages[0].CreatedAt
	for _, msg := range messages[1:] {
		if msg.CreatedAt.Before(oldest) {
			oldest = msg.CreatedAt
		}
	}
	p.stats.OldestMessageAt = &oldest
	p.stats.LagSeconds = now.Sub(oldest).Seconds()
}
