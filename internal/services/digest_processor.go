package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// DigestProcessorConfig holds configuration for the digest processor
type DigestProcessorConfig struct {
	// Schedule is a standard 5-field cron expression (default: "5 0 * * *")
	Schedule string

	// Location is the time zone the schedule and "yesterday" are evaluated in (default: UTC)
	Location *time.Location
}

// DefaultDigestProcessorConfig returns the defaults
func DefaultDigestProcessorConfig() DigestProcessorConfig {
	return DigestProcessorConfig{
		Schedule: "5 0 * * *",
		Location: time.UTC,
	}
}

// Digest is the summary of a single day.
type Digest struct {
	Day     core.Date
	Summary core.Summary
}

// DigestProcessor logs a summary of the previous day on a cron schedule.
type DigestProcessor struct {
	reader store.RangeReader
	config DigestProcessorConfig
	now    func() time.Time

	mu      sync.Mutex
	running bool
	cron    *cron.Cron
}

// NewDigestProcessor creates a new digest processor
func NewDigestProcessor(reader store.RangeReader, config DigestProcessorConfig) *DigestProcessor {
	if config.Schedule == "" {
		config.Schedule = DefaultDigestProcessorConfig().Schedule
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &DigestProcessor{reader: reader, config: config, now: time.Now}
}

// Start registers the schedule and starts the cron runner. Returns an error
// if already running or if the schedule does not parse.
func (p *DigestProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("digest processor is already running")
	}

	c := cron.New(cron.WithLocation(p.config.Location))
	_, err := c.AddFunc(p.config.Schedule, func() {
		if _, err := p.RunYesterday(ctx); err != nil {
			slog.ErrorContext(ctx, "Daily digest failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("parse digest schedule %q: %w", p.config.Schedule, err)
	}
	c.Start()

	p.cron = c
	p.running = true
	slog.InfoContext(ctx, "Digest processor started", "schedule", p.config.Schedule)
	return nil
}

// Stop halts the scheduler and waits for a running digest to finish.
func (p *DigestProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	c := p.cron
	p.running = false
	p.cron = nil
	p.mu.Unlock()

	select {
	case <-c.Stop().Done():
		slog.InfoContext(ctx, "Digest processor stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Digest processor stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is active
func (p *DigestProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// RunYesterday builds the digest for the day before now.
func (p *DigestProcessor) RunYesterday(ctx context.Context) (Digest, error) {
	today := core.DateOf(p.now().In(p.config.Location))
	return p.Run(ctx, today.AddDays(-1))
}

// Run summarizes a single day and logs the result.
func (p *DigestProcessor) Run(ctx context.Context, day core.Date) (Digest, error) {
	rows, err := p.reader.QueryRange(ctx, day, day)
	if err != nil {
		return Digest{}, fmt.Errorf("query %s: %w", day, err)
	}
	sum, err := core.Summarize(rows)
	if err != nil {
		return Digest{}, fmt.Errorf("summarize %s: %w", day, err)
	}

	slog.InfoContext(ctx, "Daily digest",
		"day", day.String(),
		"transactions", sum.Count,
		"income", core.FormatDollars(sum.Income),
		"expense", core.FormatDollars(sum.Expense),
		"net", core.FormatDollars(sum.Net))

	return Digest{Day: day, Summary: sum}, nil
}
