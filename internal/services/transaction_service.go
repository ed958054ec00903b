package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Publisher announces recorded transactions to other processes.
type Publisher interface {
	PublishTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error
}

// Report is everything the view page needs for one date range.
type Report struct {
	Start   core.Date
	End     core.Date
	Rows    []core.Transaction
	Summary core.Summary
	Series  core.Series
}

// TransactionService orchestrates recording and reporting across the
// primary store and the optional message bus.
type TransactionService struct {
	store     store.TransactionStore
	publisher Publisher
}

// NewTransactionService wires a store and an optional publisher (nil disables publishing).
func NewTransactionService(s store.TransactionStore, publisher Publisher) *TransactionService {
	return &TransactionService{store: s, publisher: publisher}
}

// Record validates and appends t, then publishes a TransactionRecorded
// message. A publish failure is logged and does not fail the call.
func (s *TransactionService) Record(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.store.Append(ctx, t); err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"date", t.Date.String(),
		"amount", core.FormatAmount(t.Amount),
		"category", t.Category)

	if err := s.publish(ctx, t); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction message",
			"date", t.Date.String(), "error", err)
	}
	return nil
}

func (s *TransactionService) publish(ctx context.Context, t core.Transaction) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping message")
		return nil
	}
	return s.publisher.PublishTransactionRecorded(ctx, amqp.NewTransactionRecordedMessage(t))
}

// Transactions returns the rows dated within [start, end].
func (s *TransactionService) Transactions(ctx context.Context, start, end core.Date) ([]core.Transaction, error) {
	rows, err := s.store.QueryRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return rows, nil
}

// Report queries the range once and derives the summary and daily series.
func (s *TransactionService) Report(ctx context.Context, start, end core.Date) (Report, error) {
	rows, err := s.Transactions(ctx, start, end)
	if err != nil {
		return Report{}, err
	}
	summary, err := core.Summarize(rows)
	if err != nil {
		return Report{}, err
	}
	series, err := core.TimeSeries(rows)
	if err != nil {
		return Report{}, err
	}
	return Report{Start: start, End: end, Rows: rows, Summary: summary, Series: series}, nil
}

// Close releases the publisher and the store when they hold resources.
func (s *TransactionService) Close() error {
	var errs []error
	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if c, ok := s.store.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	return errors.Join(errs...)
}
