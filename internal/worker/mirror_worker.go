package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

const (
	seenCacheSize = 1000
	seenCacheTTL  = time.Hour
)

// MirrorWorker copies TransactionRecorded messages into a secondary store.
type MirrorWorker struct {
	mirror store.TransactionWriter
	seen   *cache.LRUCache[struct{}]
}

func NewMirrorWorker(mirror store.TransactionWriter) *MirrorWorker {
	return &MirrorWorker{
		mirror: mirror,
		seen:   cache.NewLRUCache[struct{}](seenCacheSize, seenCacheTTL),
	}
}

// HandleMessage appends the transaction carried by msg to the mirror.
// Messages that do not decode are wrapped in amqp.ErrReject so they are
// dropped; write failures are returned as-is so the delivery is requeued.
// A message ID already mirrored within the last hour is skipped.
func (w *MirrorWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	if msg.ID != "" {
		if _, ok := w.seen.Get(msg.ID); ok {
			slog.InfoContext(ctx, "Skipping already mirrored message", "message_id", msg.ID)
			return nil
		}
	}

	t, err := msg.Transaction()
	if err != nil {
		return fmt.Errorf("%w: %w", amqp.ErrReject, err)
	}

	if err := w.mirror.Append(ctx, t); err != nil {
		return fmt.Errorf("mirror transaction %s: %w", msg.ID, err)
	}

	if msg.ID != "" {
		w.seen.Set(msg.ID, struct{}{})
	}
	slog.InfoContext(ctx, "Transaction mirrored",
		"message_id", msg.ID,
		"date", t.Date.String(),
		"amount", core.FormatAmount(t.Amount),
		"category", t.Category)
	return nil
}

// Cache exposes the dedup cache so the caller can register it for sweeping.
func (w *MirrorWorker) Cache() cache.Cleaner {
	return w.seen
}
