package store

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// Initializer creates the backing table when it does not exist yet.
	// Calling it again must leave existing data untouched.
	Initializer interface {
		Initialize(ctx context.Context) error
	}

	TransactionWriter interface {
		Append(ctx context.Context, t core.Transaction) error
	}

	// RangeReader returns the rows dated within [start, end] in insertion
	// order. No match is an empty result, not an error.
	RangeReader interface {
		QueryRange(ctx context.Context, start, end core.Date) ([]core.Transaction, error)
	}

	TransactionStore interface {
		Initializer
		TransactionWriter
		RangeReader
	}
)
