package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/storage"
	"fintrack/internal/store/csvstore"
	"fintrack/internal/store/google"
	"fintrack/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateStore implements Factory.CreateStore
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *Result
		err error
	)
	switch config.Type {
	case CSVBackend:
		res = f.createCSVStore(config)
	case MemoryBackend:
		res = &Result{Store: memory.New()}
		f.logger.Info("Initialized memory backend")
	case SQLiteBackend:
		res, err = f.createSQLiteStore(config)
	case SheetsBackend:
		res, err = f.createSheetsStore(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := res.Store.Initialize(ctx); err != nil {
		res.Close()
		return nil, fmt.Errorf("initialize %s backend: %w", config.Type, err)
	}
	return res, nil
}

func (f *DefaultFactory) createCSVStore(config Config) *Result {
	s := csvstore.New(csvstore.Config{Path: config.CSVFile, DateLayout: config.DateFormat})
	f.logger.Info("Initialized CSV backend", "path", s.Path(), "date_format", config.DateFormat)
	return &Result{Store: s}
}

func (f *DefaultFactory) createSQLiteStore(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &Result{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsStore(ctx context.Context, config Config) (*Result, error) {
	cli, err := google.New(ctx, google.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		SheetName:          config.GoogleSheetName,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
		DateLayout:         config.DateFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend", "sheet", config.GoogleSheetName)
	return &Result{Store: cli}, nil
}

// NewPublisher dials the broker when url is set. A dial failure is logged
// and yields a nil client so the caller keeps running without messages.
func NewPublisher(logger *slog.Logger, url, exchange, queue string) *amqp.Client {
	if url == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := amqp.NewClient(url, exchange, queue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without messages", "error", err)
		return nil
	}
	logger.Info("Initialized AMQP client", "exchange", exchange, "queue", queue)
	return client
}
