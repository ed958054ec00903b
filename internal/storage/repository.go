package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/store"

	_ "modernc.org/sqlite"
)

// Dates are stored as YYYY-MM-DD so that text comparison orders them.
const sqlDateLayout = "2006-01-02"

type SQLiteRepository struct {
	db     *sql.DB
	dbPath string
}

var _ store.TransactionStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db, dbPath: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Initialize implements store.Initializer by running the embedded migrations.
func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	version, err := RunMigrations(r.dbPath)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "SQLite schema ready", "path", r.dbPath, "version", version)
	return nil
}

// Append implements store.TransactionWriter
func (r *SQLiteRepository) Append(ctx context.Context, t core.Transaction) error {
	if err := core.CheckCategory(t.Category); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (date, amount, category, description) VALUES (?, ?, ?, ?)`,
		t.Date.Format(sqlDateLayout),
		core.FormatAmount(t.Amount),
		string(t.Category),
		t.Description,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	id, _ := res.LastInsertId()
	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"description", t.Description,
		"amount", core.FormatAmount(t.Amount),
		"category", t.Category,
		"date", t.Date.String())

	return nil
}

// QueryRange implements store.RangeReader
func (r *SQLiteRepository) QueryRange(ctx context.Context, start, end core.Date) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, amount, category, description
		   FROM transactions
		  WHERE date >= ? AND date <= ?
		  ORDER BY id`,
		start.Format(sqlDateLayout),
		end.Format(sqlDateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		var (
			id                              int64
			date, amount, category, details string
		)
		if err := rows.Scan(&id, &date, &amount, &category, &details); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t, err := decodeRow(date, amount, category, details)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", id, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Count returns the number of stored transactions.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func decodeRow(date, amount, category, description string) (core.Transaction, error) {
	d, err := core.ParseDateLayout(date, sqlDateLayout)
	if err != nil {
		return core.Transaction{}, err
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w %q: %v", core.ErrInvalidAmount, amount, err)
	}
	c, err := core.ParseCategory(category)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{Date: d, Amount: a, Category: c, Description: description}, nil
}
