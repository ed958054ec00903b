// Package csvstore keeps transactions in a comma-separated flat file.
//
// Every call opens the file, reads or appends, and closes it before
// returning. There is no locking: two processes appending to the same file
// may interleave.
package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

const DefaultPath = "finance_data.csv"

// Config describes the backing file. Zero fields take defaults.
type Config struct {
	Path       string
	DateLayout string
}

type Store struct {
	path   string
	layout string
}

var _ store.TransactionStore = (*Store)(nil)

func New(cfg Config) *Store {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.DateLayout == "" {
		cfg.DateLayout = core.DateLayout
	}
	return &Store{path: cfg.Path, layout: cfg.DateLayout}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Initialize creates the file with only the header row if it is missing.
// An existing zero-byte file gets the header too.
func (s *Store) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.path)
	if err == nil {
		if info.Size() > 0 {
			return nil
		}
		f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0)
		if err != nil {
			return fmt.Errorf("open table: %w", err)
		}
		if err := ensureHeader(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close table: %w", err)
		}
		slog.InfoContext(ctx, "Header written to empty transaction table", "path", s.path)
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create table directory: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		// Created by someone else between Stat and OpenFile.
		return nil
	}
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	if err := writeRecord(f, core.Columns); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close table: %w", err)
	}

	slog.InfoContext(ctx, "Transaction table created", "path", s.path)
	return nil
}

// Append writes one row at the end of the table. Only the category is
// checked, so that the row stays readable; amounts and dates are written
// as given. A missing or empty file gets the header first.
func (s *Store) Append(ctx context.Context, t core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := core.CheckCategory(t.Category); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.Initialize(ctx); err != nil {
			return err
		}
		f, err = os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0)
	}
	if err != nil {
		return fmt.Errorf("open table for append: %w", err)
	}
	if err := ensureHeader(f); err != nil {
		f.Close()
		return err
	}
	if err := writeRecord(f, core.EncodeRecord(t, s.layout)); err != nil {
		f.Close()
		return fmt.Errorf("append row: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close table: %w", err)
	}

	slog.DebugContext(ctx, "Transaction appended",
		"path", s.path,
		"date", t.Date.Format(s.layout),
		"amount", core.FormatAmount(t.Amount),
		"category", t.Category)
	return nil
}

// QueryRange parses the whole table and returns rows dated within
// [start, end]. Any unparsable row fails the call.
func (s *Store) QueryRange(ctx context.Context, start, end core.Date) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.readAll()
	if err != nil {
		return nil, err
	}
	return core.FilterRange(rows, start, end), nil
}

func (s *Store) readAll() ([]core.Transaction, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := core.CheckHeader(header); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	var out []core.Transaction
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read table: %w", err)
		}
		line, _ := r.FieldPos(0)
		t, err := core.DecodeRecord(rec, s.layout)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.path, line, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// ensureHeader writes the header when f is empty.
func ensureHeader(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat table: %w", err)
	}
	if info.Size() > 0 {
		return nil
	}
	if err := writeRecord(f, core.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

func writeRecord(w io.Writer, rec []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rec); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
