package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/i474232898/skypulse/internal/store"
	"github.com/i474232898/skypulse/internal/weather"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteLoader is a local warehouse: it pulls the staged CSV object from an
// ObjectStore and appends its rows to a SQLite table in one transaction.
type SQLiteLoader struct {
	db      *sql.DB
	objects store.ObjectStore
	table   string
	logger  *slog.Logger
}

var _ Loader = (*SQLiteLoader)(nil)

// NewSQLiteLoader opens (or creates) the database file at path.
func NewSQLiteLoader(path string, objects store.ObjectStore, table string, logger *slog.Logger) (*SQLiteLoader, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteLoader{
		db:      db,
		objects: objects,
		table:   table,
		logger:  logger.With("warehouse", "sqlite"),
	}, nil
}

// Load appends every data row of the staged CSV. The table is created from the
// header on first load; new header columns are added on later loads.
func (l *SQLiteLoader) Load(ctx context.Context, req LoadRequest) (LoadResult, error) {
	if err := req.validate(); err != nil {
		return LoadResult{}, err
	}
	if req.Format != FormatCSV {
		return LoadResult{}, fmt.Errorf("sqlite warehouse cannot load %s sources", req.Format)
	}
	if req.SkipLeadingRows != 1 {
		return LoadResult{}, fmt.Errorf("sqlite warehouse expects exactly one header row, got %d", req.SkipLeadingRows)
	}

	rc, err := l.objects.Download(ctx, req.Bucket, req.Object)
	if err != nil {
		return LoadResult{}, err
	}
	frame, err := weather.ReadCSV(rc)
	rc.Close()
	if err != nil {
		return LoadResult{}, fmt.Errorf("parse %s: %w", l.objects.URI(req.Bucket, req.Object), err)
	}
	if len(frame.Header) == 0 {
		return LoadResult{}, fmt.Errorf("%s has no header row", l.objects.URI(req.Bucket, req.Object))
	}

	types := detectColumnTypes(frame)

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return LoadResult{}, fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	if err := l.ensureTable(ctx, tx, frame.Header, types); err != nil {
		return LoadResult{}, err
	}

	cols := make([]string, len(frame.Header))
	marks := make([]string, len(frame.Header))
	for i, h := range frame.Header {
		cols[i] = quoteIdent(h)
		marks[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(l.table), strings.Join(cols, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return LoadResult{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range frame.Rows {
		args := make([]any, len(frame.Header))
		for j := range frame.Header {
			args[j] = sqlValue(row, j, types[j])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return LoadResult{}, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return LoadResult{}, fmt.Errorf("commit load: %w", err)
	}
	l.logger.Info("loaded object", "source", l.objects.URI(req.Bucket, req.Object), "table", l.table, "rows", frame.Len())
	return LoadResult{Table: l.table, RowsLoaded: int64(frame.Len())}, nil
}

// RowCount returns the number of rows in the destination table, 0 if it doesn't exist yet.
func (l *SQLiteLoader) RowCount(ctx context.Context) (int64, error) {
	existing, err := l.existingColumns(ctx, l.db)
	if err != nil {
		return 0, err
	}
	if len(existing) == 0 {
		return 0, nil
	}
	var n int64
	err = l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(l.table)).Scan(&n)
	return n, err
}

func (l *SQLiteLoader) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (l *SQLiteLoader) existingColumns(ctx context.Context, q querier) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", l.table)
	if err != nil {
		return nil, fmt.Errorf("inspect table %s: %w", l.table, err)
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

func (l *SQLiteLoader) ensureTable(ctx context.Context, tx *sql.Tx, header, types []string) error {
	existing, err := l.existingColumns(ctx, tx)
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		defs := make([]string, len(header))
		for i, h := range header {
			defs[i] = quoteIdent(h) + " " + types[i]
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(l.table), strings.Join(defs, ", "))); err != nil {
			return fmt.Errorf("create table %s: %w", l.table, err)
		}
		return nil
	}

	for i, h := range header {
		if existing[h] {
			continue
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", quoteIdent(l.table), quoteIdent(h), types[i])); err != nil {
			return fmt.Errorf("add column %s: %w", h, err)
		}
	}
	return nil
}

// detectColumnTypes marks a column REAL when every non-empty cell is numeric.
func detectColumnTypes(f *weather.Frame) []string {
	types := make([]string, len(f.Header))
	for j := range f.Header {
		types[j] = "TEXT"
		numeric := false
		for _, row := range f.Rows {
			if j >= len(row) || row[j] == "" {
				continue
			}
			if _, err := strconv.ParseFloat(row[j], 64); err != nil {
				numeric = false
				break
			}
			numeric = true
		}
		if numeric {
			types[j] = "REAL"
		}
	}
	return types
}

func sqlValue(row []string, j int, typ string) any {
	if j >= len(row) || row[j] == "" {
		return nil
	}
	if typ == "REAL" {
		v, _ := strconv.ParseFloat(row[j], 64)
		return v
	}
	return row[j]
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
