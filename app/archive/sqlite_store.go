package archive

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

const (
	recordsTable    = "archive_records"
	insertBatchSize = 100
)

// SQLiteStore keeps archive records in a SQLite table keyed by entry id.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	version, dirty, err := RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("Archive migrations applied", "version", version, "dirty", dirty)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Records, error) {
	query, args, err := sq.Select("id", "title", "link", "published").
		From(recordsTable).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load archive records: %w", err)
	}
	defer rows.Close()

	records := Records{}
	for rows.Next() {
		var id string
		var record Record
		if err := rows.Scan(&id, &record.Title, &record.Link, &record.Published); err != nil {
			return nil, fmt.Errorf("failed to scan archive row: %w", err)
		}
		records[id] = record
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archive rows: %w", err)
	}

	return records, nil
}

var _ Appender = (*SQLiteStore)(nil)

// Save inserts every record whose id is not stored yet; existing rows are
// left untouched.
func (s *SQLiteStore) Save(ctx context.Context, records Records) error {
	return s.Add(ctx, records)
}

func (s *SQLiteStore) Add(ctx context.Context, records Records) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(ids); start += insertBatchSize {
		end := min(start+insertBatchSize, len(ids))

		insert := sq.Insert(recordsTable).Columns("id", "title", "link", "published")
		for _, id := range ids[start:end] {
			record := records[id]
			insert = insert.Values(id, record.Title, record.Link, record.Published)
		}

		query, args, err := insert.Suffix("ON CONFLICT(id) DO NOTHING").ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to store archive records: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive records: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
