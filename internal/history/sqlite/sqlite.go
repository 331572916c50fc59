package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/conduit-cli/conduit/internal/history"
)

// Sink writes history events to a SQLite database.
type Sink struct {
	db *sql.DB
}

// New opens (creating if needed) the SQLite history database.
// DSN format:
//   - "sqlite:///path/to/file.db"
//   - "/path/to/file.db" (without prefix)
//   - ":memory:" (in-memory database)
func New(dsn string) (*Sink, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("empty SQLite DSN")
	}

	// Handle sqlite:// prefix
	if strings.HasPrefix(strings.ToLower(dsn), "sqlite://") {
		dsn = dsn[len("sqlite://"):]
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)

	sink := &Sink{db: db}
	if err := sink.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sink, nil
}

func (s *Sink) ensureSchema(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS lifecycle_history(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TIMESTAMP NOT NULL DEFAULT (CURRENT_TIMESTAMP),
		op TEXT NOT NULL,
		component TEXT NOT NULL,
		package_id TEXT,
		version TEXT,
		outcome TEXT NOT NULL,
		category TEXT,
		message TEXT
	);`
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("creating history schema: %w", err)
	}
	return nil
}

// Send implements history.Sink.
func (s *Sink) Send(ctx context.Context, e history.Event) error {
	occur := e.OccurredAt
	if occur.IsZero() {
		occur = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lifecycle_history(timestamp, op, component, package_id, version, outcome, category, message)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?);`,
		occur.UTC(), string(e.Op), e.Component, nullable(e.PackageID), nullable(e.Version),
		string(e.Outcome), nullable(e.Category), nullable(e.Message))
	return err
}

// List implements history.Reader. A non-positive limit returns every event.
func (s *Sink) List(ctx context.Context, limit int) ([]history.Event, error) {
	query := `SELECT timestamp, op, component, package_id, version, outcome, category, message
		FROM lifecycle_history ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []history.Event
	for rows.Next() {
		var (
			e                               history.Event
			op, outcome                     string
			pkg, version, category, message sql.NullString
		)
		if err := rows.Scan(&e.OccurredAt, &op, &e.Component, &pkg, &version, &outcome, &category, &message); err != nil {
			return nil, err
		}
		e.Op = history.Op(op)
		e.Outcome = history.Outcome(outcome)
		e.PackageID = pkg.String
		e.Version = version.String
		e.Category = category.String
		e.Message = message.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the database.
func (s *Sink) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
