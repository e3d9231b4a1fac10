package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"ContentMachine/internal/ports"
)

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// schema creates the append-only tables written by the publisher.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS content_artifacts (
		id              TEXT PRIMARY KEY,
		run_id          TEXT NOT NULL,
		slug            TEXT NOT NULL,
		title           TEXT NOT NULL,
		body            TEXT NOT NULL,
		pillar_keyword  TEXT,
		keywords        TEXT[],
		structured_data JSONB,
		trust_signals   JSONB,
		source_cluster  JSONB,
		generated_at    TIMESTAMPTZ,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (run_id, slug)
	)`,
	`CREATE TABLE IF NOT EXISTS publish_records (
		id           TEXT PRIMARY KEY,
		run_id       TEXT NOT NULL,
		artifact_id  TEXT NOT NULL REFERENCES content_artifacts (id),
		slug         TEXT NOT NULL,
		published_at TIMESTAMPTZ NOT NULL,
		status       TEXT NOT NULL
	)`,
}

// PostgresStore appends records into Postgres tables.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.Store = (*PostgresStore)(nil)

// Open connects to dsn with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates missing tables.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("postgres store has no database")
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Insert writes record into table. An "id" is generated when the record has
// none; the returned record carries the id stored by the database.
func (s *PostgresStore) Insert(ctx context.Context, table string, record ports.Record) (ports.Record, error) {
	if s.db == nil {
		return nil, fmt.Errorf("postgres store has no database")
	}

	saved := withID(record)
	query, args, err := s.buildInsert(table, saved)
	if err != nil {
		return nil, err
	}

	var id string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}
	saved["id"] = id
	return saved, nil
}

func (s *PostgresStore) buildInsert(table string, record ports.Record) (string, []any, error) {
	if !identifier.MatchString(table) {
		return "", nil, fmt.Errorf("invalid table name %q", table)
	}
	if len(record) == 0 {
		return "", nil, fmt.Errorf("insert %s: empty record", table)
	}

	columns := make([]string, 0, len(record))
	for col := range record {
		if !identifier.MatchString(col) {
			return "", nil, fmt.Errorf("insert %s: invalid column name %q", table, col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	values := make([]any, len(columns))
	for i, col := range columns {
		values[i] = sqlValue(record[col])
	}

	query, args, err := s.builder.
		Insert(table).
		Columns(columns...).
		Values(values...).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build insert %s: %w", table, err)
	}
	return query, args, nil
}

// sqlValue adapts slices to Postgres arrays.
func sqlValue(v any) any {
	switch val := v.(type) {
	case []string:
		return pq.Array(val)
	case []int64:
		return pq.Array(val)
	case []float64:
		return pq.Array(val)
	default:
		return v
	}
}

// withID copies record and stamps a fresh id when it has none.
func withID(record ports.Record) ports.Record {
	saved := make(ports.Record, len(record)+1)
	for k, v := range record {
		saved[k] = v
	}
	if id, _ := saved["id"].(string); id == "" {
		saved["id"] = uuid.NewString()
	}
	return saved
}
