package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"engineer-search/internal/search"
)

// Store is an optional Postgres sink for search audit records. All writes are
// best-effort: a failing sink logs and never fails the search path.
type Store struct {
	connection *sql.DB
}

func Open(dataSourceName string) (*Store, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	store := &Store{connection: db}
	if err := store.ensureSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() {
	if err := s.connection.Close(); err != nil {
		log.Println("Error closing the audit database connection:", err)
	}
}

func (s *Store) ensureSchema() error {
	_, err := s.connection.Exec(`CREATE TABLE IF NOT EXISTS search_audit (
		query_id     UUID PRIMARY KEY,
		request      JSONB NOT NULL,
		total_count  INTEGER NOT NULL,
		execution_ms BIGINT NOT NULL,
		advisor_ran  BOOLEAN NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}

// RecordSearch implements search.AuditSink.
func (s *Store) RecordSearch(ctx context.Context, queryID string, req *search.SearchRequest, totalCount int, executionMs int64, advisorRan bool) {
	payload, err := json.Marshal(req)
	if err != nil {
		log.Printf("[Audit] Failed to serialise request %s: %v", queryID, err)
		return
	}

	_, err = s.connection.ExecContext(ctx,
		`INSERT INTO search_audit (query_id, request, total_count, execution_ms, advisor_ran)
		 VALUES ($1, $2, $3, $4, $5)`,
		queryID, payload, totalCount, executionMs, advisorRan)
	if err != nil {
		log.Printf("[Audit] Failed to record search %s: %v", queryID, err)
	}
}

// RecentSearches returns the latest audit rows for operational inspection.
func (s *Store) RecentSearches(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.connection.QueryContext(ctx,
		`SELECT query_id, request, total_count, execution_ms, advisor_ran, created_at
		 FROM search_audit ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var payload []byte
		if err := rows.Scan(&r.QueryID, &payload, &r.TotalCount, &r.ExecutionMs, &r.AdvisorRan, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Request = json.RawMessage(payload)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Record is one persisted search audit row.
type Record struct {
	QueryID     string          `json:"queryId"`
	Request     json.RawMessage `json:"request"`
	TotalCount  int             `json:"totalCount"`
	ExecutionMs int64           `json:"executionMs"`
	AdvisorRan  bool            `json:"advisorRan"`
	CreatedAt   time.Time       `json:"createdAt"`
}
