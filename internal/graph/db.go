package graph

import (
	"context"
	"fmt"
	"log"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Record is one row of a query result, keyed by the RETURN field names. Values
// are driver-native; use the helpers in values.go to normalise them.
type Record map[string]any

// Runner executes a parameterised query and collects its rows. The concrete
// implementation is a Neo4j session; tests substitute fakes.
type Runner interface {
	Collect(ctx context.Context, query string, params map[string]any) ([]Record, error)
}

// DB wraps the shared Neo4j driver. The driver keeps its own connection pool
// and is safe for concurrent use; sessions are per-request and exclusive.
type DB struct {
	driver   neo4j.DriverWithContext
	database string
}

func Connect(ctx context.Context, uri, username, password, database string) (*DB, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}
	return &DB{driver: driver, database: database}, nil
}

func (db *DB) Close(ctx context.Context) {
	if err := db.driver.Close(ctx); err != nil {
		log.Println("[Graph] Error closing driver:", err)
	}
}

// Ping verifies the database is reachable. Used by /db-health.
func (db *DB) Ping(ctx context.Context) error {
	return db.driver.VerifyConnectivity(ctx)
}

// Session opens a read session scoped to one request. Callers must Close it on
// every exit path.
func (db *DB) Session(ctx context.Context) *Session {
	return &Session{sess: db.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: db.database,
	})}
}

// WriteSession opens a write session (embedding maintenance only).
func (db *DB) WriteSession(ctx context.Context) *Session {
	return &Session{sess: db.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: db.database,
	})}
}

type Session struct {
	sess neo4j.SessionWithContext
}

func (s *Session) Close(ctx context.Context) {
	if err := s.sess.Close(ctx); err != nil {
		log.Println("[Graph] Error closing session:", err)
	}
}

// Collect runs a query and materialises every row into a Record.
func (s *Session) Collect(ctx context.Context, query string, params map[string]any) ([]Record, error) {
	result, err := s.sess.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	var records []Record
	for result.Next(ctx) {
		rec := result.Record()
		row := make(Record, len(rec.Keys))
		for i, key := range rec.Keys {
			row[key] = rec.Values[i]
		}
		records = append(records, row)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("result stream: %w", err)
	}
	return records, nil
}

// Write runs a mutating query and discards the rows.
func (s *Session) Write(ctx context.Context, query string, params map[string]any) error {
	result, err := s.sess.Run(ctx, query, params)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	_, err = result.Consume(ctx)
	return err
}
