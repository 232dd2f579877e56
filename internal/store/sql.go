package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver ("pgx")
	_ "github.com/lib/pq"              // PostgreSQL driver ("postgres")
	_ "github.com/mattn/go-sqlite3"    // SQLite driver ("sqlite3")
	"go.uber.org/zap"

	"github.com/conduit-lang/podreg/runtime/pod"
)

// Dialect selects the bind parameter style
type Dialect int

const (
	// SQLite uses ? placeholders
	SQLite Dialect = iota
	// Postgres uses $n placeholders
	Postgres
)

// DialectFor returns the dialect of a database/sql driver name
func DialectFor(driver string) Dialect {
	switch driver {
	case "pgx", "postgres":
		return Postgres
	default:
		return SQLite
	}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS podreg_snapshots (
	id VARCHAR(64) PRIMARY KEY,
	created_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS podreg_pods (
	name VARCHAR(255) PRIMARY KEY,
	position INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS podreg_types (
	pod VARCHAR(255) NOT NULL,
	name VARCHAR(255) NOT NULL,
	base VARCHAR(512) NOT NULL DEFAULT '',
	position INTEGER NOT NULL,
	PRIMARY KEY (pod, name)
)`,
}

// SQLStore keeps the snapshot in three tables
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
}

// NewSQLStore wraps an open database. Call Init before first use.
func NewSQLStore(db *sql.DB, dialect Dialect, logger *zap.Logger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStore{db: db, dialect: dialect, logger: logger}
}

// Init creates the snapshot tables if they do not exist
func (s *SQLStore) Init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Save replaces the stored snapshot in a single transaction
func (s *SQLStore) Save(ctx context.Context, snap pod.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"podreg_types", "podreg_pods", "podreg_snapshots"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		s.rebind("INSERT INTO podreg_snapshots (id, created_at) VALUES (?, ?)"),
		snap.ID, snap.Created.UnixNano()); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	insertPod := s.rebind("INSERT INTO podreg_pods (name, position) VALUES (?, ?)")
	insertType := s.rebind("INSERT INTO podreg_types (pod, name, base, position) VALUES (?, ?, ?, ?)")
	for i, ps := range snap.Pods {
		if _, err := tx.ExecContext(ctx, insertPod, ps.Name, i); err != nil {
			return fmt.Errorf("failed to insert pod %s: %w", ps.Name, err)
		}
		for j, ts := range ps.Types {
			if _, err := tx.ExecContext(ctx, insertType, ps.Name, ts.Name, ts.Base, j); err != nil {
				return fmt.Errorf("failed to insert type %s: %w", ts.QName, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	s.logger.Debug("snapshot saved",
		zap.String("id", snap.ID),
		zap.Int("pods", len(snap.Pods)),
		zap.Int("types", snap.TypeCount()))
	return nil
}

// Load reads the stored snapshot, or ErrNoSnapshot
func (s *SQLStore) Load(ctx context.Context) (pod.Snapshot, error) {
	var (
		snap    pod.Snapshot
		created int64
	)
	err := s.db.QueryRowContext(ctx, "SELECT id, created_at FROM podreg_snapshots LIMIT 1").Scan(&snap.ID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return pod.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return pod.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	snap.Created = time.Unix(0, created).UTC()

	rows, err := s.db.QueryContext(ctx, "SELECT name FROM podreg_pods ORDER BY position")
	if err != nil {
		return pod.Snapshot{}, fmt.Errorf("failed to read pods: %w", err)
	}
	index := make(map[string]int)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return pod.Snapshot{}, fmt.Errorf("failed to scan pod: %w", err)
		}
		index[name] = len(snap.Pods)
		snap.Pods = append(snap.Pods, pod.PodSnapshot{Name: name, Types: []pod.TypeSnapshot{}})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return pod.Snapshot{}, fmt.Errorf("failed to read pods: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, "SELECT pod, name, base FROM podreg_types ORDER BY pod, position")
	if err != nil {
		return pod.Snapshot{}, fmt.Errorf("failed to read types: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var podName, name, base string
		if err := rows.Scan(&podName, &name, &base); err != nil {
			return pod.Snapshot{}, fmt.Errorf("failed to scan type: %w", err)
		}
		i, ok := index[podName]
		if !ok {
			return pod.Snapshot{}, fmt.Errorf("type %s references unknown pod", pod.QName(podName, name))
		}
		snap.Pods[i].Types = append(snap.Pods[i].Types, pod.TypeSnapshot{
			Name:  name,
			QName: pod.QName(podName, name),
			Base:  base,
		})
	}
	if err := rows.Err(); err != nil {
		return pod.Snapshot{}, fmt.Errorf("failed to read types: %w", err)
	}

	return snap, nil
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to $n for Postgres
func (s *SQLStore) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
