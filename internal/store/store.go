// Package store persists projected records in PostgreSQL.
//
// Each shape gets its own table, created on first import. Columns follow
// the shape's fields (text or double precision) plus the batch ID and
// import time, so one import can be traced or removed as a unit.
package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/JonMunkholm/csvtables/internal/config"
	"github.com/JonMunkholm/csvtables/internal/core"
	"github.com/JonMunkholm/csvtables/internal/logging"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TablePrefix is prepended to the shape key to name its table.
const TablePrefix = "import_"

// reservedColumns are written by the store itself on every table.
var reservedColumns = map[string]bool{"id": true, "batch_id": true, "imported_at": true}

// DB is the subset of pgxpool.Pool used by Store.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store writes records through a connection pool. It implements core.Sink.
type Store struct {
	db DB
}

// New creates a Store on an existing pool.
func New(db DB) *Store {
	return &Store{db: db}
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logging.FromContext(ctx).Info("connected to database", "name", databaseName(cfg.URL))
	return pool, nil
}

// databaseName extracts the database name from a connection URL for logging.
func databaseName(connURL string) string {
	u, err := url.Parse(connURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

// TableName returns the table that holds records of shape.
func TableName(shape core.Shape) string {
	return TablePrefix + strings.ToLower(shape.Key)
}

// ImportRecords creates the shape's table if needed and bulk loads records
// in a single transaction. Returns the number of rows copied.
func (s *Store) ImportRecords(ctx context.Context, batchID string, shape core.Shape, records []core.Record) (int64, error) {
	if err := checkColumns(shape); err != nil {
		return 0, err
	}

	id, err := uuid.Parse(batchID)
	if err != nil {
		return 0, fmt.Errorf("invalid batch id %q: %w", batchID, err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createTableSQL(shape)); err != nil {
		return 0, fmt.Errorf("create table %s: %w", TableName(shape), err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{TableName(shape)},
		copyColumns(shape),
		pgx.CopyFromRows(copyRows(id, records)),
	)
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", TableName(shape), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	logging.FromContext(ctx).Debug("records stored",
		"table", TableName(shape),
		"batch_id", batchID,
		"rows", n,
	)
	return n, nil
}

// checkColumns rejects shapes whose columns collide with the fixed columns
// or with each other.
func checkColumns(shape core.Shape) error {
	seen := make(map[string]bool, len(shape.Fields))
	for _, f := range shape.Fields {
		col := f.DBColumn()
		if reservedColumns[col] {
			return fmt.Errorf("shape %s: field %q uses reserved column %q", shape.Key, f.Name, col)
		}
		if seen[col] {
			return fmt.Errorf("shape %s: column %q is used by more than one field", shape.Key, col)
		}
		seen[col] = true
	}
	return nil
}

// createTableSQL returns the DDL for shape's table.
func createTableSQL(shape core.Shape) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(pgx.Identifier{TableName(shape)}.Sanitize())
	b.WriteString(" (\n\tid bigserial PRIMARY KEY,\n\tbatch_id uuid NOT NULL,\n\timported_at timestamptz NOT NULL DEFAULT now()")
	for _, f := range shape.Fields {
		b.WriteString(",\n\t")
		b.WriteString(pgx.Identifier{f.DBColumn()}.Sanitize())
		b.WriteString(" ")
		b.WriteString(columnType(f.Type))
	}
	b.WriteString("\n)")
	return b.String()
}

func columnType(t core.FieldType) string {
	if t == core.FieldNumeric {
		return "double precision"
	}
	return "text"
}

// copyColumns lists the columns written by CopyFrom, batch_id first.
func copyColumns(shape core.Shape) []string {
	cols := make([]string, 0, len(shape.Fields)+1)
	cols = append(cols, "batch_id")
	for _, f := range shape.Fields {
		cols = append(cols, f.DBColumn())
	}
	return cols
}

// copyRows converts records to CopyFrom rows aligned with copyColumns.
// Unbound optional fields are written as NULL.
func copyRows(batchID uuid.UUID, records []core.Record) [][]any {
	id := pgtype.UUID{Bytes: batchID, Valid: true}

	rows := make([][]any, len(records))
	for i, r := range records {
		values := r.Values()
		row := make([]any, 0, len(values)+1)
		row = append(row, id)
		row = append(row, values...)
		rows[i] = row
	}
	return rows
}
