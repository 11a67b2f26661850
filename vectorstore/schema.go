package vectorstore

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/liuyuqiaoe/local-hirag/helper"
)

// UpsertMode selects how upsert_text behaves when a document_key collides.
type UpsertMode string

const (
	ModeAppend    UpsertMode = "append"
	ModeOverwrite UpsertMode = "overwrite"
)

// column describes one scalar column of a named table, beyond the fixed id/
// text/document_key/vector columns every table carries.
type column struct {
	name string
	sqlType string
}

// tableSchemas mirrors §4.7: each table has text, document_key, and a dense
// vector column, plus table-specific scalar columns.
var tableSchemas = map[string][]column{
	"chunks": {
		{"type", "text"},
		{"filename", "text"},
		{"page_number", "integer"},
		{"uri", "text"},
		{"private", "boolean"},
		{"chunk_idx", "integer"},
		{"document_id", "text"},
	},
	"entities": {
		{"entity_type", "text"},
		{"description", "text"},
		{"chunk_ids", "text[]"},
	},
}

// CreateTable creates table if absent, with a dense vector(dims) column and
// the fixed text/document_key scaffolding plus the table's scalar columns.
// Matches the teacher's schema-bootstrap idiom: failure here is a programmer/
// deployment error, not a recoverable one, so it panics rather than threading
// an error through every caller. An unknown table name is still returned as
// an error.
func (s *Store) CreateTable(ctx context.Context, table string, dims int) error {
	cols, ok := tableSchemas[table]
	if !ok {
		return helper.NewError("create table", fmt.Errorf("unknown table %q", table))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE IF NOT EXISTS %s (\n", pqIdent(table))
	sb.WriteString("  id bigserial PRIMARY KEY,\n")
	sb.WriteString("  document_key text NOT NULL,\n")
	sb.WriteString("  text text NOT NULL,\n")
	fmt.Fprintf(&sb, "  vector vector(%d),\n", dims)
	for _, c := range cols {
		fmt.Fprintf(&sb, "  %s %s,\n", pqIdent(c.name), c.sqlType)
	}
	sb.WriteString("  inserted_at bigserial\n")
	sb.WriteString(")")

	if _, err := s.db.Instance.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		log.Panicf("error enabling pgvector extension: %v", err)
	}
	if _, err := s.db.Instance.ExecContext(ctx, sb.String()); err != nil {
		log.Panicf("error creating table %s: %v", table, err)
	}
	indexName := table + "_vector_idx"
	idxSQL := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON %s USING ivfflat (vector vector_cosine_ops)",
		pqIdent(indexName), pqIdent(table),
	)
	if _, err := s.db.Instance.ExecContext(ctx, idxSQL); err != nil {
		log.Panicf("error creating index on %s: %v", table, err)
	}

	s.db.Logger.Info("Checked/created table", "table", table)
	return nil
}

func pqIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
