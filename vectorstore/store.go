// Package vectorstore implements the VectorStore of §4.2: named tables with
// a fixed schema, upsert/query of embedded text rows, backed by Postgres and
// pgvector the way the teacher's database package backs its own tables.
package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/llm"
)

// RerankStrategy reorders k-NN hits after the database returns them. The
// identity reranker (no-op) is the default; callers inject anything from a
// cross-encoder to a business-rule boost.
type RerankStrategy interface {
	Rerank(ctx context.Context, query string, hits []Row) []Row
}

// NoopRerank leaves hit order untouched.
type NoopRerank struct{}

func (NoopRerank) Rerank(_ context.Context, _ string, hits []Row) []Row { return hits }

// Row is one projected hit: the requested scalar columns plus distance and
// the row's document_key, always present so callers can de-duplicate
// append-mode overwrites.
type Row struct {
	DocumentKey string
	Distance    float64
	Columns     map[string]interface{}
}

// Store is a VectorStore backed by a single Postgres/pgvector connection,
// shared across every named table.
type Store struct {
	db       *helper.Database
	embedder llm.EmbeddingClient
	rerank   RerankStrategy

	knownMu sync.Mutex
	known   map[string]bool
}

// New builds a Store. rerank may be nil, in which case hits pass through
// unchanged (NoopRerank).
func New(db *helper.Database, embedder llm.EmbeddingClient, rerank RerankStrategy) *Store {
	if rerank == nil {
		rerank = NoopRerank{}
	}
	return &Store{db: db, embedder: embedder, rerank: rerank, known: make(map[string]bool)}
}

// ensureTable creates table on first use. known is read and written under
// knownMu because §5's bounded fan-out calls UpsertText/Query from up to
// ChunkUpsertConcurrency/EntityUpsertConcurrency goroutines concurrently on
// the same Store, and an unguarded map would race.
func (s *Store) ensureTable(ctx context.Context, table string) error {
	s.knownMu.Lock()
	defer s.knownMu.Unlock()

	if s.known[table] {
		return nil
	}
	if err := s.CreateTable(ctx, table, s.embedder.Dimensions()); err != nil {
		return err
	}
	s.known[table] = true
	return nil
}

// UpsertText embeds text, merges it into properties as the vector column,
// and writes a row to table (creating it on first use). In ModeOverwrite the
// row with the same document_key is deleted first, so a reader never sees
// two live rows for one key; true native upsert is unavailable without a
// unique index per table's ad-hoc scalar columns, so delete-then-insert
// plays the role §4.2 allows for stores that "cannot do a true upsert
// natively" -- the net effect at the row level is identical.
func (s *Store) UpsertText(ctx context.Context, text string, documentKey string, properties map[string]interface{}, table string, mode UpsertMode) error {
	if err := s.ensureTable(ctx, table); err != nil {
		return helper.NewError("ensure table", err)
	}

	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return helper.NewError("embed text", err)
	}
	if len(vectors) == 0 {
		return helper.NewError("embed text", fmt.Errorf("embedding provider returned no vectors"))
	}

	if mode == ModeOverwrite {
		if _, err := s.db.Instance.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE document_key = $1`, pqIdent(table)), documentKey,
		); err != nil {
			return helper.NewError("overwrite delete", err)
		}
	}

	cols, ok := tableSchemas[table]
	if !ok {
		return helper.NewError("upsert text", fmt.Errorf("unknown table %q", table))
	}

	colNames := []string{"document_key", "text", "vector"}
	placeholders := []string{"$1", "$2", "$3"}
	args := []interface{}{documentKey, text, pgvector.NewVector(vectors[0])}
	for _, c := range cols {
		colNames = append(colNames, c.name)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
		args = append(args, columnValue(c, properties[c.name]))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		pqIdent(table), strings.Join(colNames, ", "), strings.Join(placeholders, ", "),
	)
	if _, err := s.db.Instance.ExecContext(ctx, query, args...); err != nil {
		return helper.NewError("insert row", err)
	}
	return nil
}

// scanDestination returns a pointer suitable for database/sql.Rows.Scan for
// the given column sqlType, so lib/pq returns a typed Go value (string, int64,
// bool, []string) instead of the raw []byte it hands back when the
// destination is a bare interface{}.
func scanDestination(sqlType string) interface{} {
	switch sqlType {
	case "integer":
		return new(sql.NullInt64)
	case "boolean":
		return new(sql.NullBool)
	case "text[]":
		return new(pq.StringArray)
	default:
		return new(sql.NullString)
	}
}

// scannedValue unwraps a scanDestination pointer into a plain Go value,
// nil for a SQL NULL.
func scannedValue(dest interface{}) interface{} {
	switch v := dest.(type) {
	case *sql.NullString:
		if !v.Valid {
			return nil
		}
		return v.String
	case *sql.NullInt64:
		if !v.Valid {
			return nil
		}
		return int(v.Int64)
	case *sql.NullBool:
		if !v.Valid {
			return nil
		}
		return v.Bool
	case *pq.StringArray:
		return []string(*v)
	default:
		return dest
	}
}

func columnValue(c column, v interface{}) interface{} {
	if c.sqlType == "text[]" {
		switch vv := v.(type) {
		case []string:
			return pq.Array(vv)
		case nil:
			return pq.Array([]string{})
		}
	}
	return v
}

// QueryParams is the pre-filter and ranking configuration for Query.
type QueryParams struct {
	TopK              int
	DocumentList      []string
	RequireAccess     string // "private", "public", or "" for no access filter
	ColumnsToSelect   []string
	DistanceThreshold float64
}

// Query embeds text, pre-filters by document_key membership and/or private
// access, runs a k-NN search ordered by cosine distance, drops hits whose
// distance exceeds DistanceThreshold, applies the rerank hook, and returns up
// to TopK projected rows. Ties in distance break by earlier insertion: the
// SQL orders by inserted_at after distance, and the stable sort keeps that
// order.
func (s *Store) Query(ctx context.Context, text, table string, params QueryParams) ([]Row, error) {
	if err := s.ensureTable(ctx, table); err != nil {
		return nil, helper.NewError("ensure table", err)
	}

	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}
	if len(vectors) == 0 {
		return nil, helper.NewError("embed query", fmt.Errorf("embedding provider returned no vectors"))
	}
	queryVec := pgvector.NewVector(vectors[0])

	cols, ok := tableSchemas[table]
	if !ok {
		return nil, helper.NewError("query", fmt.Errorf("unknown table %q", table))
	}
	selectCols := params.ColumnsToSelect
	if len(selectCols) == 0 {
		selectCols = make([]string, len(cols))
		for i, c := range cols {
			selectCols[i] = c.name
		}
	}

	colTypes := map[string]string{"document_key": "text", "text": "text"}
	for _, c := range cols {
		colTypes[c.name] = c.sqlType
	}

	projected := append([]string{"document_key", "text"}, selectCols...)
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s, vector <=> $1 AS distance FROM %s", quoteIdents(projected), pqIdent(table))

	args := []interface{}{queryVec}
	var where []string
	if len(params.DocumentList) > 0 {
		args = append(args, pq.Array(params.DocumentList))
		where = append(where, fmt.Sprintf("document_key = ANY($%d)", len(args)))
	}
	if params.RequireAccess == "private" || params.RequireAccess == "public" {
		args = append(args, params.RequireAccess == "private")
		where = append(where, fmt.Sprintf("private = $%d", len(args)))
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY distance ASC, inserted_at ASC")

	rows, err := s.db.Instance.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, helper.NewError("knn query", err)
	}
	defer rows.Close()

	var hits []Row
	for rows.Next() {
		dest := make([]interface{}, len(projected)+1)
		for i, name := range projected {
			dest[i] = scanDestination(colTypes[name])
		}
		var distance float64
		dest[len(dest)-1] = &distance
		if err := rows.Scan(dest...); err != nil {
			return nil, helper.NewError("scan row", err)
		}

		if distance > params.DistanceThreshold {
			continue
		}

		row := Row{Distance: distance, Columns: make(map[string]interface{})}
		for i, name := range projected {
			v := scannedValue(dest[i])
			if name == "document_key" {
				row.DocumentKey, _ = v.(string)
			}
			row.Columns[name] = v
		}
		hits = append(hits, row)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })

	hits = s.rerank.Rerank(ctx, text, hits)

	if params.TopK > 0 && len(hits) > params.TopK {
		hits = hits[:params.TopK]
	}
	return hits, nil
}

func quoteIdents(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = pqIdent(n)
	}
	return strings.Join(out, ", ")
}
