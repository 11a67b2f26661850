package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// entityRecordPattern matches parenthesised content non-greedily: the spec
// fixes this as the entity-record extractor so adjacent records on one line
// don't get swallowed into a single match.
var entityRecordPattern = regexp.MustCompile(`\((.*?)\)`)

// relationRecordPattern is greedy, as the spec requires for relation
// records (a relation's description field may itself contain parentheses).
var relationRecordPattern = regexp.MustCompile(`\((.*)\)`)

// EntityRecord is one parsed "(entity<TUPLE>name<TUPLE>type<TUPLE>desc)" tuple.
type EntityRecord struct {
	Name        string
	Type        string
	Description string
}

// RelationRecord is one parsed
// "(relationship<TUPLE>src<TUPLE>tgt<TUPLE>desc<TUPLE>weight)" tuple.
type RelationRecord struct {
	Source      string
	Target      string
	Description string
	Weight      float64
}

func splitRecords(raw string) []string {
	raw = strings.ReplaceAll(raw, CompletionDelimiter, "")
	parts := strings.Split(raw, RecordDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	return strings.Trim(s, `"`)
}

// ParseEntityRecords extracts every well-formed entity tuple from one
// gleaning pass's raw LLM output. Malformed records -- wrong tag, too few
// fields, empty name or description -- are silently skipped per §7.
func ParseEntityRecords(raw string) []EntityRecord {
	var out []EntityRecord
	for _, rec := range entityRecordPattern.FindAllStringSubmatch(raw, -1) {
		fields := strings.Split(rec[1], TupleDelimiter)
		if len(fields) < 4 {
			continue
		}
		if unquote(fields[0]) != "entity" {
			continue
		}
		name := unquote(fields[1])
		typ := unquote(fields[2])
		desc := unquote(fields[3])
		if name == "" || desc == "" {
			continue
		}
		out = append(out, EntityRecord{Name: name, Type: typ, Description: desc})
	}
	return out
}

// ParseRelationRecords extracts every well-formed relation tuple. A missing
// or unparseable weight defaults to 1.0 rather than dropping the record --
// only a missing source, target, or description is fatal to the record.
func ParseRelationRecords(raw string) []RelationRecord {
	var out []RelationRecord
	for _, rec := range splitRecords(raw) {
		m := relationRecordPattern.FindStringSubmatch(rec)
		if m == nil {
			continue
		}
		fields := strings.Split(m[1], TupleDelimiter)
		if len(fields) < 4 {
			continue
		}
		if unquote(fields[0]) != "relationship" {
			continue
		}
		src := unquote(fields[1])
		tgt := unquote(fields[2])
		desc := unquote(fields[3])
		if src == "" || tgt == "" || desc == "" {
			continue
		}
		weight := 1.0
		if len(fields) >= 5 {
			if w, err := strconv.ParseFloat(unquote(fields[4]), 64); err == nil {
				weight = w
			}
		}
		out = append(out, RelationRecord{Source: src, Target: tgt, Description: desc, Weight: weight})
	}
	return out
}
