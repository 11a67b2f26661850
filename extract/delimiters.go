// Package extract drives the LLM through the entity/relation extraction
// protocol of §4.5: gleaning passes over a chunk, delimiter-based record
// parsing, cross-chunk entity dedup/merge, and bounded concurrent fan-out.
package extract

// The three literal delimiters the extraction prompt fixes. The LLM is
// instructed to emit "(field<TUPLE>field<TUPLE>...)<RECORD>...<COMPLETION>".
const (
	TupleDelimiter      = "<|>"
	RecordDelimiter     = "##"
	CompletionDelimiter = "<|COMPLETE|>"
)

// DefaultEntityTypes is the vocabulary offered to the LLM when a caller
// doesn't supply its own.
var DefaultEntityTypes = []string{"PERSON", "ORGANIZATION", "LOCATION", "EVENT", "CONCEPT"}
