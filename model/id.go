package model

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

const (
	FilePrefix   = "doc-"
	ChunkPrefix  = "chunk-"
	EntityPrefix = "ent-"
)

// ContentID derives a content-addressed id from canonical text: prefix + hex(md5(text)).
// Leading/trailing whitespace is stripped before hashing so that two loads of the same
// logical content (possibly re-wrapped by an upstream parser) collapse onto one id.
func ContentID(prefix, text string) string {
	canonical := strings.TrimSpace(text)
	sum := md5.Sum([]byte(canonical))
	return prefix + hex.EncodeToString(sum[:])
}
