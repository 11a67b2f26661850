package toolserver

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_DispatchesKnownToolsAndSkipsMalformedLines(t *testing.T) {
	s := New(nil, 10)
	input := strings.NewReader(
		`{"id":"r1","tool":"naive_search","query":""}` + "\n" +
			`not json at all` + "\n" +
			`{"tool":"unknown_tool","query":"x"}` + "\n",
	)
	var out bytes.Buffer

	err := Serve(context.Background(), s, input, &out, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "r1", first.ID)
	assert.Equal(t, emptyQueryError, first.Result)

	var second response
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.NotEmpty(t, second.ID)
	assert.Equal(t, "Error: unknown tool unknown_tool", second.Result)
}
