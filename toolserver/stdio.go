package toolserver

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// request is one line of the stdio protocol: {"id"?, "tool", "query"}. A
// missing id is assigned one so every response can be correlated even when
// a caller doesn't bother tracking request ids itself.
type request struct {
	ID    string `json:"id,omitempty"`
	Tool  string `json:"tool"`
	Query string `json:"query"`
}

type response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result"`
}

// Serve reads newline-delimited JSON requests from r and writes
// newline-delimited JSON responses to w until r is exhausted or ctx is
// cancelled. Each line is handled independently; one malformed line does
// not stop the loop.
func Serve(ctx context.Context, s *Server, r io.Reader, w io.Writer, log *slog.Logger) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			log.Warn("malformed tool request", "error", err)
			continue
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}

		var result interface{}
		switch req.Tool {
		case "naive_search":
			result = s.NaiveSearch(ctx, req.Query)
		case "hi_search":
			result = s.HiSearch(ctx, req.Query)
		default:
			result = "Error: unknown tool " + req.Tool
		}

		if err := enc.Encode(response{ID: req.ID, Result: result}); err != nil {
			return err
		}
	}
	return scanner.Err()
}
