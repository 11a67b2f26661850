package loader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuyuqiaoe/local-hirag/model"
)

func TestConversionLoader_SubmitPollAndFetch(t *testing.T) {
	polls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "job-1"})
	})
	mux.HandleFunc("/api/jobs/job-1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		status := "running"
		if polls >= 2 {
			status = "completed"
		}
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	})
	mux.HandleFunc("/api/jobs/job-1/result", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# converted\n\nbody"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "deck.pptx")
	require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04fake"), 0o644))

	client := NewConversionClient(srv.URL)
	loader := &ConversionLoader{client: client, contentType: model.ContentTypePPTX}

	file, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "# converted\n\nbody", file.PageContent)
	assert.GreaterOrEqual(t, polls, 2)
}

func TestConversionClient_FailedJobIsAnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "job-2"})
	})
	mux.HandleFunc("/api/jobs/job-2", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "failed", "error": "corrupt file"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "deck.pptx")
	require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04fake"), 0o644))

	client := NewConversionClient(srv.URL)
	_, err := client.Submit(context.Background(), path, string(model.ContentTypePPTX))
	require.NoError(t, err)

	_, err = client.PollUntilDone(context.Background(), "job-2")
	assert.ErrorContains(t, err, "corrupt file")
}
