package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuyuqiaoe/local-hirag/model"
)

func TestRegistry_DispatchesByContentType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("dispatch me"), 0o644))

	reg := NewRegistry(NewConversionClient("http://unused.invalid"))
	file, err := reg.Load(context.Background(), path, model.ContentTypeTXT)
	require.NoError(t, err)
	assert.Equal(t, "dispatch me", file.PageContent)
}

func TestRegistry_UnsupportedContentTypeIsAnError(t *testing.T) {
	reg := NewRegistry(NewConversionClient("http://unused.invalid"))
	_, err := reg.Load(context.Background(), "/irrelevant", model.ContentType("fax"))
	assert.Error(t, err)
}

func TestIsLegacyOLE(t *testing.T) {
	dir := t.TempDir()

	olePath := filepath.Join(dir, "legacy.doc")
	require.NoError(t, os.WriteFile(olePath, append(append([]byte{}, oleSignature...), []byte("rest")...), 0o644))
	assert.True(t, isLegacyOLE(olePath))

	zipPath := filepath.Join(dir, "modern.docx")
	require.NoError(t, os.WriteFile(zipPath, []byte("PK\x03\x04rest"), 0o644))
	assert.False(t, isLegacyOLE(zipPath))
}
