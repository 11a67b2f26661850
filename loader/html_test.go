package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLLoader_ExtractsArticleBody(t *testing.T) {
	html := `<html><head><title>Ignored</title></head><body>
<nav>menu menu menu</nav>
<article><h1>Real Title</h1><p>The actual paragraph content that readability should keep because it is long enough to look like an article body rather than boilerplate navigation text.</p></article>
</body></html>`

	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte(html), 0o644))

	l := &HTMLLoader{}
	file, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, file.PageContent, "actual paragraph content")
}

func TestHTMLLoader_FallsBackToFullBodyWhenNotExtractable(t *testing.T) {
	html := `<html><body><p>short</p></body></html>`

	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.html")
	require.NoError(t, os.WriteFile(path, []byte(html), 0o644))

	l := &HTMLLoader{}
	file, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, file.PageContent, "short")
}
