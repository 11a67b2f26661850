package loader

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	readability "github.com/go-shiori/go-readability"

	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/model"
)

// HTMLLoader extracts the main article out of an HTML document with
// readability, falling back to the full document body when extraction
// finds nothing, then converts the result to markdown before chunking.
type HTMLLoader struct{}

func (l *HTMLLoader) Load(_ context.Context, path string) (*model.File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("read html file", err)
	}
	html := string(raw)

	base, _ := url.Parse("file://" + path)

	var articleHTML, title string
	if art, rerr := readability.FromReader(strings.NewReader(html), base); rerr == nil && strings.TrimSpace(art.Content) != "" {
		articleHTML = art.Content
		title = strings.TrimSpace(art.Title)
	}
	if articleHTML == "" {
		articleHTML = html
	}

	md, err := htmltomarkdown.ConvertString(articleHTML, converter.WithDomain(base.String()))
	if err != nil {
		return nil, helper.NewError("html to markdown", err)
	}

	if title != "" && !strings.HasPrefix(strings.TrimSpace(md), "#") {
		md = "# " + title + "\n\n" + md
	}

	content := strings.TrimSpace(md)
	return model.NewFile(content, model.ContentTypeHTML, filepath.Base(path), "file://"+path, false), nil
}
