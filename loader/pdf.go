package loader

import (
	"context"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/model"
)

// PDFLoader extracts page text in visual reading order. The library's
// GetPlainText follows content-stream order, which can put a heading after
// the body text it labels, so pages are re-assembled from Content() runs
// grouped into lines by Y proximity and sorted top-to-bottom.
type PDFLoader struct{}

func (l *PDFLoader) Load(_ context.Context, path string) (*model.File, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, helper.NewError("open pdf", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := extractPageTextOrdered(page)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text != "" {
			pages = append(pages, text)
		}
	}

	content := strings.TrimSpace(strings.Join(pages, "\n\n"))
	return model.NewFile(content, model.ContentTypePDF, filepath.Base(path), "file://"+path, false), nil
}

func extractPageTextOrdered(page pdf.Page) (string, error) {
	content := page.Content()
	if len(content.Text) == 0 {
		return page.GetPlainText(nil)
	}

	const lineTolerance = 3.0

	type visualLine struct {
		y   float64
		buf strings.Builder
	}

	var lines []*visualLine
	var cur *visualLine
	for _, t := range content.Text {
		if cur == nil || math.Abs(t.Y-cur.y) > lineTolerance {
			lines = append(lines, &visualLine{y: t.Y})
			cur = lines[len(lines)-1]
		}
		cur.buf.WriteString(t.S)
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	var parts []string
	for _, line := range lines {
		if text := strings.TrimSpace(line.buf.String()); text != "" {
			parts = append(parts, text)
		}
	}

	result := strings.Join(parts, "\n")
	if strings.TrimSpace(result) == "" {
		return page.GetPlainText(nil)
	}
	return result, nil
}
