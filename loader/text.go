package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/model"
)

// TextLoader reads txt/text/csv/tsv files verbatim. These formats need no
// parsing step before chunking.
type TextLoader struct{}

func (l *TextLoader) Load(_ context.Context, path string) (*model.File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("read text file", err)
	}

	content := strings.TrimSpace(string(raw))
	ct := contentTypeForExt(filepath.Ext(path))
	return model.NewFile(content, ct, filepath.Base(path), "file://"+path, false), nil
}

func contentTypeForExt(ext string) model.ContentType {
	switch strings.ToLower(ext) {
	case ".csv":
		return model.ContentTypeCSV
	case ".tsv":
		return model.ContentTypeTSV
	case ".txt":
		return model.ContentTypeTXT
	default:
		return model.ContentTypeText
	}
}
