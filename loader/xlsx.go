package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/model"
)

// XLSXLoader renders every sheet's rows as a pipe-delimited table, one
// sheet after another, so downstream chunking sees ordinary text.
type XLSXLoader struct{}

func (l *XLSXLoader) Load(_ context.Context, path string) (*model.File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, helper.NewError("open xlsx", err)
	}
	defer f.Close()

	var sections []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		var body strings.Builder
		body.WriteString("# " + sheet + "\n")
		for _, row := range rows {
			body.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
		sections = append(sections, strings.TrimSpace(body.String()))
	}

	if len(sections) == 0 {
		return nil, helper.NewError("load xlsx", fmt.Errorf("no data found in %s", path))
	}

	content := strings.Join(sections, "\n\n")
	return model.NewFile(content, model.ContentTypeXLSX, filepath.Base(path), "file://"+path, false), nil
}
