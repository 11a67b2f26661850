package loader

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXLoader_Load(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "age"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "alice"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "30"))

	dir := t.TempDir()
	path := filepath.Join(dir, "data.xlsx")
	require.NoError(t, f.SaveAs(path))

	l := &XLSXLoader{}
	file, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, file.PageContent, "Sheet1")
	assert.Contains(t, file.PageContent, "| name | age |")
	assert.Contains(t, file.PageContent, "| alice | 30 |")
}

func TestXLSXLoader_EmptyWorkbookIsAnError(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "empty.xlsx")
	require.NoError(t, f.SaveAs(path))

	l := &XLSXLoader{}
	_, err := l.Load(context.Background(), path)
	assert.Error(t, err)
}
