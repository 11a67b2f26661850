package loader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"

	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/model"
)

// oleSignature is the magic number at the start of every OLE2 compound file
// container: legacy .doc/.ppt/.xls, as opposed to the zip-based OOXML formats
// that share the .docx/.pptx/.xlsx extensions.
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// isLegacyOLE reports whether path starts with the OLE2 compound-file magic.
func isLegacyOLE(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	header := make([]byte, len(oleSignature))
	if _, err := io.ReadFull(f, header); err != nil {
		return false
	}
	return bytes.Equal(header, oleSignature)
}

// LegacyOLELoader pulls readable text out of legacy binary .doc/.ppt
// containers by walking the OLE2 compound file and scanning its streams for
// runs of printable text, since the binary record formats themselves are out
// of scope. The SummaryInformation stream, when present, supplies a title.
type LegacyOLELoader struct{}

func (l *LegacyOLELoader) Load(_ context.Context, path string) (*model.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, helper.NewError("open legacy document", err)
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return nil, helper.NewError("parse ole2 container", err)
	}

	var title string
	var body strings.Builder

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		raw := make([]byte, entry.Size)
		if _, rerr := entry.Read(raw); rerr != nil && !errors.Is(rerr, io.EOF) {
			continue
		}

		if entry.Name == "\x05SummaryInformation" {
			if t := summaryTitle(raw); t != "" {
				title = t
			}
			continue
		}

		body.WriteString(extractPrintableRuns(raw))
		body.WriteString("\n")
	}

	content := strings.TrimSpace(body.String())
	if title != "" {
		content = "# " + title + "\n\n" + content
	}

	ct := model.ContentTypeDOCX
	if strings.EqualFold(filepath.Ext(path), ".ppt") {
		ct = model.ContentTypePPTX
	}
	return model.NewFile(strings.TrimSpace(content), ct, filepath.Base(path), "file://"+path, false), nil
}

// summaryTitle best-effort-parses the OLE2 SummaryInformation property
// stream for a document title. Any parse failure yields no title rather
// than a hard error: the title is a nice-to-have, not load-bearing.
func summaryTitle(raw []byte) (title string) {
	defer func() {
		if recover() != nil {
			title = ""
		}
	}()

	props, err := msoleps.New(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	for _, p := range props.Property {
		if strings.EqualFold(p.Name(), "Title") {
			if s, ok := p.Value().(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// extractPrintableRuns keeps runs of 4+ consecutive printable runes, the
// simplest reliable way to skim legible text out of a binary record stream
// without implementing the record format itself.
func extractPrintableRuns(raw []byte) string {
	var out strings.Builder
	var run []rune

	flush := func() {
		if len(run) >= 4 {
			out.WriteString(string(run))
			out.WriteString(" ")
		}
		run = run[:0]
	}

	for _, r := range string(raw) {
		if unicode.IsPrint(r) && r < unicode.MaxASCII {
			run = append(run, r)
			continue
		}
		flush()
	}
	flush()

	return out.String()
}
