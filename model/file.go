package model

// ContentType enumerates the loader-recognized document types.
type ContentType string

const (
	ContentTypePDF  ContentType = "pdf"
	ContentTypeDOCX ContentType = "docx"
	ContentTypePPTX ContentType = "pptx"
	ContentTypeXLSX ContentType = "xlsx"
	ContentTypeJPG  ContentType = "jpg"
	ContentTypePNG  ContentType = "png"
	ContentTypeZIP  ContentType = "zip"
	ContentTypeTXT  ContentType = "txt"
	ContentTypeCSV  ContentType = "csv"
	ContentTypeText ContentType = "text"
	ContentTypeTSV  ContentType = "tsv"
	ContentTypeHTML ContentType = "html"
)

// File is an immutable, content-addressed record produced by a Loader.
type File struct {
	ID          string   `json:"id"`
	PageContent string   `json:"page_content"`
	Metadata    Metadata `json:"metadata"`
}

// NewFile derives the content-addressed id from pageContent and fills the required
// metadata fields (type, filename, uri, private). PageNumber is left to the caller
// via metadata["page_number"] when the source format has pages.
func NewFile(pageContent string, typ ContentType, filename, uri string, private bool) *File {
	meta := Metadata{
		"type":     string(typ),
		"filename": filename,
		"uri":      uri,
		"private":  private,
	}
	return &File{
		ID:          ContentID(FilePrefix, pageContent),
		PageContent: pageContent,
		Metadata:    meta,
	}
}
