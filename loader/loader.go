// Package loader dispatches by content type to a concrete document loader,
// each producing a content-addressed model.File ready for the chunker.
package loader

import (
	"context"
	"fmt"

	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/model"
)

// Loader turns a document on disk into a File. Implementations do their own
// I/O; Load must respect ctx cancellation where the underlying call supports it.
type Loader interface {
	Load(ctx context.Context, path string) (*model.File, error)
}

// Registry dispatches a path to the Loader registered for its content type.
type Registry struct {
	loaders map[model.ContentType]Loader
}

// NewRegistry wires the default loader set: raw-text formats read locally,
// HTML goes through readability+markdown, pdf/xlsx are parsed locally, and
// docx/pptx/jpg/png/zip are handed to the conversion service. Legacy OLE2
// doc/ppt containers are sniffed out of the docx/pptx branches and handled
// locally instead of round-tripping to the conversion service.
func NewRegistry(conversion *ConversionClient) *Registry {
	text := &TextLoader{}
	html := &HTMLLoader{}
	pdf := &PDFLoader{}
	xlsx := &XLSXLoader{}
	legacy := &LegacyOLELoader{}

	office := func(ct model.ContentType) Loader {
		return &sniffingLoader{contentType: ct, legacy: legacy, remote: &ConversionLoader{client: conversion, contentType: ct}}
	}

	return &Registry{loaders: map[model.ContentType]Loader{
		model.ContentTypeTXT:  text,
		model.ContentTypeText: text,
		model.ContentTypeCSV:  text,
		model.ContentTypeTSV:  text,
		model.ContentTypeHTML: html,
		model.ContentTypePDF:  pdf,
		model.ContentTypeXLSX: xlsx,
		model.ContentTypeDOCX: office(model.ContentTypeDOCX),
		model.ContentTypePPTX: office(model.ContentTypePPTX),
		model.ContentTypeJPG:  &ConversionLoader{client: conversion, contentType: model.ContentTypeJPG},
		model.ContentTypePNG:  &ConversionLoader{client: conversion, contentType: model.ContentTypePNG},
		model.ContentTypeZIP:  &ConversionLoader{client: conversion, contentType: model.ContentTypeZIP},
	}}
}

// Load dispatches path to the loader registered for contentType. An
// unrecognized content type is an input error, not retried.
func (r *Registry) Load(ctx context.Context, path string, contentType model.ContentType) (*model.File, error) {
	l, ok := r.loaders[contentType]
	if !ok {
		return nil, helper.NewError("loader dispatch", fmt.Errorf("unsupported content type %q", contentType))
	}
	return l.Load(ctx, path)
}
