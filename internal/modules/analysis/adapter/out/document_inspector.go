package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rsc.io/pdf"

	"medibill/internal/modules/analysis/domain"
	apperrors "medibill/internal/platform/errors"
)

// LocalDocumentInspector validates bills on the local filesystem. PDFs are
// parsed to make sure the backend receives a readable document.
type LocalDocumentInspector struct{}

func NewLocalDocumentInspector() *LocalDocumentInspector {
	return &LocalDocumentInspector{}
}

func (i *LocalDocumentInspector) Inspect(_ context.Context, path string) (domain.Document, error) {
	kind, err := domain.KindForPath(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Document{}, fmt.Errorf("%w: %s does not exist", apperrors.ErrInvalidInput, path)
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("stat document: %w", err)
	}
	if info.IsDir() {
		return domain.Document{}, fmt.Errorf("%w: %s is a directory", apperrors.ErrInvalidInput, path)
	}
	if err := domain.ValidateSize(info.Size()); err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	doc := domain.Document{Path: path, Name: filepath.Base(path), Size: info.Size(), Kind: kind}
	if kind == domain.KindPDF {
		pages, err := countPages(path, info.Size())
		if err != nil {
			return domain.Document{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		doc.Pages = pages
	}
	return doc, nil
}

func countPages(path string, size int64) (pages int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	// rsc.io/pdf panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unreadable pdf: %v", r)
		}
	}()
	doc, err := pdf.NewReader(f, size)
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	pages = doc.NumPage()
	if pages == 0 {
		return 0, fmt.Errorf("pdf has no pages")
	}
	return pages, nil
}
