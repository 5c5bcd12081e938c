package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxDocumentBytes is the largest bill accepted for upload.
const MaxDocumentBytes = 10 << 20

type DocumentKind string

const (
	KindPDF   DocumentKind = "pdf"
	KindImage DocumentKind = "image"
)

var acceptedExtensions = map[string]DocumentKind{
	".pdf":  KindPDF,
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
}

// Document is a local bill that passed inspection and can be uploaded.
type Document struct {
	Path string
	Name string
	Size int64
	Kind DocumentKind
	// Pages is zero for images.
	Pages int
}

func KindForPath(path string) (DocumentKind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	kind, ok := acceptedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("unsupported file type %q: use PDF, PNG or JPG", ext)
	}
	return kind, nil
}

func ValidateSize(size int64) error {
	switch {
	case size <= 0:
		return fmt.Errorf("file is empty")
	case size > MaxDocumentBytes:
		return fmt.Errorf("file is %.2f MB, the limit is 10 MB", float64(size)/(1<<20))
	default:
		return nil
	}
}
