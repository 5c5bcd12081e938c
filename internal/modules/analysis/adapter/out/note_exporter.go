package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"medibill/internal/modules/analysis/domain"
	"medibill/internal/platform/markdown"
)

var reportBlock = markdown.Block{
	Start: "<!-- medibill:report:start -->",
	End:   "<!-- medibill:report:end -->",
}

// MarkdownNoteExporter writes report notes. Re-exporting over an existing
// note refreshes the frontmatter and the generated region only.
type MarkdownNoteExporter struct{}

func NewMarkdownNoteExporter() *MarkdownNoteExporter {
	return &MarkdownNoteExporter{}
}

func (e *MarkdownNoteExporter) Export(_ context.Context, dir string, note domain.Note) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, note.Slug+".md")

	existing := ""
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		body, splitErr := markdown.Split(string(raw), nil)
		if splitErr != nil {
			return "", fmt.Errorf("read existing note %s: %w", path, splitErr)
		}
		existing = body
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("read existing note %s: %w", path, err)
	}

	content, err := markdown.Render(note.Meta, reportBlock.Replace(existing, note.Body))
	if err != nil {
		return "", err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write note: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("replace note: %w", err)
	}
	return path, nil
}
