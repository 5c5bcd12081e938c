// Package markdown reads and writes markdown notes with YAML frontmatter.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	separator      = "---\n"
	closingDivider = "\n---\n"
)

// Split separates frontmatter from body and decodes it into meta, which may
// be a struct pointer or a map. Content without frontmatter is all body.
func Split(content string, meta any) (string, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, separator) {
		return content, nil
	}
	rest := strings.TrimPrefix(content, separator)
	idx := strings.Index(rest, closingDivider)
	if idx < 0 {
		return "", fmt.Errorf("invalid frontmatter: missing closing separator")
	}
	if meta != nil {
		if err := yaml.Unmarshal([]byte(rest[:idx]), meta); err != nil {
			return "", fmt.Errorf("unmarshal frontmatter: %w", err)
		}
	}
	return rest[idx+len(closingDivider):], nil
}

func Render(meta any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	buf := bytes.Buffer{}
	buf.WriteString(separator)
	buf.Write(raw)
	buf.WriteString(separator)
	if !strings.HasPrefix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString(body)
	return buf.String(), nil
}
