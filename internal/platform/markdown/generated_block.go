package markdown

import "strings"

// Block delimits a generated region inside a note that the user may have
// annotated around.
type Block struct {
	Start string
	End   string
}

// Replace swaps the generated region of body for generated, appending a new
// region when body has none. Text outside the region is preserved.
func (b Block) Replace(body, generated string) string {
	region := b.Start + "\n" + strings.TrimRight(generated, "\n") + "\n" + b.End
	start := strings.Index(body, b.Start)
	if start >= 0 {
		if end := strings.Index(body[start:], b.End); end >= 0 {
			end += start + len(b.End)
			return body[:start] + region + body[end:]
		}
	}
	switch {
	case strings.TrimSpace(body) == "":
		return region + "\n"
	case strings.HasSuffix(body, "\n"):
		return body + "\n" + region + "\n"
	default:
		return body + "\n\n" + region + "\n"
	}
}
