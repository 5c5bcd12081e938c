package render_test

import (
	"strings"
	"testing"

	"medibill/internal/ui/render"
)

func TestRenderKeepsContent(t *testing.T) {
	t.Parallel()
	out := render.New("notty", 80).Render("# Bill\n\n- **WARNING** `gst`: malformed GST number\n")
	for _, want := range []string{"Bill", "WARNING", "malformed GST number"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptyAndFallback(t *testing.T) {
	t.Parallel()
	if got := render.New("", 0).Render("   "); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if got := (render.Renderer{}).Render("# raw"); got != "# raw" {
		t.Fatalf("zero renderer should return markdown verbatim, got %q", got)
	}
}
