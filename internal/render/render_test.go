package render

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func testRenderer() *Renderer {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), DefaultConfigs("/* dark asset */", "/* light asset */")...)
}

// bodyOf returns the content of the markdown-root div.
func bodyOf(t *testing.T, doc string) string {
	t.Helper()
	const open = `<div class="markdown-root">`
	start := strings.Index(doc, open)
	end := strings.LastIndex(doc, "</div>")
	if start < 0 || end < start {
		t.Fatalf("document has no markdown-root: %q", doc)
	}
	return doc[start+len(open) : end]
}

func TestRender_EmptyText(t *testing.T) {
	r := testRenderer()
	for _, theme := range []Theme{Dark, Light} {
		p := r.Render("", theme)
		if p.Theme != theme {
			t.Errorf("expected theme %q, got %q", theme, p.Theme)
		}
		if !strings.HasPrefix(p.HTML, "<!DOCTYPE html>") {
			t.Errorf("%s: expected document shell, got %q", theme, p.HTML)
		}
		if body := strings.TrimSpace(bodyOf(t, p.HTML)); body != "" {
			t.Errorf("%s: expected empty body, got %q", theme, body)
		}
	}
}

func TestRender_Idempotent(t *testing.T) {
	r := testRenderer()
	text := "# Title\n\nSome *text* with `code`.\n\n```go\nfunc main() {}\n```\n"
	for _, theme := range []Theme{Dark, Light} {
		a := r.Render(text, theme)
		b := r.Render(text, theme)
		if a != b {
			t.Errorf("%s: expected identical renders", theme)
		}
	}
}

func TestRender_ThemeSwitchProducesDifferentDocuments(t *testing.T) {
	r := testRenderer()
	text := "# Title\n\nHello"
	light := r.Render(text, Light)
	dark := r.Render(text, Dark)
	if light.HTML == dark.HTML {
		t.Fatal("expected light and dark documents to differ")
	}
	for _, p := range []Preview{light, dark} {
		if !strings.HasPrefix(p.HTML, "<!DOCTYPE html>") || !strings.HasSuffix(strings.TrimSpace(p.HTML), "</html>") {
			t.Errorf("%s: malformed document shell", p.Theme)
		}
	}
	if !strings.Contains(dark.HTML, "/* dark asset */") || strings.Contains(dark.HTML, "/* light asset */") {
		t.Error("expected dark document to inline only the dark stylesheet")
	}
	if !strings.Contains(light.HTML, "/* light asset */") {
		t.Error("expected light document to inline the light stylesheet")
	}
}

func TestRender_Extensions(t *testing.T) {
	r := testRenderer()
	text := strings.Join([]string{
		"# Heading",
		"",
		"| a | b |",
		"|---|---|",
		"| 1 | 2 |",
		"",
		"~~gone~~ and ==marked== and \"quoted\"",
		"",
		"- [x] done",
		"- [ ] todo",
		"",
		"Footnote here[^1].",
		"",
		"[^1]: The note.",
		"",
		"https://example.com",
	}, "\n")
	body := bodyOf(t, r.Render(text, Light).HTML)

	for _, want := range []string{
		`<h1 id="heading">Heading</h1>`,
		"<table>",
		"<del>gone</del>",
		"<mark>marked</mark>",
		"&ldquo;quoted&rdquo;",
		`type="checkbox"`,
		"footnotes",
		`<a href="https://example.com">`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q, got:\n%s", want, body)
		}
	}
}

func TestRender_DarkHighlightsCode(t *testing.T) {
	r := testRenderer()
	text := "```go\nfunc main() {}\n```\n"
	dark := bodyOf(t, r.Render(text, Dark).HTML)
	if !strings.Contains(dark, `style="`) {
		t.Errorf("expected inline highlight styles in dark body, got %q", dark)
	}
	light := bodyOf(t, r.Render(text, Light).HTML)
	if strings.Contains(light, `style="`) {
		t.Errorf("expected no inline styles in light body, got %q", light)
	}
	if !strings.Contains(light, "func main() {}") {
		t.Errorf("expected code text in light body, got %q", light)
	}
}

func TestRender_LightStripsEmbeddedStyles(t *testing.T) {
	r := testRenderer()
	text := "<style>p { color: red; }</style>\n\n<p style=\"color:red\" class=\"x\">styled</p>\n"
	light := bodyOf(t, r.Render(text, Light).HTML)
	if strings.Contains(light, "<style") || strings.Contains(light, "color:red") {
		t.Errorf("expected styles stripped from light body, got %q", light)
	}
	if !strings.Contains(light, `<p class="x">styled</p>`) {
		t.Errorf("expected tag kept without style attribute, got %q", light)
	}
	dark := bodyOf(t, r.Render(text, Dark).HTML)
	if !strings.Contains(dark, `style="color:red"`) {
		t.Errorf("expected dark body to keep inline style, got %q", dark)
	}
}

func TestRender_FrontMatterRemoved(t *testing.T) {
	r := testRenderer()
	body := bodyOf(t, r.Render("---\ntitle: Note\ntags: [a]\n---\n# Body\n", Light).HTML)
	if strings.Contains(body, "title: Note") {
		t.Errorf("expected front matter removed, got %q", body)
	}
	if !strings.Contains(body, `<h1 id="body">Body</h1>`) {
		t.Errorf("expected body heading, got %q", body)
	}
}

func TestRender_ThematicBreakIsNotFrontMatter(t *testing.T) {
	r := testRenderer()
	body := bodyOf(t, r.Render("---\n# Kept\n", Light).HTML)
	if !strings.Contains(body, "<hr>") && !strings.Contains(body, "<hr />") {
		t.Errorf("expected thematic break, got %q", body)
	}
	if !strings.Contains(body, "Kept") {
		t.Errorf("expected heading kept, got %q", body)
	}
}

func TestRender_GarbageInputNeverFails(t *testing.T) {
	r := testRenderer()
	inputs := []string{
		"\x00\x01\xff\xfe",
		"[unclosed](",
		"```\nnever closed",
		strings.Repeat(">", 500) + " deep",
		"<div><span>",
		"| a |\n|",
	}
	for _, in := range inputs {
		for _, theme := range []Theme{Dark, Light} {
			p := r.Render(in, theme)
			if !strings.Contains(p.HTML, `<div class="markdown-root">`) {
				t.Errorf("input %q theme %s: expected shell, got %q", in, theme, p.HTML)
			}
		}
	}
}

func TestRender_UnknownThemeFallsBackToDark(t *testing.T) {
	r := testRenderer()
	p := r.Render("x", Theme("sepia"))
	if p.Theme != Dark {
		t.Errorf("expected %q, got %q", Dark, p.Theme)
	}
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Theme
		wantErr bool
	}{
		{"dark", Dark, false},
		{" Light ", Light, false},
		{"DARK", Dark, false},
		{"sepia", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTheme(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: unexpected error state: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.in, tt.want, got)
		}
	}
	if Dark.Toggle() != Light || Light.Toggle() != Dark {
		t.Error("expected Toggle to swap themes")
	}
}

func TestLoadStylesheets(t *testing.T) {
	fsys := fstest.MapFS{
		DarkStylesheet: {Data: []byte("body{}")},
	}
	dark, light := LoadStylesheets(fsys)
	if dark != "body{}" {
		t.Errorf("expected dark stylesheet, got %q", dark)
	}
	if light != "" {
		t.Errorf("expected empty light stylesheet, got %q", light)
	}
	dark, light = LoadStylesheets(nil)
	if dark != "" || light != "" {
		t.Error("expected empty stylesheets for nil filesystem")
	}
}

func TestCache_ReusesRenders(t *testing.T) {
	c := NewCache(testRenderer(), time.Minute, 16)
	a := c.Render("# A", Dark)
	b := c.Render("# A", Dark)
	if a != b {
		t.Error("expected cached preview")
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 cached entry, got %d", c.Len())
	}
	l := c.Render("# A", Light)
	if l.Theme != Light {
		t.Errorf("expected light preview, got %q", l.Theme)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 cached entries, got %d", c.Len())
	}
}

func TestCache_Stats(t *testing.T) {
	c := NewCache(testRenderer(), time.Minute, 1)
	c.Render("# A", Dark)
	c.Render("# A", Dark)
	c.Render("# B", Dark)

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 2 {
		t.Errorf("expected 1 hit and 2 misses, got %d and %d", s.Hits, s.Misses)
	}
	if s.Renders.Count != 2 {
		t.Errorf("expected 2 timed renders, got %d", s.Renders.Count)
	}
	if s.Entries != 1 || s.Evictions != 1 {
		t.Errorf("expected capacity eviction to leave 1 entry, got %d entries and %d evictions", s.Entries, s.Evictions)
	}
}
