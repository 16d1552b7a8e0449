// Package render converts note Markdown into a self-contained, themed HTML
// document.
package render

import (
	"bytes"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
)

// Preview is a rendered note and the theme it was rendered with.
type Preview struct {
	HTML  string `json:"html"`
	Theme Theme  `json:"theme"`
}

// Renderer renders Markdown under any of its configured themes. It holds no
// per-call state and may be shared.
type Renderer struct {
	configs map[Theme]ThemeConfig
	engines map[Theme]goldmark.Markdown
	log     *slog.Logger
}

// New builds a renderer for the given theme configs. Themes missing from
// configs use DefaultConfigs with empty stylesheets.
func New(log *slog.Logger, configs ...ThemeConfig) *Renderer {
	r := &Renderer{
		configs: make(map[Theme]ThemeConfig),
		engines: make(map[Theme]goldmark.Markdown),
		log:     log,
	}
	for _, cfg := range DefaultConfigs("", "") {
		r.configs[cfg.Theme] = cfg
	}
	for _, cfg := range configs {
		r.configs[cfg.Theme] = cfg
	}
	for theme, cfg := range r.configs {
		r.engines[theme] = newEngine(cfg)
	}
	return r
}

// Config returns the config used for theme.
func (r *Renderer) Config(theme Theme) (ThemeConfig, bool) {
	cfg, ok := r.configs[theme]
	return cfg, ok
}

// Render converts text to a full HTML document. It never fails: text that
// cannot be converted is shown escaped inside <pre>. Unknown themes render
// as Dark.
func (r *Renderer) Render(text string, theme Theme) Preview {
	cfg, ok := r.configs[theme]
	if !ok {
		cfg = r.configs[Dark]
	}

	body := r.body(cfg, text)
	doc, err := wrapDocument(cfg, body)
	if err != nil {
		r.log.Error("wrap preview document", "theme", cfg.Theme, "error", err)
		doc = "<html><body><div class=\"markdown-root\">\n" + body + "</div></body></html>"
	}
	return Preview{HTML: doc, Theme: cfg.Theme}
}

func (r *Renderer) body(cfg ThemeConfig, text string) (out string) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("markdown convert panicked", "theme", cfg.Theme, "panic", fmt.Sprint(p))
			out = fallbackBody(text)
		}
	}()

	var buf bytes.Buffer
	if err := r.engines[cfg.Theme].Convert([]byte(stripFrontMatter(text)), &buf); err != nil {
		r.log.Warn("markdown convert failed", "theme", cfg.Theme, "error", err)
		return fallbackBody(text)
	}

	out = buf.String()
	if cfg.StripStyles {
		out = StripInlineStyles(StripStyleBlocks(out))
	}
	return out
}

func fallbackBody(text string) string {
	return "<pre>" + html.EscapeString(text) + "</pre>\n"
}

// stripFrontMatter drops a leading YAML front matter block. Text whose
// leading block is not valid, non-empty YAML is returned unchanged.
func stripFrontMatter(text string) string {
	if !strings.HasPrefix(text, "---\n") && !strings.HasPrefix(text, "---\r\n") {
		return text
	}
	var meta map[string]any
	body, err := frontmatter.Parse(strings.NewReader(text), &meta)
	if err != nil || len(meta) == 0 {
		return text
	}
	return string(body)
}
