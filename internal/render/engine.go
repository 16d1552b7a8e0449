package render

import (
	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// newEngine builds a goldmark instance for one theme config. Every theme
// shares the same grammar; only code highlighting differs.
func newEngine(cfg ThemeConfig) goldmark.Markdown {
	exts := []goldmark.Extender{
		extension.GFM,
		extension.Footnote,
		extension.DefinitionList,
		extension.Typographer,
		Mark,
	}
	if cfg.Highlight {
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithCustomStyle(highlightStyle(cfg.HighlightStyle)),
			highlighting.WithFormatOptions(
				chromahtml.TabWidth(4),
			),
		))
	}

	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

// highlightStyle resolves a chroma style by name; unknown names fall back
// to chroma's default style.
func highlightStyle(name string) *chroma.Style {
	if s, ok := styles.Registry[name]; ok {
		return s
	}
	return styles.Fallback
}
