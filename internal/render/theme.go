package render

import (
	"fmt"
	"io/fs"
	"strings"
)

// Theme is a named visual variant of the preview.
type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

// ParseTheme accepts "dark" or "light" in any case.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Dark:
		return Dark, nil
	case Light:
		return Light, nil
	}
	return "", fmt.Errorf("unknown theme: %q", s)
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// ThemeConfig parameterizes one rendering pipeline.
type ThemeConfig struct {
	Theme Theme

	// Stylesheet is the theme asset CSS inlined into the document shell.
	// Empty means browser defaults plus the built-in chrome.
	Stylesheet string

	// Highlight enables chroma syntax highlighting of fenced code blocks.
	Highlight      bool
	HighlightStyle string

	// StripStyles removes <style> blocks and inline style attributes from
	// the converted body so the stylesheet alone decides presentation.
	StripStyles bool

	// Chrome is the built-in CSS for typography, code, tables and images.
	Chrome string
}

// Stylesheet asset file names, looked up in the styles directory.
const (
	DarkStylesheet  = "atom-dark.css"
	LightStylesheet = "newsprint.css"
)

// DefaultConfigs returns the dark and light pipelines with the given
// stylesheets.
func DefaultConfigs(darkCSS, lightCSS string) []ThemeConfig {
	return []ThemeConfig{
		{
			Theme:          Dark,
			Stylesheet:     darkCSS,
			Highlight:      true,
			HighlightStyle: "monokai",
			Chrome:         darkChrome,
		},
		{
			Theme:       Light,
			Stylesheet:  lightCSS,
			StripStyles: true,
			Chrome:      lightChrome,
		},
	}
}

// LoadStylesheets reads the dark and light theme assets from fsys. A missing
// or unreadable asset yields an empty stylesheet.
func LoadStylesheets(fsys fs.FS) (dark, light string) {
	return readAsset(fsys, DarkStylesheet), readAsset(fsys, LightStylesheet)
}

func readAsset(fsys fs.FS, name string) string {
	if fsys == nil {
		return ""
	}
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return ""
	}
	return string(b)
}
