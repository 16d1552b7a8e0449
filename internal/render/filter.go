package render

import "regexp"

var (
	styleBlockRe = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)

	// One style attribute per tag; the rest of the tag is kept as-is.
	inlineStyleRe = regexp.MustCompile(`(?i)<([a-z][a-z0-9:-]*)\b([^>]*?)\sstyle\s*=\s*(?:"[^"]*"|'[^']*')([^>]*)>`)
)

// StripStyleBlocks removes embedded <style>...</style> blocks.
func StripStyleBlocks(body string) string {
	return styleBlockRe.ReplaceAllString(body, "")
}

// StripInlineStyles removes the style attribute from every tag that has one.
func StripInlineStyles(body string) string {
	return inlineStyleRe.ReplaceAllString(body, "<$1$2$3>")
}
