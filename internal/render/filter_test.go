package render

import "testing"

func TestStripStyleBlocks(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<style>a{}</style><p>x</p>", "<p>x</p>"},
		{"<STYLE type=\"text/css\">\n.a { }\n</STYLE>y", "y"},
		{"<p>a</p><style>x</style><p>b</p><style>y</style>", "<p>a</p><p>b</p>"},
		{"<p>no styles</p>", "<p>no styles</p>"},
	}
	for _, tt := range tests {
		if got := StripStyleBlocks(tt.in); got != tt.want {
			t.Errorf("StripStyleBlocks(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestStripInlineStyles(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`<pre style="color:#fff">x</pre>`, `<pre>x</pre>`},
		{`<span class="k" style='color:red'>x</span>`, `<span class="k">x</span>`},
		{`<code class="a" STYLE = "b" id="c">`, `<code class="a" id="c">`},
		{`<p>plain</p>`, `<p>plain</p>`},
		{`<div data-style="x">`, `<div data-style="x">`},
	}
	for _, tt := range tests {
		if got := StripInlineStyles(tt.in); got != tt.want {
			t.Errorf("StripInlineStyles(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
