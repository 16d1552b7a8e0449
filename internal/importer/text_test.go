package importer

import (
	"strings"
	"testing"
)

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\n\nThird paragraph."
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tree.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", tree.Title)
	}
	if len(tree.Sections) != 1 {
		t.Fatalf("expected 1 untitled section, got %d", len(tree.Sections))
	}
	want := "First paragraph line one.  \nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	if tree.Sections[0].Body != want {
		t.Errorf("expected body %q, got %q", want, tree.Sections[0].Body)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", tree.Title)
	}
	if len(tree.Sections) != 0 {
		t.Errorf("expected 0 sections for empty input, got %d", len(tree.Sections))
	}
}

func TestTextParser_EscapesMarkdownLineStarts(t *testing.T) {
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader("# not a heading\n- not a list\nplain"), "x.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `\# not a heading  ` + "\n" + `\- not a list  ` + "\nplain"
	if tree.Sections[0].Body != want {
		t.Errorf("expected %q, got %q", want, tree.Sections[0].Body)
	}
}

func TestTextParser_WhitespaceOnlyLinesSplit(t *testing.T) {
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader("a\n   \t\nb"), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Sections[0].Body != "a\n\nb" {
		t.Errorf("expected two paragraphs, got %q", tree.Sections[0].Body)
	}
}
