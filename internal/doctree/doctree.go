// Package doctree is the intermediate form of an imported document: a title
// and nested sections, which render back out as Markdown.
package doctree

import "strings"

// Tree is the root of an imported document.
type Tree struct {
	Title    string     // From document metadata or the file name
	Sections []*Section // Top-level sections
}

// Section is a heading with its body and subsections.
type Section struct {
	Title    string // Empty for untitled body text
	Level    int    // Source heading level, 1..6; 0 when untitled
	Body     string // Markdown body
	Page     int    // Source page, 0 if N/A
	Children []*Section
}

type frame struct {
	sec   *Section
	level int
}

// Builder assembles a Tree from a flat stream of headings and body blocks,
// nesting each heading under the nearest shallower one.
type Builder struct {
	title string
	root  *Section
	stack []frame
	text  []string
}

func NewBuilder(title string) *Builder {
	root := &Section{}
	return &Builder{title: title, root: root, stack: []frame{{sec: root}}}
}

// Heading starts a new section at level (clamped to 1..6).
func (b *Builder) Heading(level int, title string) {
	b.flush()
	level = min(max(level, 1), 6)
	sec := &Section{Title: title, Level: level}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].sec
	parent.Children = append(parent.Children, sec)
	b.stack = append(b.stack, frame{sec: sec, level: level})
}

// Block appends a Markdown block to the current section. Blank blocks are
// dropped.
func (b *Builder) Block(md string) {
	if md = strings.TrimSpace(md); md != "" {
		b.text = append(b.text, md)
	}
}

// Section appends a finished top-level section.
func (b *Builder) Section(s *Section) {
	b.flush()
	b.stack = b.stack[:1]
	b.root.Children = append(b.root.Children, s)
}

func (b *Builder) flush() {
	if len(b.text) == 0 {
		return
	}
	top := b.stack[len(b.stack)-1].sec
	body := strings.Join(b.text, "\n\n")
	if top.Body != "" {
		top.Body += "\n\n" + body
	} else {
		top.Body = body
	}
	b.text = b.text[:0]
}

// Tree returns the assembled document. Text that appeared before the first
// heading becomes an untitled leading section.
func (b *Builder) Tree() *Tree {
	b.flush()
	t := &Tree{Title: b.title}
	if b.root.Body != "" {
		t.Sections = append(t.Sections, &Section{Body: b.root.Body})
	}
	t.Sections = append(t.Sections, b.root.Children...)
	return t
}

// Markdown renders the tree as a note: the title as an H1 and each section
// heading one level deeper than its nesting depth allows, capped at H6.
func (t *Tree) Markdown() string {
	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString("# ")
		sb.WriteString(t.Title)
		sb.WriteString("\n")
	}
	for _, s := range t.Sections {
		writeSection(&sb, s, 2)
	}
	return strings.TrimLeft(sb.String(), "\n")
}

func writeSection(sb *strings.Builder, s *Section, depth int) {
	if s.Title != "" {
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("#", min(depth, 6)))
		sb.WriteString(" ")
		sb.WriteString(s.Title)
		sb.WriteString("\n")
	}
	if s.Body != "" {
		sb.WriteString("\n")
		sb.WriteString(s.Body)
		sb.WriteString("\n")
	}
	next := depth
	if s.Title != "" {
		next = depth + 1
	}
	for _, c := range s.Children {
		writeSection(sb, c, next)
	}
}

// Text returns all section bodies joined by newlines.
func (t *Tree) Text() string {
	var parts []string
	var walk func([]*Section)
	walk = func(secs []*Section) {
		for _, s := range secs {
			if s.Body != "" {
				parts = append(parts, s.Body)
			}
			walk(s.Children)
		}
	}
	walk(t.Sections)
	return strings.Join(parts, "\n")
}
