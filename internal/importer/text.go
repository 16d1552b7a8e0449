package importer

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/papertrail/internal/doctree"
)

// TextParser handles plain text files. Blank lines separate paragraphs;
// line breaks inside a paragraph are kept as Markdown hard breaks.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	b := doctree.NewBuilder(BaseTitle(filename))
	var para []string
	flush := func() {
		if len(para) > 0 {
			b.Block(strings.Join(para, "  \n"))
			para = para[:0]
		}
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		para = append(para, escapeLineStart(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return b.Tree(), nil
}

// escapeLineStart keeps plain text from being read as a Markdown heading,
// quote or list item.
func escapeLineStart(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if trimmed == "" {
		return line
	}
	switch trimmed[0] {
	case '#', '>', '-', '+', '*', '=':
		return `\` + trimmed
	}
	return trimmed
}
