package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/papertrail/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser converts HTML pages. Headings become sections; paragraphs,
// lists, quotes, code blocks and tables become Markdown blocks.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := BaseTitle(filename)
	if t := findTitle(doc); t != "" {
		title = t
	}
	b := doctree.NewBuilder(title)

	root := findElement(doc, "body")
	if root == nil {
		root = doc
	}
	walkBlocks(b, root)
	return b.Tree(), nil
}

func walkBlocks(b *doctree.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.Block(collapse(c.Data))
			continue
		case html.ElementNode:
		default:
			continue
		}

		if level := headingLevel(c.Data); level > 0 {
			if t := inline(c); t != "" {
				b.Heading(level, t)
			}
			continue
		}

		switch c.Data {
		case "script", "style", "nav", "footer", "header", "noscript", "template":
		case "p":
			b.Block(inline(c))
		case "ul", "ol":
			b.Block(list(c, 0))
		case "blockquote":
			b.Block(quote(c))
		case "pre":
			b.Block("```\n" + strings.TrimRight(rawText(c), "\n") + "\n```")
		case "table":
			b.Block(table(c))
		case "hr":
			b.Block("---")
		case "img":
			b.Block(image(c))
		default:
			walkBlocks(b, c)
		}
	}
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// inline renders n's content as one line of Markdown.
func inline(n *html.Node) string {
	var sb strings.Builder
	writeInline(&sb, n)
	return strings.TrimSpace(collapse(sb.String()))
}

func writeInline(sb *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
			continue
		case html.ElementNode:
		default:
			continue
		}
		switch c.Data {
		case "script", "style":
		case "strong", "b":
			wrap(sb, c, "**")
		case "em", "i":
			wrap(sb, c, "*")
		case "del", "s", "strike":
			wrap(sb, c, "~~")
		case "mark":
			wrap(sb, c, "==")
		case "code":
			sb.WriteString("`" + rawText(c) + "`")
		case "a":
			text := inline(c)
			if href := attr(c, "href"); href != "" && text != "" {
				sb.WriteString("[" + text + "](" + href + ")")
			} else {
				sb.WriteString(text)
			}
		case "img":
			sb.WriteString(image(c))
		case "br":
			sb.WriteString(" ")
		case "ul", "ol":
			// Nested lists are rendered by list.
		default:
			writeInline(sb, c)
		}
	}
}

func wrap(sb *strings.Builder, n *html.Node, marker string) {
	if t := inline(n); t != "" {
		sb.WriteString(marker + t + marker)
	}
}

func list(n *html.Node, depth int) string {
	var lines []string
	i := 1
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		marker := "-"
		if n.Data == "ol" {
			marker = strconv.Itoa(i) + "."
			i++
		}
		indent := strings.Repeat("  ", depth)
		lines = append(lines, indent+marker+" "+inline(li))
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				if sub := list(c, depth+1); sub != "" {
					lines = append(lines, sub)
				}
			}
		}
	}
	return strings.Join(lines, "\n")
}

func quote(n *html.Node) string {
	sub := doctree.NewBuilder("")
	walkBlocks(sub, n)
	body := strings.TrimSpace(sub.Tree().Markdown())
	if body == "" {
		return ""
	}
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + l
		}
	}
	return strings.Join(lines, "\n")
}

func table(n *html.Node) string {
	var rows [][]string
	var header []string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data != "tr" {
				visit(c)
				continue
			}
			var cells []string
			isHeader := false
			for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
					cells = append(cells, inline(cell))
					isHeader = isHeader || cell.Data == "th"
				}
			}
			if isHeader && header == nil && len(rows) == 0 {
				header = cells
			} else {
				rows = append(rows, cells)
			}
		}
	}
	visit(n)

	if header == nil {
		if len(rows) == 0 {
			return ""
		}
		header, rows = rows[0], rows[1:]
	}
	return markdownTable(header, rows)
}

func image(n *html.Node) string {
	src := attr(n, "src")
	if src == "" {
		return ""
	}
	return "![" + attr(n, "alt") + "](" + src + ")"
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func findTitle(n *html.Node) string {
	if t := findElement(n, "title"); t != nil {
		return collapse(rawText(t))
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
