// Package importer converts documents in other formats into Markdown notes.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/papertrail/internal/doctree"
)

// ErrUnsupported is returned for file types with no parser.
var ErrUnsupported = errors.New("unsupported file type")

// Parser converts raw document bytes into a Tree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Tree, error)
}

// Options tunes parser behavior.
type Options struct {
	// PDFFallbackPdftotext shells out to pdftotext when the Go PDF reader
	// fails.
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions that can be imported.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// IsSupported checks whether filename can be imported.
func IsSupported(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ForFile returns the parser for a filename. Markdown has none: it is
// imported as is.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// Result is a converted document.
type Result struct {
	Title    string
	Markdown string
}

// Convert reads a document and returns it as Markdown. A non-empty title
// overrides the one found in the document.
func Convert(data []byte, filename, title string, opts Options) (Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".md" || ext == ".markdown" {
		t := title
		if t == "" {
			t = BaseTitle(filename)
		}
		return Result{Title: t, Markdown: string(data)}, nil
	}

	p, err := ForFile(filename, opts)
	if err != nil {
		return Result{}, err
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return Result{}, err
	}
	if title != "" {
		tree.Title = title
	}
	if strings.TrimSpace(tree.Text()) == "" {
		return Result{}, fmt.Errorf("no extractable content in %s", filename)
	}
	return Result{Title: tree.Title, Markdown: tree.Markdown()}, nil
}

// BaseTitle is the file name without directory or extension.
func BaseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
