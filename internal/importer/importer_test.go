package importer

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.txt", "*importer.TextParser"},
		{"a.CSV", "*importer.CSVParser"},
		{"a.htm", "*importer.HTMLParser"},
		{"a.pdf", "*importer.PDFParser"},
		{"a.docx", "*importer.DOCXParser"},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.name, Options{})
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if got := fmt.Sprintf("%T", p); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
	}
	if _, err := ForFile("a.exe", Options{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestIsSupported(t *testing.T) {
	for name, want := range map[string]bool{"a.md": true, "a.DOCX": true, "a.xlsx": false, "noext": false} {
		if got := IsSupported(name); got != want {
			t.Errorf("%s: expected %v, got %v", name, want, got)
		}
	}
}

func TestConvert_MarkdownPassThrough(t *testing.T) {
	res, err := Convert([]byte("# Kept\n\nas is"), "dir/keep.markdown", "", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Title != "keep" || res.Markdown != "# Kept\n\nas is" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestConvert_TitleOverride(t *testing.T) {
	res, err := Convert([]byte("hello"), "raw.txt", "Greeting", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Title != "Greeting" || !strings.HasPrefix(res.Markdown, "# Greeting\n") {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestConvert_EmptyDocumentFails(t *testing.T) {
	if _, err := Convert([]byte("\n\n"), "blank.txt", "", Options{}); err == nil {
		t.Error("expected error for document without text")
	}
}

func TestConvert_InvalidPDF(t *testing.T) {
	if _, err := Convert([]byte("not a pdf"), "broken.pdf", "", Options{}); err == nil {
		t.Error("expected error for invalid pdf")
	}
}

func TestConvert_InvalidDOCX(t *testing.T) {
	if _, err := Convert([]byte("not a zip"), "broken.docx", "", Options{}); err == nil {
		t.Error("expected error for invalid docx")
	}
}
