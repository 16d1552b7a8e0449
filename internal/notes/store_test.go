package notes

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "notes"))
	if err := s.EnsureRoot(); err != nil {
		t.Fatal(err)
	}
	return s
}

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIsNote(t *testing.T) {
	tests := map[string]bool{
		"a.md":       true,
		"a.MD":       true,
		"a.markdown": true,
		"a.Markdown": true,
		"a.txt":      false,
		"md":         false,
		"a.md.bak":   false,
	}
	for name, want := range tests {
		if got := IsNote(name); got != want {
			t.Errorf("IsNote(%q): expected %v, got %v", name, want, got)
		}
	}
}

func TestRead(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, filepath.Join(s.Root(), "a.md"), "# A")
	writeFile(t, filepath.Join(s.Root(), "b.txt"), "plain")

	got, err := s.Read("a.md")
	if err != nil {
		t.Fatal(err)
	}
	if got != "# A" {
		t.Errorf("expected %q, got %q", "# A", got)
	}

	if _, err := s.Read("missing.md"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Read("b.txt"); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
	if _, err := s.Read(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for blank path, got %v", err)
	}
	if _, err := s.Read("../outside.md"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("expected ErrOutsideRoot, got %v", err)
	}
}

func TestRead_NotFoundBeforeType(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Read("missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWrite_CreatesParents(t *testing.T) {
	s := newTestStore(t)
	abs, err := s.Write("deep/er/note.md", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if abs != filepath.Join(s.Root(), "deep", "er", "note.md") {
		t.Errorf("unexpected path %q", abs)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("expected hello, got %q", data)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, filepath.Join(s.Root(), "a.md"), "a")
	writeFile(t, filepath.Join(s.Root(), "dir", "sub", "b.md"), "b")

	_, isDir, err := s.Delete("a.md")
	if err != nil || isDir {
		t.Fatalf("expected file delete, got dir=%v err=%v", isDir, err)
	}
	_, isDir, err = s.Delete("dir")
	if err != nil || !isDir {
		t.Fatalf("expected folder delete, got dir=%v err=%v", isDir, err)
	}
	if exists(filepath.Join(s.Root(), "dir")) {
		t.Error("expected folder removed recursively")
	}
	if _, _, err := s.Delete("a.md"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := s.Delete(s.Root()); !errors.Is(err, ErrDeleteRoot) {
		t.Error("expected refusal to delete root")
	}
}

func TestNewFolder_UniqueNames(t *testing.T) {
	s := newTestStore(t)
	var got []string
	for range 3 {
		p, err := s.NewFolder("")
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, filepath.Base(p))
	}
	want := []string{"NewFolder", "NewFolder_1", "NewFolder_2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("folder names mismatch (-want +got):\n%s", diff)
	}
}

func TestNewFolder_FileParentUsesItsFolder(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, filepath.Join(s.Root(), "docs", "a.md"), "a")
	p, err := s.NewFolder("docs/a.md")
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join(s.Root(), "docs", "NewFolder") {
		t.Errorf("unexpected folder %q", p)
	}
}

func TestNewFolder_SkipsExistingFile(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, filepath.Join(s.Root(), "NewFolder"), "not a dir")
	p, err := s.NewFolder("")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(p) != "NewFolder_1" {
		t.Errorf("expected NewFolder_1, got %q", filepath.Base(p))
	}
}

func TestTimestampedPath(t *testing.T) {
	s := NewStore("/notes")
	ts := time.Date(2024, 3, 9, 7, 5, 2, 0, time.Local)
	got := s.TimestampedPath("Note", ts)
	if got != filepath.Join("/notes", "Note_20240309_070502.md") {
		t.Errorf("unexpected path %q", got)
	}
}

func TestRel(t *testing.T) {
	s := NewStore("/notes")
	if got := s.Rel("/notes/a/b.md"); got != "a/b.md" {
		t.Errorf("expected a/b.md, got %q", got)
	}
	if got := s.Rel("/elsewhere/c.md"); got != "/elsewhere/c.md" {
		t.Errorf("expected path unchanged, got %q", got)
	}
}

func TestSetRoot(t *testing.T) {
	s := newTestStore(t)
	next := filepath.Join(t.TempDir(), "other")
	if err := s.SetRoot(next); err != nil {
		t.Fatal(err)
	}
	if !exists(next) {
		t.Error("expected new root created")
	}
	if s.Root() != next {
		t.Errorf("expected root %q, got %q", next, s.Root())
	}
}

func TestCreateUnique(t *testing.T) {
	s := newTestStore(t)
	first, err := s.CreateUnique("imports", "Report", "one")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.CreateUnique("imports", "Report", "two")
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Rel(first); got != "imports/Report.md" {
		t.Errorf("expected imports/Report.md, got %q", got)
	}
	if got := s.Rel(second); got != "imports/Report_1.md" {
		t.Errorf("expected imports/Report_1.md, got %q", got)
	}
	text, err := s.Read(first)
	if err != nil {
		t.Fatal(err)
	}
	if text != "one" {
		t.Errorf("expected first note untouched, got %q", text)
	}
}

func TestCreateUnique_OutsideRoot(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateUnique("../escape", "x", "x"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("expected ErrOutsideRoot, got %v", err)
	}
}

func TestExists(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, filepath.Join(s.Root(), "a.md"), "x")
	if !s.Exists("a.md") {
		t.Error("expected a.md to exist")
	}
	if s.Exists("b.md") {
		t.Error("expected b.md to be missing")
	}
	if s.Exists("../a.md") {
		t.Error("expected path outside root to be reported missing")
	}
}
