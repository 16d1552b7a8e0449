package notes

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestBuildTree_Ordering(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "zeta.md"), "")
	writeFile(t, filepath.Join(root, "Alpha.markdown"), "")
	writeFile(t, filepath.Join(root, "skip.txt"), "")
	writeFile(t, filepath.Join(root, "beta", "inner.md"), "")
	writeFile(t, filepath.Join(root, "Archive", "old.MD"), "")

	tree, err := BuildTree(root)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Archive", "beta", "Alpha.markdown", "zeta.md"}
	if diff := cmp.Diff(want, names(tree)); diff != "" {
		t.Errorf("tree order mismatch (-want +got):\n%s", diff)
	}
	if !tree[0].IsCategory || tree[2].IsCategory {
		t.Error("expected folders flagged as categories")
	}
	if diff := cmp.Diff([]string{"old.MD"}, names(tree[0].Children)); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTree_MissingRoot(t *testing.T) {
	tree, err := BuildTree(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if len(tree) != 0 {
		t.Errorf("expected empty tree, got %d nodes", len(tree))
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "a", "b", "c.md")
	writeFile(t, target, "")

	tree, err := BuildTree(root)
	if err != nil {
		t.Fatal(err)
	}
	n := Find(tree, target)
	if n == nil || n.Name != "c.md" {
		t.Fatalf("expected to find c.md, got %+v", n)
	}
	if Find(tree, filepath.Join(root, "none.md")) != nil {
		t.Error("expected nil for unknown path")
	}
}

func TestPathEquals(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"/n/a.md", "/n/a.md", true},
		{"/n/A.md", "/n/a.md", foldCase},
		{"/n/x/../a.md", "/n/a.md", true},
		{"/n/a.md", "/n/b.md", false},
		{"", "", false},
		{"/n/a.md", " ", false},
	}
	for _, tt := range tests {
		if got := PathEquals(tt.a, tt.b); got != tt.want {
			t.Errorf("PathEquals(%q, %q): expected %v, got %v", tt.a, tt.b, tt.want, got)
		}
	}
}

func TestPathEquals_CaseSensitivity(t *testing.T) {
	defer func(v bool) { foldCase = v }(foldCase)

	foldCase = false
	if PathEquals("/n/A.md", "/n/a.md") || IsInside("/n/DIR/a.md", "/n/dir") {
		t.Error("expected case-sensitive comparison")
	}
	foldCase = true
	if !PathEquals("/n/A.md", "/n/a.md") || !IsInside("/n/DIR/a.md", "/n/dir") {
		t.Error("expected case-insensitive comparison")
	}
}

func TestIsInside(t *testing.T) {
	tests := []struct {
		path, dir string
		want      bool
	}{
		{"/n/dir/a.md", "/n/dir", true},
		{"/n/dir/sub/a.md", "/n/dir/", true},
		{"/n/DIR/a.md", "/n/dir", foldCase},
		{"/n/dir", "/n/dir", false},
		{"/n/dir2/a.md", "/n/dir", false},
		{"/n/a.md", "", false},
	}
	for _, tt := range tests {
		if got := IsInside(tt.path, tt.dir); got != tt.want {
			t.Errorf("IsInside(%q, %q): expected %v, got %v", tt.path, tt.dir, tt.want, got)
		}
	}
}
