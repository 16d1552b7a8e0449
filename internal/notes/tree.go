package notes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Node is one entry of the explorer tree. Categories are folders.
type Node struct {
	Name       string  `json:"name"`
	Path       string  `json:"path"`
	IsCategory bool    `json:"is_category"`
	Children   []*Node `json:"children,omitempty"`
}

// BuildTree walks root: folders first, then notes, each sorted by name
// case-insensitively. Non-note files are skipped. A missing root yields an
// empty tree.
func BuildTree(root string) ([]*Node, error) {
	nodes, err := buildDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return []*Node{}, nil
	}
	return nodes, err
}

func buildDir(dir string) ([]*Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var dirs, files []os.DirEntry
	for _, e := range entries {
		switch {
		case e.IsDir():
			dirs = append(dirs, e)
		case e.Type().IsRegular() && IsNote(e.Name()):
			files = append(files, e)
		}
	}
	sortByName(dirs)
	sortByName(files)

	nodes := make([]*Node, 0, len(dirs)+len(files))
	for _, d := range dirs {
		path := filepath.Join(dir, d.Name())
		children, err := buildDir(path)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", path, err)
		}
		nodes = append(nodes, &Node{Name: d.Name(), Path: path, IsCategory: true, Children: children})
	}
	for _, f := range files {
		nodes = append(nodes, &Node{Name: f.Name(), Path: filepath.Join(dir, f.Name())})
	}
	return nodes, nil
}

func sortByName(entries []os.DirEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := strings.ToLower(entries[i].Name()), strings.ToLower(entries[j].Name())
		if a == b {
			return entries[i].Name() < entries[j].Name()
		}
		return a < b
	})
}

// Find returns the node whose path equals path, searching depth-first.
func Find(nodes []*Node, path string) *Node {
	for _, n := range nodes {
		if PathEquals(n.Path, path) {
			return n
		}
		if found := Find(n.Children, path); found != nil {
			return found
		}
	}
	return nil
}

// foldCase is set on platforms whose default filesystems ignore case.
var foldCase = runtime.GOOS == "windows" || runtime.GOOS == "darwin"

func sameName(a, b string) bool {
	if foldCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// PathEquals compares two paths after cleaning. Case is ignored on Windows
// and macOS. Empty paths are never equal.
func PathEquals(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	return sameName(absClean(a), absClean(b))
}

// IsInside reports whether path lies strictly below dir.
func IsInside(path, dir string) bool {
	if strings.TrimSpace(path) == "" || strings.TrimSpace(dir) == "" {
		return false
	}
	p := absClean(path)
	d := strings.TrimRight(absClean(dir), string(filepath.Separator))
	prefix := d + string(filepath.Separator)
	return len(p) > len(prefix) && sameName(p[:len(prefix)], prefix)
}

func absClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
