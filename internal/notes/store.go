// Package notes stores Markdown notes under a root folder on disk.
package notes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound        = errors.New("file not found")
	ErrUnsupportedType = errors.New("only markdown files are supported")
	ErrOutsideRoot     = errors.New("path is outside the notes folder")
	ErrDeleteRoot      = errors.New("cannot delete the notes folder")
)

// TimestampLayout formats the suffix of generated note names.
const TimestampLayout = "20060102_150405"

// FolderBaseName is the name given to new folders, suffixed _1, _2, ...
// when taken.
const FolderBaseName = "NewFolder"

// IsNote reports whether path has a Markdown extension.
func IsNote(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Store reads and writes notes below a root folder. Paths may be given
// relative to the root or absolute; absolute paths must lie inside it.
type Store struct {
	mu   sync.RWMutex
	root string
}

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

// Root returns the current root folder.
func (s *Store) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// SetRoot switches to a new root folder and creates it.
func (s *Store) SetRoot(root string) error {
	s.mu.Lock()
	s.root = filepath.Clean(root)
	s.mu.Unlock()
	return s.EnsureRoot()
}

// EnsureRoot creates the root folder if needed.
func (s *Store) EnsureRoot() error {
	if err := os.MkdirAll(s.Root(), 0o755); err != nil {
		return fmt.Errorf("create notes root: %w", err)
	}
	return nil
}

// Resolve maps p to an absolute path inside the root.
func (s *Store) Resolve(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", ErrNotFound
	}
	root := s.Root()
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, filepath.FromSlash(p))
	}
	p = filepath.Clean(p)
	if !PathEquals(p, root) && !IsInside(p, root) {
		return "", ErrOutsideRoot
	}
	return p, nil
}

// Rel returns p relative to the root with forward slashes, or p itself when
// it is not below the root.
func (s *Store) Rel(p string) string {
	rel, err := filepath.Rel(s.Root(), p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return filepath.ToSlash(rel)
}

// Read returns the contents of a note.
func (s *Store) Read(path string) (string, error) {
	abs, err := s.Resolve(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", abs, err)
	}
	if !IsNote(abs) {
		return "", ErrUnsupportedType
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", abs, err)
	}
	return string(data), nil
}

// Write saves text to path, creating parent folders, and returns the
// absolute path written.
func (s *Store) Write(path, text string) (string, error) {
	abs, err := s.Resolve(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create parent dir: %w", err)
	}
	if err := os.WriteFile(abs, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", abs, err)
	}
	return abs, nil
}

// CreateUnique writes text to a new note named <name>.md in folder,
// using <name>_1.md, <name>_2.md, ... when taken. An existing note is never
// overwritten. folder "" means the root.
func (s *Store) CreateUnique(folder, name, text string) (string, error) {
	dir := s.Root()
	if strings.TrimSpace(folder) != "" {
		abs, err := s.Resolve(folder)
		if err != nil {
			return "", err
		}
		dir = abs
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create parent dir: %w", err)
	}
	for i := 0; ; i++ {
		candidate := filepath.Join(dir, name+".md")
		if i > 0 {
			candidate = filepath.Join(dir, fmt.Sprintf("%s_%d.md", name, i))
		}
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", candidate, err)
		}
		_, werr := f.WriteString(text)
		cerr := f.Close()
		if werr != nil {
			return "", fmt.Errorf("write %s: %w", candidate, werr)
		}
		if cerr != nil {
			return "", fmt.Errorf("close %s: %w", candidate, cerr)
		}
		return candidate, nil
	}
}

// Exists reports whether path names a note or folder inside the root.
func (s *Store) Exists(path string) bool {
	abs, err := s.Resolve(path)
	return err == nil && exists(abs)
}

// Delete removes a note or a folder with everything below it. It returns
// the absolute path removed and whether it was a folder.
func (s *Store) Delete(path string) (abs string, isDir bool, err error) {
	abs, err = s.Resolve(path)
	if err != nil {
		return "", false, err
	}
	if PathEquals(abs, s.Root()) {
		return "", false, ErrDeleteRoot
	}
	info, err := os.Lstat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, ErrNotFound
	}
	if err != nil {
		return "", false, fmt.Errorf("stat %s: %w", abs, err)
	}
	if info.IsDir() {
		err = os.RemoveAll(abs)
	} else {
		err = os.Remove(abs)
	}
	if err != nil {
		return "", false, fmt.Errorf("delete %s: %w", abs, err)
	}
	return abs, info.IsDir(), nil
}

// NewFolder creates NewFolder (or NewFolder_1, NewFolder_2, ...) inside
// parent. A file parent means its folder; "" means the root.
func (s *Store) NewFolder(parent string) (string, error) {
	dir := s.Root()
	if strings.TrimSpace(parent) != "" {
		abs, err := s.Resolve(parent)
		if err != nil {
			return "", err
		}
		dir = abs
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			dir = filepath.Dir(abs)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create parent dir: %w", err)
	}

	candidate := filepath.Join(dir, FolderBaseName)
	for i := 1; exists(candidate); i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d", FolderBaseName, i))
	}
	if err := os.Mkdir(candidate, 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	return candidate, nil
}

// TimestampedPath returns <root>/<prefix>_<yyyyMMdd_HHmmss>.md.
func (s *Store) TimestampedPath(prefix string, t time.Time) string {
	return filepath.Join(s.Root(), fmt.Sprintf("%s_%s.md", prefix, t.Format(TimestampLayout)))
}

// Tree lists the root folder as an explorer tree.
func (s *Store) Tree() ([]*Node, error) {
	return BuildTree(s.Root())
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
