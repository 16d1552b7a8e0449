package notes

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind classifies a filesystem change below the root.
type ChangeKind int

const (
	Created ChangeKind = iota
	Removed
	Modified
)

func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "created"
	case Removed:
		return "removed"
	default:
		return "modified"
	}
}

// Change is one filesystem change reported by a Watcher.
type Change struct {
	Kind ChangeKind
	Path string
}

// Watcher reports changes to notes and folders below a root, including
// folders created after it started.
type Watcher struct {
	fsw    *fsnotify.Watcher
	log    *slog.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Watch starts watching root and its subfolders. fn is called from the
// watcher goroutine for every relevant change; hidden folders are skipped.
func Watch(ctx context.Context, root string, log *slog.Logger, fn func(Change)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dirs, err := collectDirs(root)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	for _, d := range dirs {
		if err := fsw.Add(d); err != nil {
			log.Warn("cannot watch directory", "dir", d, "error", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{fsw: fsw, log: log, cancel: cancel}
	w.wg.Add(1)
	go w.run(ctx, fn)
	return w, nil
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run(ctx context.Context, fn func(Change)) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if c, ok := w.translate(ev); ok {
				fn(c)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) translate(ev fsnotify.Event) (Change, bool) {
	if hidden(filepath.Base(ev.Name)) {
		return Change{}, false
	}
	switch {
	case ev.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err != nil {
			return Change{}, false
		}
		if info.IsDir() {
			if err := w.fsw.Add(ev.Name); err != nil {
				w.log.Warn("cannot watch new directory", "dir", ev.Name, "error", err)
			}
			return Change{Kind: Created, Path: ev.Name}, true
		}
		if IsNote(ev.Name) {
			return Change{Kind: Created, Path: ev.Name}, true
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		// The entry is gone, so folders and notes cannot be told apart.
		return Change{Kind: Removed, Path: ev.Name}, true
	case ev.Has(fsnotify.Write):
		if IsNote(ev.Name) {
			return Change{Kind: Modified, Path: ev.Name}, true
		}
	}
	return Change{}, false
}

func collectDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) && path != root {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(d.Name()) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
