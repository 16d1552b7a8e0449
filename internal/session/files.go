package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgallion1/papertrail/internal/config"
	"github.com/dgallion1/papertrail/internal/notes"
)

// Open loads a note and shows it in view mode. On failure the status
// explains why and the document is left as it was.
func (s *Session) Open(path string) error {
	text, err := s.store.Read(path)
	if err != nil {
		s.setStatus(openFailure(err))
		return err
	}
	abs, _ := s.store.Resolve(path)

	prevMode := s.doc.Mode
	s.doc = Document{Text: text, Path: abs, Mode: View}
	s.selected = abs

	s.bus.Publish(Event{Kind: FileOpened, Path: abs})
	if prevMode != View {
		m := View
		s.bus.Publish(Event{Kind: ModeChanged, Mode: &m})
	}
	s.replaceEditorText()
	s.updateTitle()
	s.setStatus("Opened: " + filepath.Base(abs))
	s.log.Info("note opened", "path", abs, "bytes", len(text))
	return nil
}

func openFailure(err error) string {
	switch {
	case errors.Is(err, notes.ErrNotFound), errors.Is(err, notes.ErrOutsideRoot):
		return "File not found"
	case errors.Is(err, notes.ErrUnsupportedType):
		return "Only markdown files are supported"
	default:
		return "Open failed: " + err.Error()
	}
}

// Save writes the document to its file, or to a new Note_<timestamp>.md in
// the root when it has none. Blank text is refused.
func (s *Session) Save() error {
	if strings.TrimSpace(s.doc.Text) == "" {
		s.setStatus("Nothing to save")
		return ErrNothingToSave
	}
	if err := s.store.EnsureRoot(); err != nil {
		s.setStatus("Save failed: " + err.Error())
		return err
	}

	path := s.doc.Path
	if path == "" {
		path = s.store.TimestampedPath("Note", s.now())
	}
	return s.writeTo(path)
}

// SaveAs writes the document to path, creating parent folders, and makes
// path the document's file.
func (s *Session) SaveAs(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrPathRequired
	}
	return s.writeTo(path)
}

func (s *Session) writeTo(path string) error {
	abs, err := s.store.Write(path, s.doc.Text)
	if err != nil {
		s.setStatus("Save failed: " + err.Error())
		return err
	}
	s.doc.Path = abs
	s.doc.Dirty = false
	if notes.IsNote(abs) {
		s.selected = abs
	}
	s.bus.Publish(Event{Kind: FileSaved, Path: abs})
	s.bus.Publish(Event{Kind: TreeChanged})
	s.updateTitle()
	s.setStatus("Saved: " + filepath.Base(abs))
	s.log.Info("note saved", "path", abs, "bytes", len(s.doc.Text))
	return nil
}

// NewNote writes the template to Prompt_<timestamp>.md, opens it and
// switches to edit mode.
func (s *Session) NewNote() error {
	if err := s.store.EnsureRoot(); err != nil {
		s.setStatus("Create failed: " + err.Error())
		return err
	}
	path := s.store.TimestampedPath("Prompt", s.now())
	abs, err := s.store.Write(path, s.template())
	if err != nil {
		s.setStatus("Create failed: " + err.Error())
		return err
	}
	s.bus.Publish(Event{Kind: TreeChanged})
	if err := s.Open(abs); err != nil {
		return err
	}
	s.SetMode(Edit)
	s.setStatus("Created markdown: " + filepath.Base(abs))
	return nil
}

// Delete removes a note or folder. When it is, or contains, the open file
// the document is cleared.
func (s *Session) Delete(path string) error {
	abs, isDir, err := s.store.Delete(path)
	if err != nil {
		s.setStatus("Delete failed: " + err.Error())
		return err
	}
	s.clearIfAffected(abs)
	if s.selected != "" && (notes.PathEquals(s.selected, abs) || notes.IsInside(s.selected, abs)) {
		s.selected = ""
	}
	s.bus.Publish(Event{Kind: TreeChanged})

	kind := "file"
	if isDir {
		kind = "folder"
	}
	s.setStatus(fmt.Sprintf("Deleted %s: %s", kind, filepath.Base(abs)))
	s.log.Info("deleted", "path", abs, "folder", isDir)
	return nil
}

// NewFolder creates a uniquely named folder inside parent ("" is the root).
func (s *Session) NewFolder(parent string) (string, error) {
	dir, err := s.store.NewFolder(parent)
	if err != nil {
		s.setStatus("Create folder failed: " + err.Error())
		return "", err
	}
	s.selected = dir
	s.bus.Publish(Event{Kind: TreeChanged})
	s.setStatus("Created folder: " + filepath.Base(dir))
	return dir, nil
}

// SetRoot switches the notes root and persists it.
func (s *Session) SetRoot(root string) error {
	root = config.ExpandPath(root)
	if root == "" {
		return ErrPathRequired
	}
	if err := s.store.SetRoot(root); err != nil {
		s.setStatus("Open folder failed: " + err.Error())
		return err
	}
	if s.rootChanged != nil {
		if err := s.rootChanged(s.store.Root()); err != nil {
			s.log.Warn("persist notes root failed", "root", root, "error", err)
		}
	}
	s.selected = ""
	s.bus.Publish(Event{Kind: TreeChanged})
	s.setStatus("Folder opened: " + s.store.Root())
	return nil
}

// Root returns the notes root folder.
func (s *Session) Root() string {
	return s.store.Root()
}

// Tree lists the notes root.
func (s *Session) Tree() ([]*notes.Node, error) {
	return s.store.Tree()
}

// RefreshTree announces that the explorer should reload.
func (s *Session) RefreshTree() {
	s.bus.Publish(Event{Kind: TreeChanged})
	s.setStatus("Explorer refreshed")
}

// FileRemoved handles a note or folder disappearing outside the session.
// A path that is back on disk (an editor saving by rename) is left open.
func (s *Session) FileRemoved(path string) {
	if !s.store.Exists(path) && s.clearIfAffected(path) {
		s.setStatus("File removed: " + filepath.Base(path))
	}
	s.bus.Publish(Event{Kind: TreeChanged})
}

// FileCreated handles a note or folder appearing outside the session.
func (s *Session) FileCreated(path string) {
	s.bus.Publish(Event{Kind: TreeChanged, Path: path})
}

// FileModified reloads the open note when it changed on disk and has no
// unsaved edits.
func (s *Session) FileModified(path string) {
	if !s.doc.HasFile() || !notes.PathEquals(s.doc.Path, path) || s.doc.Dirty {
		return
	}
	text, err := s.store.Read(s.doc.Path)
	if err != nil || text == s.doc.Text {
		return
	}
	s.doc.Text = text
	s.bus.Publish(Event{Kind: TextChanged, Path: s.doc.Path})
	s.replaceEditorText()
	s.setStatus("Reloaded: " + filepath.Base(s.doc.Path))
}

func (s *Session) clearIfAffected(removed string) bool {
	if !s.doc.HasFile() {
		return false
	}
	if !notes.PathEquals(s.doc.Path, removed) && !notes.IsInside(s.doc.Path, removed) {
		return false
	}

	prevMode := s.doc.Mode
	s.doc = Document{Mode: View}
	s.bus.Publish(Event{Kind: DocumentCleared})
	if prevMode != View {
		m := View
		s.bus.Publish(Event{Kind: ModeChanged, Mode: &m})
	}
	s.replaceEditorText()
	s.updateTitle()
	return true
}
