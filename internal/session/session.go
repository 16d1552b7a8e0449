// Package session holds the one open note, its derived outline and preview,
// and the scroll state shared by the editor and preview surfaces.
//
// A Session is not safe for concurrent use. Every method runs on the
// dispatch loop; timers and watchers post into that loop.
package session

import (
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/papertrail/internal/debounce"
	"github.com/dgallion1/papertrail/internal/notes"
	"github.com/dgallion1/papertrail/internal/outline"
	"github.com/dgallion1/papertrail/internal/render"
	"github.com/dgallion1/papertrail/internal/scrollsync"
)

// AppName prefixes the window title.
const AppName = "PaperTrail"

var (
	ErrNothingToSave = errors.New("nothing to save")
	ErrNoHeading     = errors.New("no such heading")
	ErrPathRequired  = errors.New("path is required")
)

// Renderer converts note text into a themed preview.
type Renderer interface {
	Render(text string, theme render.Theme) render.Preview
}

// Document is the open note.
type Document struct {
	Text  string `json:"text"`
	Path  string `json:"path"`
	Dirty bool   `json:"dirty"`
	Mode  Mode   `json:"mode"`
}

// HasFile reports whether the document is backed by a file.
func (d Document) HasFile() bool { return d.Path != "" }

// Options configures a Session.
type Options struct {
	Store    *notes.Store
	Renderer Renderer
	Log      *slog.Logger

	// Template returns the text of a new note.
	Template func() string
	// RootChanged persists a new notes root.
	RootChanged func(root string) error

	// Post runs a func on the dispatch loop. Nil runs it inline.
	Post func(func()) bool
	// Debounce is the preview render delay; non-positive uses the default.
	Debounce time.Duration
	// AfterFunc replaces time.AfterFunc for the render timer.
	AfterFunc debounce.AfterFunc
	// Now replaces time.Now for generated file names.
	Now func() time.Time
}

// Session is the single-document state machine.
type Session struct {
	store       *notes.Store
	renderer    Renderer
	log         *slog.Logger
	template    func() string
	rootChanged func(string) error
	now         func() time.Time

	bus   *Bus
	sched *debounce.Scheduler
	sync  *scrollsync.Synchronizer

	editor      *scrollsync.LineSurface
	previewEdit *scrollsync.Remote
	previewView *scrollsync.Remote

	doc      Document
	headings []outline.Heading
	preview  render.Preview
	version  uint64
	theme    render.Theme
	status   string
	title    string
	selected string
}

// New creates a session with no file open, in view mode, dark theme.
func New(opts Options) *Session {
	s := &Session{
		store:       opts.Store,
		renderer:    opts.Renderer,
		log:         opts.Log,
		template:    opts.Template,
		rootChanged: opts.RootChanged,
		now:         opts.Now,
		bus:         &Bus{Log: opts.Log},
		sync:        scrollsync.New(opts.Log),
		previewEdit: &scrollsync.Remote{},
		previewView: &scrollsync.Remote{},
		headings:    []outline.Heading{},
		theme:       render.Dark,
		status:      "Ready",
	}
	s.editor = scrollsync.NewLineSurface(func() int {
		return len(outline.SplitLines(s.doc.Text))
	})
	if s.now == nil {
		s.now = time.Now
	}
	if s.template == nil {
		s.template = func() string { return "" }
	}

	var schedOpts []debounce.Option
	if opts.Post != nil {
		schedOpts = append(schedOpts, debounce.WithPoster(opts.Post))
	}
	if opts.AfterFunc != nil {
		schedOpts = append(schedOpts, debounce.WithAfterFunc(opts.AfterFunc))
	}
	s.sched = debounce.New(opts.Debounce, s.renderNow, schedOpts...)

	s.sync.Attach(scrollsync.Editor, s.editor)
	s.sync.Attach(scrollsync.PreviewEdit, s.previewEdit)
	s.sync.Attach(scrollsync.PreviewView, s.previewView)

	s.bus.Subscribe(s.onEvent)
	s.preview = s.renderer.Render("", s.theme)
	s.title = s.computeTitle()
	return s
}

// Subscribe registers h for every event after the session's own handlers.
func (s *Session) Subscribe(h Handler) func() { return s.bus.Subscribe(h) }

// Document returns a copy of the open document.
func (s *Session) Document() Document { return s.doc }

// Headings returns the outline of the current text.
func (s *Session) Headings() []outline.Heading { return s.headings }

// Preview returns the latest rendered preview and its version.
func (s *Session) Preview() (render.Preview, uint64) { return s.preview, s.version }

// Theme returns the active theme.
func (s *Session) Theme() render.Theme { return s.theme }

// Status returns the last status message.
func (s *Session) Status() string { return s.status }

// Title returns "PaperTrail - <file|No file>" with " *" when dirty.
func (s *Session) Title() string { return s.title }

// Selected returns the explorer path matching the last opened or saved file.
func (s *Session) Selected() string { return s.selected }

// Ratio returns the shared scroll ratio.
func (s *Session) Ratio() float64 { return s.sync.Ratio() }

// RenderPending reports whether a debounced render is outstanding.
func (s *Session) RenderPending() bool { return s.sched.Pending() }

// Close cancels the pending render.
func (s *Session) Close() { s.sched.Stop() }

// SetText replaces the document text from the editor. Unchanged text is
// ignored.
func (s *Session) SetText(text string) {
	if text == s.doc.Text {
		return
	}
	s.doc.Text = text
	s.doc.Dirty = true
	s.bus.Publish(Event{Kind: TextChanged, Path: s.doc.Path})
	s.updateTitle()
}

// SetMode switches between view and edit mode.
func (s *Session) SetMode(m Mode) {
	if m == s.doc.Mode {
		return
	}
	s.doc.Mode = m
	if m == Edit {
		s.setStatus("Markdown edit mode")
	} else {
		s.setStatus("Markdown view mode")
	}
	s.bus.Publish(Event{Kind: ModeChanged, Mode: &m})
}

// ToggleTheme flips between dark and light and renders immediately.
func (s *Session) ToggleTheme() render.Theme {
	s.theme = s.theme.Toggle()
	s.bus.Publish(Event{Kind: ThemeChanged, Theme: s.theme})
	return s.theme
}

// onEvent is the session's own subscriber: it keeps the outline, preview
// and scroll state in step with document changes.
func (s *Session) onEvent(e Event) {
	switch e.Kind {
	case TextChanged:
		s.refreshOutline()
		s.sched.Trigger()
	case FileOpened:
		s.refreshOutline()
		s.sched.Stop()
		s.renderNow()
		s.sync.SetActive(true)
		s.sync.SetMode(s.doc.Mode == Edit)
		s.sync.Reset(0)
		s.flushScroll()
	case DocumentCleared:
		s.refreshOutline()
		s.sched.Stop()
		s.renderNow()
		s.sync.SetActive(false)
		s.sync.SetMode(false)
		s.sync.Reset(0)
		s.flushScroll()
	case ModeChanged:
		s.sched.Flush()
		s.sync.SetMode(*e.Mode == Edit)
		s.flushScroll()
	case ThemeChanged:
		s.sched.Stop()
		s.renderNow()
	case FileSaved:
		s.sync.SetActive(true)
	}
}

func (s *Session) refreshOutline() {
	s.headings = outline.Extract(s.doc.Text)
	s.bus.Publish(Event{Kind: OutlineChanged, Headings: s.headings})
}

func (s *Session) renderNow() {
	s.preview = s.renderer.Render(s.doc.Text, s.theme)
	s.version++
	s.bus.Publish(Event{Kind: PreviewRendered, Theme: s.preview.Theme, Version: s.version})
}

func (s *Session) setStatus(msg string) {
	s.status = msg
	s.bus.Publish(Event{Kind: StatusChanged, Status: msg})
}

func (s *Session) computeTitle() string {
	name := "No file"
	if s.doc.HasFile() {
		name = filepath.Base(s.doc.Path)
	}
	if s.doc.Dirty {
		return AppName + " - " + name + " *"
	}
	return AppName + " - " + name
}

func (s *Session) updateTitle() {
	if t := s.computeTitle(); t != s.title {
		s.title = t
		s.bus.Publish(Event{Kind: TitleChanged, Title: t})
	}
}

// replaceEditorText tells the host editor to show text.
func (s *Session) replaceEditorText() {
	text := s.doc.Text
	s.bus.Publish(Event{Kind: EditorText, Text: &text, Path: s.doc.Path})
}
