package session

import (
	"github.com/dgallion1/papertrail/internal/outline"
	"github.com/dgallion1/papertrail/internal/scrollsync"
)

// Report is a surface's scroll geometry as sent by the host. For the editor
// Extent is ignored and derived from the line count and LineHeight.
type Report struct {
	Offset     float64 `json:"offset"`
	Extent     float64 `json:"extent"`
	Viewport   float64 `json:"viewport"`
	LineHeight float64 `json:"line_height,omitempty"`
}

// Scroll records a scroll event from a surface and returns the offsets the
// other surfaces must move to.
func (s *Session) Scroll(id scrollsync.SurfaceID, r Report) []scrollsync.Move {
	s.report(id, r)
	s.sync.Scrolled(id)
	return s.flushScroll()
}

// Ready records that a surface finished layout with geometry r and applies
// any jump that was waiting for it.
func (s *Session) Ready(id scrollsync.SurfaceID, r Report) []scrollsync.Move {
	s.report(id, r)
	s.sync.Ready(id)
	return s.flushScroll()
}

// JumpToHeading scrolls every surface to the heading at index.
func (s *Session) JumpToHeading(index int) ([]scrollsync.Move, error) {
	if index < 0 || index >= len(s.headings) {
		return nil, ErrNoHeading
	}
	s.sync.JumpTo(s.headings[index].ScrollRatio)
	return s.flushScroll(), nil
}

// CurrentHeading returns the index of the heading at or above the shared
// ratio, or -1.
func (s *Session) CurrentHeading() int {
	return outline.Nearest(s.headings, s.sync.Ratio())
}

// Geometry returns the current geometry of a surface. The editor's extent
// follows the text as it is now.
func (s *Session) Geometry(id scrollsync.SurfaceID) scrollsync.Geometry {
	if r := s.remote(id); r != nil {
		return r.Geometry()
	}
	return scrollsync.Geometry{}
}

func (s *Session) report(id scrollsync.SurfaceID, r Report) {
	switch id {
	case scrollsync.Editor:
		s.editor.ReportLines(r.Offset, r.Viewport, r.LineHeight)
	case scrollsync.PreviewEdit:
		s.previewEdit.Report(scrollsync.Geometry{Offset: r.Offset, Extent: r.Extent, Viewport: r.Viewport})
	case scrollsync.PreviewView:
		s.previewView.Report(scrollsync.Geometry{Offset: r.Offset, Extent: r.Extent, Viewport: r.Viewport})
	}
}

// hostSurface is a surface whose moves are handed back to the host.
type hostSurface interface {
	scrollsync.Surface
	TakePending() (float64, bool)
}

func (s *Session) remote(id scrollsync.SurfaceID) hostSurface {
	switch id {
	case scrollsync.Editor:
		return s.editor
	case scrollsync.PreviewEdit:
		return s.previewEdit
	case scrollsync.PreviewView:
		return s.previewView
	}
	return nil
}

// flushScroll collects offsets queued on the host surfaces and announces
// them in one ScrollApplied event.
func (s *Session) flushScroll() []scrollsync.Move {
	var moves []scrollsync.Move
	for _, id := range scrollsync.Surfaces {
		if off, ok := s.remote(id).TakePending(); ok {
			moves = append(moves, scrollsync.Move{Surface: id, Offset: off})
		}
	}
	if len(moves) > 0 {
		s.bus.Publish(Event{Kind: ScrollApplied, Moves: moves})
	}
	return moves
}
