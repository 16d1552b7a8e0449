// Package scrollsync keeps the editor and the two preview surfaces showing
// the same place in a note, expressed as a ratio in [0,1].
package scrollsync

import (
	"fmt"
	"math"
)

// SurfaceID names one scrollable view.
type SurfaceID string

const (
	Editor      SurfaceID = "editor"
	PreviewEdit SurfaceID = "preview-edit"
	PreviewView SurfaceID = "preview-view"
)

// Surfaces lists every surface in propagation order.
var Surfaces = []SurfaceID{Editor, PreviewEdit, PreviewView}

// ParseSurfaceID validates a surface name.
func ParseSurfaceID(s string) (SurfaceID, error) {
	for _, id := range Surfaces {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown surface: %q", s)
}

// Tolerance is the offset difference, in pixels, below which a surface is
// considered already in place.
const Tolerance = 0.5

// Geometry is a surface's vertical scroll state, in pixels.
type Geometry struct {
	Offset   float64 `json:"offset"`
	Extent   float64 `json:"extent"`
	Viewport float64 `json:"viewport"`
}

// MaxOffset is the largest reachable offset, or 0 when nothing overflows.
func (g Geometry) MaxOffset() float64 {
	return math.Max(0, g.Extent-g.Viewport)
}

// Ratio is Offset/Extent clamped to [0,1]; 0 when the surface has no extent.
func Ratio(g Geometry) float64 {
	if g.Extent <= 0 {
		return 0
	}
	return clamp(g.Offset/g.Extent, 0, 1)
}

// OffsetFor maps ratio onto g. It reports false when the surface cannot
// scroll (no extent, or content fits in the viewport).
func OffsetFor(g Geometry, ratio float64) (float64, bool) {
	maxY := g.MaxOffset()
	if g.Extent <= 0 || maxY <= 0 {
		return 0, false
	}
	return clamp(clamp(ratio, 0, 1)*g.Extent, 0, maxY), true
}

// EditorGeometry approximates the editor's geometry from its line count,
// since the editor has no pixel extent comparable to the preview's.
// Wrapped lines make this an underestimate.
func EditorGeometry(offset float64, lineCount int, lineHeight, viewport float64) Geometry {
	lh := math.Max(1, lineHeight)
	return Geometry{
		Offset:   offset,
		Extent:   float64(max(lineCount, 0)) * lh,
		Viewport: math.Max(1, viewport),
	}
}

// Surface is one scrollable view.
type Surface interface {
	Geometry() Geometry
	ScrollTo(offset float64)
}

// Remote is a Surface whose geometry is reported by a host UI over the
// network. Offsets set through ScrollTo are queued for the host to apply.
type Remote struct {
	geom    Geometry
	pending *float64
}

// Report records the latest geometry sent by the host.
func (r *Remote) Report(g Geometry) { r.geom = g }

// Geometry implements Surface.
func (r *Remote) Geometry() Geometry { return r.geom }

// ScrollTo implements Surface.
func (r *Remote) ScrollTo(offset float64) {
	r.geom.Offset = offset
	r.pending = &offset
}

// TakePending returns and clears the offset the host has yet to apply.
func (r *Remote) TakePending() (float64, bool) {
	if r.pending == nil {
		return 0, false
	}
	off := *r.pending
	r.pending = nil
	return off, true
}

// LineSurface is a Remote text editor. Its extent is measured from the
// current line count every time the geometry is read, so edits made since
// the host's last report are accounted for.
type LineSurface struct {
	Remote
	lines      func() int
	lineHeight float64
}

// NewLineSurface returns an editor surface that counts lines with lines.
func NewLineSurface(lines func() int) *LineSurface {
	return &LineSurface{lines: lines, lineHeight: 1}
}

// ReportLines records the editor's offset and visible height. A
// non-positive lineHeight keeps the previous one.
func (l *LineSurface) ReportLines(offset, viewport, lineHeight float64) {
	if lineHeight > 0 {
		l.lineHeight = lineHeight
	}
	l.Remote.Report(Geometry{Offset: offset, Viewport: viewport})
}

// Geometry implements Surface. It has no extent until the host has
// reported a viewport.
func (l *LineSurface) Geometry() Geometry {
	if l.geom.Viewport <= 0 {
		return Geometry{Offset: l.geom.Offset}
	}
	n := 0
	if l.lines != nil {
		n = l.lines()
	}
	return EditorGeometry(l.geom.Offset, n, l.lineHeight, l.geom.Viewport)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
