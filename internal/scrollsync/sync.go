package scrollsync

import (
	"log/slog"
	"math"
)

// State is a surface's position in the propagation state machine.
type State int

const (
	// Idle surfaces treat scroll events as user input.
	Idle State = iota
	// Propagating surfaces were just moved by the synchronizer; the scroll
	// event that echoes that move is absorbed.
	Propagating
)

func (s State) String() string {
	if s == Propagating {
		return "propagating"
	}
	return "idle"
}

// Move is one offset applied to a surface.
type Move struct {
	Surface SurfaceID `json:"surface"`
	Offset  float64   `json:"offset"`
}

type surfaceState struct {
	surface  Surface
	state    State
	expected float64 // offset we pushed while Propagating
	jump     *float64
}

// Synchronizer holds the shared scroll ratio and pushes it between surfaces.
// It is not safe for concurrent use; callers run it on one goroutine.
type Synchronizer struct {
	surfaces map[SurfaceID]*surfaceState
	ratio    float64
	editMode bool
	active   bool
	log      *slog.Logger
}

// New returns a synchronizer in view mode with no file open.
func New(log *slog.Logger) *Synchronizer {
	return &Synchronizer{
		surfaces: make(map[SurfaceID]*surfaceState),
		log:      log,
	}
}

// Attach registers s under id, replacing any previous surface.
func (s *Synchronizer) Attach(id SurfaceID, surface Surface) {
	s.surfaces[id] = &surfaceState{surface: surface}
}

// Ratio returns the last known ratio.
func (s *Synchronizer) Ratio() float64 { return s.ratio }

// State returns the propagation state of id.
func (s *Synchronizer) State(id SurfaceID) State {
	if st, ok := s.surfaces[id]; ok {
		return st.state
	}
	return Idle
}

// Visible reports whether id is shown in the current mode.
func (s *Synchronizer) Visible(id SurfaceID) bool {
	if id == PreviewView {
		return !s.editMode
	}
	return s.editMode
}

// SetActive enables synchronization while a file is open.
func (s *Synchronizer) SetActive(active bool) { s.active = active }

// SetMode switches between edit and view mode and re-applies the shared
// ratio, since hidden surfaces may have missed scroll events.
func (s *Synchronizer) SetMode(edit bool) []Move {
	s.editMode = edit
	return s.Reapply()
}

// Reset sets the shared ratio for a newly opened document and applies it.
func (s *Synchronizer) Reset(ratio float64) []Move {
	s.ratio = clamp(ratio, 0, 1)
	for _, st := range s.surfaces {
		st.jump = nil
	}
	return s.Reapply()
}

// Reapply pushes the shared ratio to both previews, and to the editor in
// edit mode.
func (s *Synchronizer) Reapply() []Move {
	if !s.active {
		return nil
	}
	var moves []Move
	for _, id := range Surfaces {
		if id == Editor && !s.editMode {
			continue
		}
		if m, ok, _ := s.push(id, s.ratio); ok {
			moves = append(moves, m)
		}
	}
	return moves
}

// Scrolled handles a scroll event from id. The event is ignored when no file
// is open or id is hidden, and absorbed when it echoes our own push.
// Otherwise id becomes the source: its ratio is stored and pushed to the
// other surfaces.
func (s *Synchronizer) Scrolled(id SurfaceID) []Move {
	st, ok := s.surfaces[id]
	if !ok || !s.active || !s.Visible(id) {
		return nil
	}

	g := st.surface.Geometry()
	if st.state == Propagating {
		st.state = Idle
		if math.Abs(g.Offset-st.expected) <= Tolerance {
			return nil
		}
	}

	s.ratio = Ratio(g)
	for _, other := range s.surfaces {
		other.jump = nil
	}

	var moves []Move
	for _, target := range Surfaces {
		if target == id || (target == Editor && !s.editMode) {
			continue
		}
		if m, ok, _ := s.push(target, s.ratio); ok {
			moves = append(moves, m)
		}
	}
	return moves
}

// JumpTo sets the shared ratio directly (outline navigation) and pushes it
// to every surface. Surfaces that are not laid out yet keep the jump and
// receive it from Ready.
func (s *Synchronizer) JumpTo(ratio float64) []Move {
	s.ratio = clamp(ratio, 0, 1)

	var moves []Move
	for _, id := range Surfaces {
		if id == Editor && !s.editMode {
			continue
		}
		m, moved, applicable := s.push(id, s.ratio)
		if moved {
			moves = append(moves, m)
		}
		if st, ok := s.surfaces[id]; ok {
			if applicable {
				st.jump = nil
			} else {
				r := s.ratio
				st.jump = &r
			}
		}
	}
	return moves
}

// Ready handles a surface finishing layout. A pending jump for id is applied
// first; otherwise the shared ratio is.
func (s *Synchronizer) Ready(id SurfaceID) []Move {
	st, ok := s.surfaces[id]
	if !ok || !s.active {
		return nil
	}
	ratio := s.ratio
	if st.jump != nil {
		ratio = *st.jump
	}
	m, moved, applicable := s.push(id, ratio)
	if applicable {
		st.jump = nil
	}
	if !moved {
		return nil
	}
	return []Move{m}
}

// push moves id to ratio. moved is false when the surface is already within
// Tolerance; applicable is false when the surface cannot scroll at all.
func (s *Synchronizer) push(id SurfaceID, ratio float64) (m Move, moved, applicable bool) {
	st, ok := s.surfaces[id]
	if !ok {
		return Move{}, false, false
	}
	g := st.surface.Geometry()
	target, ok := OffsetFor(g, ratio)
	if !ok {
		s.log.Debug("scroll target not laid out", "surface", id, "extent", g.Extent, "viewport", g.Viewport)
		return Move{}, false, false
	}
	if math.Abs(g.Offset-target) <= Tolerance {
		return Move{}, false, true
	}

	st.state = Propagating
	st.expected = target
	st.surface.ScrollTo(target)
	return Move{Surface: id, Offset: target}, true, true
}
