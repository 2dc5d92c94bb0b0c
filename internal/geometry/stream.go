package geometry

import (
	"errors"
	"fmt"
	"log/slog"
)

// IndexLimit is the number of vertices addressable by a 16-bit index buffer.
const IndexLimit = 1 << 16

var (
	ErrInvalidCapacity = errors.New("geometry: invalid stream capacity")
	ErrUnknownKind     = errors.New("geometry: unknown primitive kind")
)

// DefaultLadder sizes the first units as fractions of the full unit so small
// scenes upload less per frame.
var DefaultLadder = []float64{0.10, 0.25, 0.33, 0.50}

// MaxVertices returns the largest per-unit vertex count for kind that keeps
// every index inside a 16-bit index buffer.
func MaxVertices(kind Kind) int {
	vpp := kind.VerticesPerPrimitive()
	if vpp == 0 {
		return 0
	}
	return (IndexLimit - 1) / vpp * vpp
}

// Unit is one fixed-capacity vertex buffer plus its index table. Vertices at
// or beyond Len are zero after every Commit.
type Unit struct {
	Vertices []Vertex
	Indices  []uint16
	Len      int
	Active   bool
}

func (u *Unit) Cap() int { return len(u.Vertices) }

// Uploader mirrors render units into GPU-visible buffers.
type Uploader interface {
	Upload(index int, u *Unit)
	Hide(index int)
	Release(index int)
}

type Options struct {
	// MaxVerticesPerUnit is rounded down to a whole number of primitives.
	// Zero selects MaxVertices(kind).
	MaxVerticesPerUnit int
	MaxUnits           int
	// Ladder gives the sizes of the first units as fractions of
	// MaxVerticesPerUnit. Nil allocates full-size units only.
	Ladder   []float64
	Uploader Uploader
	Logger   *slog.Logger
}

type StreamStats struct {
	Units      int
	Active     int
	Primitives int
	Vertices   int
	Dropped    int
}

// Stream packs primitives into a chain of render units. Only the unit under
// the cursor accepts writes; the units before it are full.
type Stream struct {
	kind     Kind
	vpp      int
	maxVerts int
	maxUnits int
	ladder   []float64
	uploader Uploader
	logger   *slog.Logger

	units []*Unit

	unit, slot         int
	lastUnit, lastSlot int

	written int
	dropped int
}

func NewStream(kind Kind, opts Options) (*Stream, error) {
	vpp := kind.VerticesPerPrimitive()
	if vpp == 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	maxVerts := opts.MaxVerticesPerUnit
	if maxVerts == 0 {
		maxVerts = MaxVertices(kind)
	}
	maxVerts = maxVerts / vpp * vpp
	if maxVerts < vpp || maxVerts > IndexLimit {
		return nil, fmt.Errorf("%w: %d vertices per unit for %s", ErrInvalidCapacity, opts.MaxVerticesPerUnit, kind)
	}
	if opts.MaxUnits < 1 {
		return nil, fmt.Errorf("%w: max units %d", ErrInvalidCapacity, opts.MaxUnits)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{
		kind:     kind,
		vpp:      vpp,
		maxVerts: maxVerts,
		maxUnits: opts.MaxUnits,
		ladder:   append([]float64(nil), opts.Ladder...),
		uploader: opts.Uploader,
		logger:   logger.With("stream", kind.String()),
	}, nil
}

func (s *Stream) Kind() Kind     { return s.kind }
func (s *Stream) Units() []*Unit { return s.units }

// Reset rewinds the write cursor. The previous cursor is kept by Commit, not
// here, so Reset may be called more than once per tick.
func (s *Stream) Reset() {
	s.unit, s.slot = 0, 0
	s.written, s.dropped = 0, 0
}

// Write copies one primitive into the current unit, moving on to (and if
// needed allocating) the next unit when it is full. Primitives of the wrong
// kind or beyond the unit cap are dropped.
func (s *Stream) Write(p Primitive) {
	if p.Kind != s.kind {
		s.dropped++
		return
	}
	u := s.current()
	if u == nil {
		s.dropped++
		return
	}
	copy(u.Vertices[s.slot:s.slot+s.vpp], p.V[:s.vpp])
	s.slot += s.vpp
	s.written++
}

func (s *Stream) current() *Unit {
	if s.unit < len(s.units) {
		u := s.units[s.unit]
		if s.slot+s.vpp <= u.Cap() {
			return u
		}
		if s.unit+1 >= s.maxUnits {
			return nil
		}
		s.unit++
		s.slot = 0
	}
	if s.unit == len(s.units) {
		if len(s.units) >= s.maxUnits {
			return nil
		}
		s.units = append(s.units, s.allocate(len(s.units)))
		s.logger.Debug("allocated render unit", "index", s.unit, "capacity", s.units[s.unit].Cap())
	}
	return s.units[s.unit]
}

func (s *Stream) allocate(index int) *Unit {
	size := s.maxVerts
	if index < len(s.ladder) {
		size = int(s.ladder[index] * float64(s.maxVerts))
	}
	size = size / s.vpp * s.vpp
	if size < s.vpp {
		size = s.vpp
	}
	if size > s.maxVerts {
		size = s.maxVerts
	}
	return &Unit{
		Vertices: make([]Vertex, size),
		Indices:  Topology(s.kind, size/s.vpp),
	}
}

// Commit finishes the tick: units past the cursor are hidden, any vertex
// written last tick but not this tick is zeroed, and every active unit is
// uploaded.
func (s *Stream) Commit() {
	lastUnit, lastSlot := s.lastUnit, s.lastSlot

	for i, u := range s.units {
		newLen := extent(i, s.unit, s.slot, u.Cap())
		prevLen := extent(i, lastUnit, lastSlot, u.Cap())
		if prevLen > newLen {
			clear(u.Vertices[newLen:prevLen])
		}
		u.Len = newLen

		wasActive := u.Active
		u.Active = newLen > 0
		if s.uploader == nil {
			continue
		}
		if u.Active {
			s.uploader.Upload(i, u)
		} else if wasActive {
			s.uploader.Hide(i)
		}
	}

	s.lastUnit, s.lastSlot = s.unit, s.slot
	if s.dropped > 0 {
		s.logger.Warn("dropped primitives", "count", s.dropped, "units", len(s.units))
	}
}

// extent is how many vertices of unit i a cursor at (unit, slot) covers.
func extent(i, unit, slot, capacity int) int {
	switch {
	case i < unit:
		return capacity
	case i == unit:
		return slot
	}
	return 0
}

// Release destroys every unit. The stream stays usable and allocates again
// on the next Write.
func (s *Stream) Release() {
	if s.uploader != nil {
		for i := range s.units {
			s.uploader.Release(i)
		}
	}
	s.units = nil
	s.unit, s.slot = 0, 0
	s.lastUnit, s.lastSlot = 0, 0
	s.written, s.dropped = 0, 0
}

func (s *Stream) Stats() StreamStats {
	st := StreamStats{Units: len(s.units), Primitives: s.written, Dropped: s.dropped}
	for _, u := range s.units {
		if u.Active {
			st.Active++
			st.Vertices += u.Len
		}
	}
	return st
}
