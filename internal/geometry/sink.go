package geometry

// Sink accepts one tick's primitives of a single kind. Callers Reset once
// per tick, Write any number of primitives and Commit once; they must not
// depend on how the sink stores or submits them.
type Sink interface {
	Kind() Kind
	Reset()
	Write(p Primitive)
	Commit()
}

// Releaser is implemented by sinks that hold buffers worth freeing when their
// feature is switched off.
type Releaser interface {
	Release()
}

// Drawer submits a batch of primitives in immediate mode.
type Drawer interface {
	Draw(kind Kind, prims []Primitive)
}

// Batch is the immediate-mode sink: primitives accumulate in a growable list
// cleared every tick and handed to a Drawer on Commit.
type Batch struct {
	kind    Kind
	prims   []Primitive
	drawer  Drawer
	dropped int
}

func NewBatch(kind Kind, drawer Drawer) *Batch {
	return &Batch{kind: kind, prims: make([]Primitive, 0, 256), drawer: drawer}
}

func (b *Batch) Kind() Kind { return b.kind }

func (b *Batch) Reset() {
	b.prims = b.prims[:0]
	b.dropped = 0
}

func (b *Batch) Write(p Primitive) {
	if p.Kind != b.kind {
		b.dropped++
		return
	}
	b.prims = append(b.prims, p)
}

func (b *Batch) Commit() {
	if b.drawer != nil {
		b.drawer.Draw(b.kind, b.prims)
	}
}

func (b *Batch) Release() {
	b.prims = nil
	b.dropped = 0
}

func (b *Batch) Primitives() []Primitive { return b.prims }
func (b *Batch) Dropped() int            { return b.dropped }
