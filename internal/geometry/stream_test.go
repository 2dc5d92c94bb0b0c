package geometry_test

import (
	"image/color"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/plexus/internal/geometry"
)

type recordingUploader struct {
	uploads  map[int]int
	hidden   map[int]int
	released []int
}

func newRecordingUploader() *recordingUploader {
	return &recordingUploader{uploads: map[int]int{}, hidden: map[int]int{}}
}

func (r *recordingUploader) Upload(i int, u *geometry.Unit) { r.uploads[i]++ }
func (r *recordingUploader) Hide(i int)                     { r.hidden[i]++ }
func (r *recordingUploader) Release(i int)                  { r.released = append(r.released, i) }

var white = color.RGBA{255, 255, 255, 255}

func quad(i int) geometry.Primitive {
	return geometry.Quad(float32(i), float32(i), 0.5, 0.5, white)
}

func tri(i int) geometry.Primitive {
	v := geometry.Vertex{X: float32(i), Y: 1, Color: white}
	return geometry.Triangle(v, v, v)
}

func writeTick(s *geometry.Stream, n int, prim func(int) geometry.Primitive) {
	s.Reset()
	for i := 0; i < n; i++ {
		s.Write(prim(i))
	}
	s.Commit()
}

func activeUnits(s *geometry.Stream) []*geometry.Unit {
	var out []*geometry.Unit
	for _, u := range s.Units() {
		if u.Active {
			out = append(out, u)
		}
	}
	return out
}

func expectZeroTail(u *geometry.Unit) {
	for i := u.Len; i < u.Cap(); i++ {
		ExpectWithOffset(1, u.Vertices[i]).To(Equal(geometry.Vertex{}), "vertex %d beyond len %d", i, u.Len)
	}
}

var _ = Describe("Stream", func() {
	Describe("construction", func() {
		It("rejects a unit smaller than one primitive", func() {
			_, err := geometry.NewStream(geometry.KindQuad, geometry.Options{MaxVerticesPerUnit: 3, MaxUnits: 1})
			Expect(err).To(MatchError(geometry.ErrInvalidCapacity))
		})

		It("rejects a zero unit cap", func() {
			_, err := geometry.NewStream(geometry.KindLine, geometry.Options{MaxVerticesPerUnit: 12})
			Expect(err).To(MatchError(geometry.ErrInvalidCapacity))
		})

		It("rejects units past the 16-bit index limit", func() {
			_, err := geometry.NewStream(geometry.KindLine, geometry.Options{MaxVerticesPerUnit: 1 << 17, MaxUnits: 1})
			Expect(err).To(MatchError(geometry.ErrInvalidCapacity))
		})

		It("defaults to the hardware vertex limit", func() {
			s, err := geometry.NewStream(geometry.KindTriangle, geometry.Options{MaxUnits: 1})
			Expect(err).NotTo(HaveOccurred())
			writeTick(s, 1, tri)
			Expect(s.Units()[0].Cap()).To(Equal(65535))
			Expect(geometry.MaxVertices(geometry.KindQuad)).To(Equal(65532))
		})
	})

	Describe("packing", func() {
		var (
			s  *geometry.Stream
			up *recordingUploader
		)

		BeforeEach(func() {
			up = newRecordingUploader()
			var err error
			s, err = geometry.NewStream(geometry.KindQuad, geometry.Options{MaxVerticesPerUnit: 12, MaxUnits: 8, Uploader: up})
			Expect(err).NotTo(HaveOccurred())
		})

		It("splits five quads over two units", func() {
			writeTick(s, 5, quad)

			active := activeUnits(s)
			Expect(active).To(HaveLen(2))
			Expect(active[0].Len).To(Equal(12))
			Expect(active[1].Len).To(Equal(8))
			q := quad(3)
			Expect(active[1].Vertices[0:4]).To(Equal(q.V[:]))
			expectZeroTail(active[1])
			Expect(up.uploads).To(Equal(map[int]int{0: 1, 1: 1}))
		})

		It("builds the topology table once per unit", func() {
			writeTick(s, 1, quad)
			Expect(s.Units()[0].Indices).To(Equal([]uint16{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7, 8, 9, 10, 8, 10, 11}))
		})

		It("occupies ceil(k*v/M) units with every leading unit full", func() {
			for k := 0; k <= 24; k++ {
				writeTick(s, k, quad)

				want := (k*4 + 11) / 12
				active := activeUnits(s)
				Expect(active).To(HaveLen(want), "k=%d", k)
				for i, u := range active {
					if i < len(active)-1 {
						Expect(u.Len).To(Equal(u.Cap()), "k=%d unit %d", k, i)
					}
					expectZeroTail(u)
				}
				Expect(s.Stats().Primitives).To(Equal(k))
			}
		})

		It("zeroes geometry left over from a larger frame", func() {
			writeTick(s, 7, quad)
			Expect(activeUnits(s)).To(HaveLen(3))

			writeTick(s, 2, quad)
			Expect(activeUnits(s)).To(HaveLen(1))
			for _, u := range s.Units() {
				expectZeroTail(u)
			}
			Expect(up.hidden).To(Equal(map[int]int{1: 1, 2: 1}))

			writeTick(s, 4, quad)
			Expect(activeUnits(s)).To(HaveLen(2))
			Expect(s.Units()[1].Len).To(Equal(4))
			expectZeroTail(s.Units()[1])
		})

		It("zeroes a unit that was full last tick and is partial now", func() {
			writeTick(s, 6, quad)
			writeTick(s, 1, quad)

			u := s.Units()[0]
			Expect(u.Len).To(Equal(4))
			expectZeroTail(u)
			Expect(s.Units()[1].Active).To(BeFalse())
			expectZeroTail(s.Units()[1])
		})

		It("deactivates every unit when nothing is written", func() {
			writeTick(s, 20, quad)
			writeTick(s, 0, quad)

			Expect(activeUnits(s)).To(BeEmpty())
			for _, u := range s.Units() {
				Expect(u.Len).To(BeZero())
				expectZeroTail(u)
			}
			Expect(s.Stats().Active).To(BeZero())
		})

		It("drops primitives of the wrong kind", func() {
			s.Reset()
			s.Write(geometry.Line(0, 0, 1, 1, white, white))
			s.Commit()
			Expect(s.Stats().Dropped).To(Equal(1))
			Expect(s.Units()).To(BeEmpty())
		})

		It("releases every unit", func() {
			writeTick(s, 9, quad)
			s.Release()

			Expect(s.Units()).To(BeEmpty())
			Expect(up.released).To(Equal([]int{0, 1, 2}))

			writeTick(s, 1, quad)
			Expect(activeUnits(s)).To(HaveLen(1))
		})
	})

	Describe("unit cap", func() {
		It("drops the excess instead of growing past MaxUnits", func() {
			s, err := geometry.NewStream(geometry.KindQuad, geometry.Options{MaxVerticesPerUnit: 12, MaxUnits: 2})
			Expect(err).NotTo(HaveOccurred())

			writeTick(s, 10, quad)

			st := s.Stats()
			Expect(st.Units).To(Equal(2))
			Expect(st.Primitives).To(Equal(6))
			Expect(st.Dropped).To(Equal(4))
			Expect(st.Vertices).To(Equal(24))
		})

		It("forgets the last tick's counts on release", func() {
			s, err := geometry.NewStream(geometry.KindQuad, geometry.Options{MaxVerticesPerUnit: 12, MaxUnits: 2})
			Expect(err).NotTo(HaveOccurred())

			writeTick(s, 10, quad)
			s.Release()

			Expect(s.Stats()).To(Equal(geometry.StreamStats{}))
		})
	})

	Describe("ladder", func() {
		It("grows through the ladder before full-size units", func() {
			s, err := geometry.NewStream(geometry.KindQuad, geometry.Options{
				MaxVerticesPerUnit: 100,
				MaxUnits:           10,
				Ladder:             geometry.DefaultLadder,
			})
			Expect(err).NotTo(HaveOccurred())

			writeTick(s, 40, quad)

			caps := []int{}
			for _, u := range s.Units() {
				caps = append(caps, u.Cap())
			}
			Expect(caps).To(Equal([]int{8, 24, 32, 48, 100}))
			Expect(s.Units()[4].Len).To(Equal(160 - 8 - 24 - 32 - 48))
		})

		It("uses the fewest leading units whose capacity covers the frame", func() {
			s, err := geometry.NewStream(geometry.KindQuad, geometry.Options{
				MaxVerticesPerUnit: 100,
				MaxUnits:           10,
				Ladder:             geometry.DefaultLadder,
			})
			Expect(err).NotTo(HaveOccurred())

			writeTick(s, 10, quad)
			Expect(activeUnits(s)).To(HaveLen(3))
			Expect(s.Units()[2].Len).To(Equal(8))
		})
	})
})

var _ = Describe("Batch", func() {
	It("hands the tick's primitives to the drawer and clears on reset", func() {
		d := &recordingDrawer{}
		b := geometry.NewBatch(geometry.KindLine, d)

		b.Reset()
		b.Write(geometry.Line(0, 0, 1, 1, white, white))
		b.Write(geometry.Line(1, 1, 2, 2, white, white))
		b.Write(quad(0))
		b.Commit()

		Expect(d.calls).To(Equal(1))
		Expect(d.last).To(HaveLen(2))
		Expect(b.Dropped()).To(Equal(1))

		b.Reset()
		b.Commit()
		Expect(d.calls).To(Equal(2))
		Expect(d.last).To(BeEmpty())
	})

	It("forgets dropped primitives on release", func() {
		b := geometry.NewBatch(geometry.KindLine, nil)
		b.Reset()
		b.Write(quad(0))
		b.Commit()
		Expect(b.Dropped()).To(Equal(1))

		b.Release()
		Expect(b.Dropped()).To(BeZero())
		Expect(b.Primitives()).To(BeEmpty())
	})
})

type recordingDrawer struct {
	calls int
	last  []geometry.Primitive
}

func (r *recordingDrawer) Draw(kind geometry.Kind, prims []geometry.Primitive) {
	r.calls++
	r.last = append([]geometry.Primitive(nil), prims...)
}
