package geometry_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/plexus/internal/geometry"
)

var _ = Describe("Primitive", func() {
	It("offsets a thick line perpendicular to its direction", func() {
		p := geometry.ThickLine(0, 0, 10, 0, 2, white, white)
		Expect(p.Vertices()).To(HaveLen(4))

		ys := []float32{}
		for _, v := range p.Vertices() {
			ys = append(ys, v.Y)
		}
		Expect(ys).To(Equal([]float32{1, -1, -1, 1}))
		Expect(p.V[2].X).To(BeNumerically("==", 10))
	})

	It("keeps a zero-length thick line finite", func() {
		p := geometry.ThickLine(3, 3, 3, 3, 2, white, white)
		for _, v := range p.Vertices() {
			Expect(v.X).To(BeNumerically("~", 3, 1e-6))
			Expect(v.Y).To(Or(BeNumerically("~", 2, 1e-6), BeNumerically("~", 4, 1e-6)))
		}
	})

	DescribeTable("vertex and index counts",
		func(kind geometry.Kind, verts, indices int) {
			Expect(kind.VerticesPerPrimitive()).To(Equal(verts))
			Expect(kind.IndicesPerPrimitive()).To(Equal(indices))
			Expect(geometry.Topology(kind, 3)).To(HaveLen(3 * indices))
		},
		Entry("line", geometry.KindLine, 2, 2),
		Entry("thick line", geometry.KindThickLine, 4, 6),
		Entry("triangle", geometry.KindTriangle, 3, 3),
		Entry("quad", geometry.KindQuad, 4, 6),
	)
})
