// Package proximity enumerates close point pairs and triples over a
// [grid.Grid].
//
// Each occupied cell is combined with itself and with a forward half-stencil
// of at most four neighbours:
//
//	(x-1,y+1) (x,y+1) (x+1,y+1)
//	          (x,y)   (x+1,y)
//
// Every neighbour in the stencil comes after the cell in (row, column)
// order, so each unordered pair or triple of cells is reached from exactly
// one cell and no pair or triple is reported twice. The grid's cell size
// must be at least the distance threshold.
//
// [EmitPairs] and [EmitTriples] work on squared distances only. [Enumerator]
// adds the connection/strong distance parameters and maps distances to an
// intensity in [0, 1]:
//
//	e := proximity.New(proximity.Params{ConnectionDistance: 2, StrongDistance: 0.5})
//	e.Lines(g, func(a, b int, intensity float64) { ... })
package proximity
