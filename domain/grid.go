// Package domain assigns particles to the compute ranks that own the
// mesh regions their interpolation support touches. The decomposition
// is a fixed rectilinear grid of rank slabs described by per-axis edge
// arrays in grid units; periodic images are included so particles near
// the box boundary reach the ranks on the far side.
package domain

import (
	"fmt"
	"sort"
)

// Transform maps a position from simulation units into global grid
// units. The caller supplies the mesh's globally consistent transform;
// local, rank-shifted transforms would break the decomposition.
type Transform func(x [3]float64) [3]float64

// Layout is the migration plan produced by a decomposition: for every
// rank, the indices of the particles (periodic images included, so an
// index may appear under several ranks) whose interpolation support
// overlaps that rank's region. The layout is consumed by the particle
// exchange machinery, which is outside this module.
type Layout struct {
	Indices [][]int
}

// Counts returns the number of particle entries assigned to each rank.
func (l *Layout) Counts() []int {
	counts := make([]int, len(l.Indices))
	for r := range l.Indices {
		counts[r] = len(l.Indices[r])
	}
	return counts
}

// GridDecomposer decomposes particles over a rectilinear rank grid.
type GridDecomposer struct {
	edges  [3][]float64 // edges[d] has nranks_d+1 monotone entries
	period float64      // global mesh size, for periodic images
	shape  [3]int       // ranks per axis
}

// NewGridDecomposer builds a decomposer from per-axis slab edges in
// grid units. Each edge array needs at least two monotonically
// increasing entries spanning [0, period].
func NewGridDecomposer(edges [3][]float64, period float64) (*GridDecomposer, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period must be positive, got %g", period)
	}
	g := &GridDecomposer{edges: edges, period: period}
	for d := 0; d < 3; d++ {
		if len(edges[d]) < 2 {
			return nil, fmt.Errorf("axis %d: need at least 2 edges, got %d", d, len(edges[d]))
		}
		if !sort.Float64sAreSorted(edges[d]) {
			return nil, fmt.Errorf("axis %d: edges must be monotonically increasing", d)
		}
		g.shape[d] = len(edges[d]) - 1
	}
	return g, nil
}

// NumRanks returns the number of ranks the decomposer covers.
func (g *GridDecomposer) NumRanks() int {
	return g.shape[0] * g.shape[1] * g.shape[2]
}

// Decompose produces the migration layout for the given positions. A
// particle lands on every rank whose slab its support interval
// [u-smoothing, u+smoothing] overlaps along all three axes, with
// periodic wrapping at the mesh boundary. Collective: all ranks must
// decompose the same global particle set at the same point.
func (g *GridDecomposer) Decompose(pos [][3]float64, smoothing float64, transform Transform) *Layout {
	layout := &Layout{Indices: make([][]int, g.NumRanks())}

	var hits [3][]int
	for n := range pos {
		u := transform(pos[n])
		for d := 0; d < 3; d++ {
			hits[d] = g.axisRanks(d, u[d]-smoothing, u[d]+smoothing, hits[d][:0])
		}
		for _, i := range hits[0] {
			for _, j := range hits[1] {
				for _, k := range hits[2] {
					r := (i*g.shape[1]+j)*g.shape[2] + k
					layout.Indices[r] = append(layout.Indices[r], n)
				}
			}
		}
	}
	return layout
}

// axisRanks appends the ranks along axis d whose slab overlaps
// [lo, hi], testing the interval and its two periodic images.
func (g *GridDecomposer) axisRanks(d int, lo, hi float64, dst []int) []int {
	edges := g.edges[d]
	for r := 0; r < g.shape[d]; r++ {
		a, b := edges[r], edges[r+1]
		if overlaps(lo, hi, a, b) ||
			overlaps(lo+g.period, hi+g.period, a, b) ||
			overlaps(lo-g.period, hi-g.period, a, b) {
			dst = append(dst, r)
		}
	}
	return dst
}

func overlaps(lo, hi, a, b float64) bool {
	return hi >= a && lo < b
}
