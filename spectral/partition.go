package spectral

import "fmt"

// Ndim is the spatial dimensionality. Only 3-D meshes are supported.
const Ndim = 3

// Partition describes one rank's share of the global mesh, in both
// layouts the transform moves between. The real extents are in the
// natural (x, y, z) axis order. The complex extents follow the
// transposed-output convention: the complex array's axes are
// (y, z-half, x), where z-half has global length Nmesh/2+1. All
// consumers of complex-space extents must use that order.
//
// A Partition is produced by the FFT engine and is read-only to the
// rest of the core.
type Partition struct {
	Nmesh int

	// Real-space slab owned by this rank.
	LocalRealStart [Ndim]int
	LocalRealSize  [Ndim]int

	// Transposed complex-space slab owned by this rank.
	LocalComplexStart [Ndim]int
	LocalComplexSize  [Ndim]int

	// RealEdges are the global per-axis slab boundaries of the
	// real-space decomposition, in grid units. Axis d has one more
	// edge than it has rank slabs. The domain decomposer consumes
	// them; they are identical on every rank.
	RealEdges [Ndim][]float64
}

// RealLen returns the number of real elements in the local slab.
func (p *Partition) RealLen() int {
	return p.LocalRealSize[0] * p.LocalRealSize[1] * p.LocalRealSize[2]
}

// ComplexLen returns the number of complex elements in the local slab.
func (p *Partition) ComplexLen() int {
	return p.LocalComplexSize[0] * p.LocalComplexSize[1] * p.LocalComplexSize[2]
}

// Validate checks internal consistency of the partition extents.
func (p *Partition) Validate() error {
	if p.Nmesh < 1 {
		return fmt.Errorf("Nmesh must be positive, got %d", p.Nmesh)
	}
	for d := 0; d < Ndim; d++ {
		if p.LocalRealSize[d] < 0 || p.LocalComplexSize[d] < 0 {
			return fmt.Errorf("negative local extent in dimension %d", d)
		}
		if p.LocalRealStart[d]+p.LocalRealSize[d] > p.Nmesh {
			return fmt.Errorf("real slab exceeds mesh in dimension %d: start %d size %d",
				d, p.LocalRealStart[d], p.LocalRealSize[d])
		}
	}
	return nil
}
