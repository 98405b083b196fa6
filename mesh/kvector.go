package mesh

import (
	"math"

	"github.com/notargets/pmesh/spectral"
)

// buildKVectors constructs the per-axis angular wavenumber arrays for
// a rank's transposed complex slab. Axis d's array has one entry per
// local complex index along d; together the three arrays broadcast
// against the full local complex shape.
//
// For local index i at global offset o the folded integer frequency
// is i+o below the Nyquist fold at Nmesh/2 and (i+o)-Nmesh at or
// above it, scaled by 2π/Nmesh to an angular wavenumber.
func buildKVectors(p *spectral.Partition) [3][]float64 {
	var w [3][]float64
	scale := 2 * math.Pi / float64(p.Nmesh)
	for d := 0; d < spectral.Ndim; d++ {
		w[d] = make([]float64, p.LocalComplexSize[d])
		for i := range w[d] {
			freq := i + p.LocalComplexStart[d]
			if freq >= p.Nmesh/2 {
				freq -= p.Nmesh
			}
			w[d][i] = float64(freq) * scale
		}
	}
	return w
}
