package mesh

import "fmt"

// MeshGeometry fixes the affine maps between simulation units and
// grid-index units. Both transforms are pure elementwise maps of the
// single factor Nmesh/BoxSize; Transform additionally shifts by the
// rank's local real-space start so paint and readout can index the
// local slab directly.
type MeshGeometry struct {
	Nmesh   int
	BoxSize float64

	scale      float64 // Nmesh / BoxSize
	localStart [3]float64
}

// NewMeshGeometry validates and builds the geometry for one rank.
func NewMeshGeometry(boxSize float64, nmesh int, localRealStart [3]int) (MeshGeometry, error) {
	if boxSize <= 0 {
		return MeshGeometry{}, fmt.Errorf("BoxSize must be positive, got %g", boxSize)
	}
	if nmesh < 1 {
		return MeshGeometry{}, fmt.Errorf("Nmesh must be positive, got %d", nmesh)
	}
	g := MeshGeometry{
		Nmesh:   nmesh,
		BoxSize: boxSize,
		scale:   float64(nmesh) / boxSize,
	}
	for d := 0; d < 3; d++ {
		g.localStart[d] = float64(localRealStart[d])
	}
	return g, nil
}

// Transform maps a position from simulation units to local grid
// units, for local interpolation.
func (g *MeshGeometry) Transform(x [3]float64) [3]float64 {
	return [3]float64{
		x[0]*g.scale - g.localStart[0],
		x[1]*g.scale - g.localStart[1],
		x[2]*g.scale - g.localStart[2],
	}
}

// TransformGlobal maps a position from simulation units to global
// grid units, for the domain decomposer, which needs coordinates that
// agree across ranks.
func (g *MeshGeometry) TransformGlobal(x [3]float64) [3]float64 {
	return [3]float64{x[0] * g.scale, x[1] * g.scale, x[2] * g.scale}
}
