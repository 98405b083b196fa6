package spectral

import "fmt"

// ProcessMesh is the 2-D grid of ranks a 3-D field is distributed
// over for the parallel transform. The product of the two extents
// must equal the communicator size.
type ProcessMesh struct {
	Np [2]int
}

// SplitSize2D splits size into the most nearly square two-factor
// decomposition, preferring the factor pair closest to sqrt(size).
// For example 64 ranks split as 8x8, 12 as 4x3.
func SplitSize2D(size int) [2]int {
	a := 1
	for d := 1; d*d <= size; d++ {
		if size%d == 0 {
			a = d
		}
	}
	return [2]int{size / a, a}
}

// NewProcessMesh builds a process mesh for a communicator of the given
// size. A nil shape requests the automatic near-square split.
func NewProcessMesh(np *[2]int, size int) (*ProcessMesh, error) {
	if np == nil {
		return &ProcessMesh{Np: SplitSize2D(size)}, nil
	}
	if np[0] < 1 || np[1] < 1 {
		return nil, fmt.Errorf("process mesh extents must be positive, got %v", *np)
	}
	if np[0]*np[1] != size {
		return nil, fmt.Errorf("process mesh %dx%d does not cover communicator size %d",
			np[0], np[1], size)
	}
	return &ProcessMesh{Np: *np}, nil
}

// Size returns the number of ranks the mesh covers.
func (pm *ProcessMesh) Size() int { return pm.Np[0] * pm.Np[1] }
