// Package cic implements the cloud-in-cell interpolation kernel used
// to move particle weights onto a mesh and mesh values back to
// particle positions. Paint and Readout share one weight computation,
// one masking policy and one periodicity convention, which is what
// makes a paint/readout round trip reproduce the kernel's analytic
// weights.
package cic

import "math"

// Transform maps a position from simulation units into (local) grid
// units. It must be a pure affine map.
type Transform func(x [3]float64) [3]float64

// Paint accumulates weight-scaled CIC contributions of the given
// positions into field, which has the given local shape in row-major
// order. Corner indices wrap with the given period (the global mesh
// size); wrapped indices that still fall outside the local shape are
// silently ignored. A nil weights slice paints unit weight per
// particle. Paint is additive: it never clears field.
func Paint[T ~float32 | ~float64](pos [][3]float64, field []T, shape [3]int,
	weights []float64, period int, transform Transform) {

	for n := range pos {
		w := 1.0
		if weights != nil {
			w = weights[n]
		}
		scatter(pos[n], shape, period, transform, func(idx int, frac float64) {
			field[idx] += T(w * frac)
		})
	}
}

// Readout interpolates field at each position with the identical
// kernel, masking and periodicity as Paint. Contributions from
// corners outside the local shape are dropped, mirroring the mass
// those particles failed to paint. Empty input returns an empty
// result.
func Readout[T ~float32 | ~float64](field []T, shape [3]int, pos [][3]float64,
	period int, transform Transform) []float64 {

	out := make([]float64, len(pos))
	for n := range pos {
		sum := 0.0
		scatter(pos[n], shape, period, transform, func(idx int, frac float64) {
			sum += float64(field[idx]) * frac
		})
		out[n] = sum
	}
	return out
}

// scatter visits the up-to-8 mesh corners supporting one particle,
// calling emit with the flat local index and the trilinear weight of
// each corner that lands inside the local shape.
func scatter(x [3]float64, shape [3]int, period int, transform Transform,
	emit func(idx int, frac float64)) {

	u := transform(x)

	var base [3]int
	var fr [3]float64
	for d := 0; d < 3; d++ {
		f := math.Floor(u[d])
		base[d] = int(f)
		fr[d] = u[d] - f
	}

	for c := 0; c < 8; c++ {
		frac := 1.0
		var idx [3]int
		ok := true
		for d := 0; d < 3; d++ {
			if c&(1<<d) != 0 {
				idx[d] = base[d] + 1
				frac *= fr[d]
			} else {
				idx[d] = base[d]
				frac *= 1 - fr[d]
			}
			if period > 0 {
				idx[d] = mod(idx[d], period)
			}
			if idx[d] < 0 || idx[d] >= shape[d] {
				ok = false
			}
		}
		if !ok || frac == 0 {
			continue
		}
		emit((idx[0]*shape[1]+idx[1])*shape[2]+idx[2], frac)
	}
}

// mod is the arithmetic modulus, non-negative for positive periods.
func mod(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
