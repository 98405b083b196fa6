// Package transfer provides stock spectral transfer functions for use
// in mesh transfer chains. All functions mutate the complex field in
// place and are stateless, so one value can serve many chains; order
// within a chain is significant.
package transfer

import (
	"math"

	"github.com/notargets/pmesh/comm"
	"github.com/notargets/pmesh/mesh"
	"github.com/notargets/pmesh/spectral"
)

// Identity leaves the field untouched. Useful for exercising the full
// pipeline without modifying the spectrum.
func Identity[T spectral.Float]() mesh.TransferFunc[T] {
	return func(comm.Communicator, *spectral.ComplexField[T], [3][]float64) error {
		return nil
	}
}

// RemoveDC zeroes the k=0 mode, removing the mean of the real field.
// Only the rank owning the zero mode touches its data.
func RemoveDC[T spectral.Float]() mesh.TransferFunc[T] {
	return func(_ comm.Communicator, f *spectral.ComplexField[T], w [3][]float64) error {
		for n := 0; n < f.Len(); n++ {
			i, j, k := f.Decompose(n)
			if w[0][i] == 0 && w[1][j] == 0 && w[2][k] == 0 {
				f.Set(n, 0)
			}
		}
		return nil
	}
}

// Gaussian attenuates each mode by exp(-k²r²/2), smoothing the real
// field on the scale r (simulation units).
func Gaussian[T spectral.Float](r float64) mesh.TransferFunc[T] {
	return func(_ comm.Communicator, f *spectral.ComplexField[T], w [3][]float64) error {
		for n := 0; n < f.Len(); n++ {
			i, j, k := f.Decompose(n)
			k2 := w[0][i]*w[0][i] + w[1][j]*w[1][j] + w[2][k]*w[2][k]
			f.Mul(n, math.Exp(-0.5*k2*r*r))
		}
		return nil
	}
}

// SharpK zeroes every mode with |k| above kmax, a sharp spectral
// cutoff.
func SharpK[T spectral.Float](kmax float64) mesh.TransferFunc[T] {
	k2max := kmax * kmax
	return func(_ comm.Communicator, f *spectral.ComplexField[T], w [3][]float64) error {
		for n := 0; n < f.Len(); n++ {
			i, j, k := f.Decompose(n)
			k2 := w[0][i]*w[0][i] + w[1][j]*w[1][j] + w[2][k]*w[2][k]
			if k2 > k2max {
				f.Set(n, 0)
			}
		}
		return nil
	}
}
