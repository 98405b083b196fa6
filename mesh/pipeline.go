package mesh

import (
	"fmt"

	"github.com/notargets/pmesh/comm"
	"github.com/notargets/pmesh/spectral"
)

// TransferFunc mutates the complex field in place given the k-vector
// triplet. w[d] holds the angular wavenumber along complex axis d of
// the transposed layout, one entry per local index; the triplet
// broadcasts against the field's shape. A non-nil error aborts the
// chain immediately.
type TransferFunc[T spectral.Float] func(c comm.Communicator, field *spectral.ComplexField[T], w [3][]float64) error

// R2C performs the real-to-complex forward transform on the internal
// field. If pos is non-nil the mesh is cleared and the particles
// painted first.
//
// The real field is rescaled in place by (1/BoxSize)³ before the
// transform, converting accumulated weight into a density-like
// amplitude. The rescale is applied unconditionally: calling R2C
// twice on the same real data without an intervening paint or clear
// applies it twice. Collective.
func (m *Mesh[T]) R2C(pos [][3]float64, weights []float64) error {
	if pos != nil {
		m.Clear()
		m.Paint(pos, weights)
	}

	inv := 1.0 / m.Geometry.BoxSize
	scale := T(inv * inv * inv)
	field := m.buf.Real()
	for i := range field {
		field[i] *= scale
	}
	m.buf.MarkRealWritten()

	m.observeRealSum("r2c.real")

	if err := m.buf.Forward(m.fwd); err != nil {
		return fmt.Errorf("pmesh: r2c: %w", err)
	}
	return nil
}

// Transfer applies a chain of transfer functions to the complex
// field, in place and in the supplied order. Each function sees the
// mutations of all prior functions; the chain is never reordered,
// deduplicated or parallelized. Use Push first if the original field
// must be preserved.
func (m *Mesh[T]) Transfer(chain []TransferFunc[T]) error {
	if m.kvec[0] == nil {
		m.kvec = buildKVectors(m.part)
	}
	field := m.buf.Complex()
	for i, fn := range chain {
		if err := fn(m.comm, field, m.kvec); err != nil {
			return fmt.Errorf("pmesh: transfer function %d: %w", i, err)
		}
	}
	return nil
}

// C2R performs the complex-to-real backward transform, applying the
// transfer chain to a snapshot of the spectral field. The sequence is
// always push, transfer, backward transform, pop, so repeated C2R
// calls with different chains start from the same spectral field, at
// the cost of one field-sized copy per call.
//
// If a transfer function fails the error is returned immediately and
// the snapshot stack is left unbalanced; the saved field is still on
// the stack. Collective.
func (m *Mesh[T]) C2R(chain []TransferFunc[T]) error {
	m.Push()

	if err := m.Transfer(chain); err != nil {
		return err
	}

	if err := m.buf.Backward(m.bwd); err != nil {
		return fmt.Errorf("pmesh: c2r: %w", err)
	}

	m.observeRealSum("c2r.real")

	m.Pop()
	return nil
}
