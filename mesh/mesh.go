// Package mesh implements the particle-mesh state machine: paint
// particles onto a distributed 3-D mesh, transform to spectral space,
// apply ordered transfer chains, transform back and read results out
// at particle positions.
//
// A Mesh is a state machine over one shared field buffer. The
// standard step sequence is
//
//	layout := m.Decompose(pos)        // collective
//	... migrate particles per layout ...
//	m.R2C(pos, weights)               // collective
//	for each output:
//	    m.C2R(chain)                  // collective
//	    values := m.Readout(pos)
//
// Decompose, R2C, C2R and diagnostic reductions are collective: every
// rank of the communicator must issue the identical sequence of these
// calls on the identical mesh or the run deadlocks. There is no
// intra-process concurrency; call sequencing is the only discipline
// guarding the shared buffer, and misordered calls panic rather than
// corrupt data.
package mesh

import (
	"fmt"

	"github.com/notargets/pmesh/cic"
	"github.com/notargets/pmesh/comm"
	"github.com/notargets/pmesh/domain"
	"github.com/notargets/pmesh/spectral"
)

// decomposeSmoothing is the CIC interpolation support radius in grid
// cells, fixed so decomposition and painting agree on which ranks a
// particle touches.
const decomposeSmoothing = 1.0

// Config carries the construction parameters of a Mesh.
type Config[T spectral.Float] struct {
	// BoxSize is the simulation box side length. Required, positive.
	BoxSize float64

	// Nmesh is the number of mesh points per side; the mesh is
	// Nmesh³. Required, positive.
	Nmesh int

	// ProcMesh is the 2-D process mesh shape. Its product must equal
	// the communicator size. Nil requests the automatic near-square
	// split.
	ProcMesh *[2]int

	// Comm is the communicator. Nil means comm.World().
	Comm comm.Communicator

	// Engine overrides the FFT backend. Nil plans the serial gonum
	// engine, which requires a single-rank communicator.
	Engine spectral.Engine[T]

	// Observer receives best-effort diagnostics. Must be configured
	// consistently across ranks (see Observer).
	Observer Observer
}

// Mesh is a particle-mesh transform stage at a fixed precision. The
// geometry, partition and field buffer are created once and live for
// the mesh's lifetime.
type Mesh[T spectral.Float] struct {
	Geometry MeshGeometry

	comm   comm.Communicator
	engine spectral.Engine[T]
	part   *spectral.Partition
	buf    *spectral.FieldBuffer[T]
	fwd    spectral.Plan[T]
	bwd    spectral.Plan[T]
	dec    *domain.GridDecomposer
	stack  *SnapshotStack[T]
	obs    Observer

	kvec [3][]float64 // built on first Transfer; partition is fixed
}

// New constructs a mesh. A fresh mesh starts with a cleared real
// field. Construction is collective when the engine's planning is.
func New[T spectral.Float](cfg Config[T]) (*Mesh[T], error) {
	c := cfg.Comm
	if c == nil {
		c = comm.World()
	}

	pm, err := spectral.NewProcessMesh(cfg.ProcMesh, c.Size())
	if err != nil {
		return nil, fmt.Errorf("pmesh: %w", err)
	}

	engine := cfg.Engine
	if engine == nil {
		engine, err = spectral.NewSerialEngine[T](cfg.Nmesh, pm, c)
		if err != nil {
			return nil, fmt.Errorf("pmesh: %w", err)
		}
	}
	part := engine.Partition()

	geom, err := NewMeshGeometry(cfg.BoxSize, cfg.Nmesh, part.LocalRealStart)
	if err != nil {
		return nil, fmt.Errorf("pmesh: %w", err)
	}

	dec, err := domain.NewGridDecomposer(part.RealEdges, float64(cfg.Nmesh))
	if err != nil {
		return nil, fmt.Errorf("pmesh: domain decomposer: %w", err)
	}

	buf := engine.AllocBuffer()
	m := &Mesh[T]{
		Geometry: geom,
		comm:     c,
		engine:   engine,
		part:     part,
		buf:      buf,
		fwd:      engine.Forward(),
		bwd:      engine.Backward(),
		dec:      dec,
		stack:    &SnapshotStack[T]{buf: buf},
		obs:      cfg.Observer,
	}
	return m, nil
}

// Partition returns the rank's mesh partition. Read-only.
func (m *Mesh[T]) Partition() *spectral.Partition { return m.part }

// Comm returns the mesh's communicator.
func (m *Mesh[T]) Comm() comm.Communicator { return m.comm }

// Real returns the local real field view. Only valid while the real
// side of the buffer is current.
func (m *Mesh[T]) Real() []T { return m.buf.Real() }

// Complex returns the local complex field view in the transposed
// layout. Only valid after a forward transform.
func (m *Mesh[T]) Complex() *spectral.ComplexField[T] { return m.buf.Complex() }

// Stack exposes the snapshot stack for depth checks and manual
// push/pop around custom spectral work.
func (m *Mesh[T]) Stack() *SnapshotStack[T] { return m.stack }

// Decompose produces the migration layout routing each particle (and
// its periodic images) to the ranks whose slabs its interpolation
// support touches. The smoothing radius is fixed to one grid cell and
// coordinates go through the global transform, matching Paint's
// footprint. Collective.
func (m *Mesh[T]) Decompose(pos [][3]float64) *domain.Layout {
	return m.dec.Decompose(pos, decomposeSmoothing, m.Geometry.TransformGlobal)
}

// Clear zeroes the real field. Painting accumulates, so reusing a
// mesh across steps needs a Clear first.
func (m *Mesh[T]) Clear() {
	m.buf.ZeroReal()
}

// Paint accumulates weight-carrying CIC contributions of the given
// particles into the real field. A nil weights slice paints unit
// weight. Particles mapping outside the local slab are silently
// dropped; the kernel wraps with period Nmesh. Repeated calls without
// an intervening Clear are additive.
func (m *Mesh[T]) Paint(pos [][3]float64, weights []float64) {
	field := m.buf.Real()
	cic.Paint(pos, field, m.part.LocalRealSize, weights, m.Geometry.Nmesh,
		m.Geometry.Transform)
	m.buf.MarkRealWritten()
}

// Readout interpolates the real field at the given positions with the
// identical kernel, transform and masking as Paint. Empty input
// returns an empty result with no side effects.
func (m *Mesh[T]) Readout(pos [][3]float64) []float64 {
	return cic.Readout(m.buf.Real(), m.part.LocalRealSize, pos,
		m.Geometry.Nmesh, m.Geometry.Transform)
}

// Push saves the complex field on the snapshot stack.
func (m *Mesh[T]) Push() { m.stack.Push() }

// Pop restores the complex field from the snapshot stack.
func (m *Mesh[T]) Pop() { m.stack.Pop() }

// observeRealSum reduces the local real-field sum across ranks and
// reports it. Collective when an observer is installed, so the
// observer configuration must agree on all ranks.
func (m *Mesh[T]) observeRealSum(stage string) {
	if m.obs == nil {
		return
	}
	local := 0.0
	for _, v := range m.buf.Real() {
		local += float64(v)
	}
	m.obs.FieldSum(stage, m.comm.Allreduce(local, comm.Sum))
	m.comm.Barrier()
}
