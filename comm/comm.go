// Package comm defines the communicator surface the particle-mesh core
// consumes. The core only needs rank identity and a small set of
// collective reductions; anything richer (point-to-point, Alltoallv)
// belongs to the external FFT engine and domain decomposer backends.
package comm

// Op identifies a reduction operation.
type Op int

const (
	Sum Op = iota
	Max
	Min
)

// Communicator is a fixed group of cooperating ranks. All collective
// methods must be invoked by every rank of the group, in the same
// order, or the computation deadlocks. There is no cancellation: a
// hanging rank hangs the group.
type Communicator interface {
	Rank() int
	Size() int

	// Allreduce combines v across all ranks with op and returns the
	// result on every rank. Collective.
	Allreduce(v float64, op Op) float64

	// Barrier blocks until every rank of the group has entered it.
	// Collective.
	Barrier()
}

// Self is the single-rank communicator. Every collective is a local
// no-op, which makes it the natural backend for serial runs and tests.
type Self struct{}

func (Self) Rank() int { return 0 }
func (Self) Size() int { return 1 }

func (Self) Allreduce(v float64, _ Op) float64 { return v }

func (Self) Barrier() {}

var world Communicator = Self{}

// World returns the process-global communicator. It defaults to Self;
// a parallel backend may replace it once at bootstrap before any mesh
// is constructed.
func World() Communicator { return world }

// SetWorld installs the process-global communicator. Call at most
// once, before constructing meshes.
func SetWorld(c Communicator) { world = c }
