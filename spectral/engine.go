package spectral

// Plan is one direction of a planned transform. Execute moves data
// between the raw windows of a FieldBuffer: for a forward plan src is
// the real window and dst the interleaved complex window, for a
// backward plan the reverse. Execution is collective and blocking;
// every rank of the engine's communicator must execute the same plan
// at the same point in the call sequence.
type Plan[T Float] interface {
	Execute(src, dst []T) error
}

// Engine is the parallel FFT backend contract. An engine fixes the
// mesh decomposition (the Partition), owns the buffer geometry, and
// yields the two execution plans. The core never looks behind this
// interface.
//
// Conventions every engine must honor:
//   - the complex output uses the transposed layout described by
//     Partition (axes y, z-half, x);
//   - the forward plan applies the 1/Nmesh³ DFT normalization;
//   - the backward plan is the unnormalized inverse, so that
//     backward(forward(f)) == f.
type Engine[T Float] interface {
	Partition() *Partition

	// AllocBuffer allocates the shared local buffer the plans
	// operate on. One buffer per mesh.
	AllocBuffer() *FieldBuffer[T]

	Forward() Plan[T]
	Backward() Plan[T]
}
