package spectral

import "fmt"

// Phase records which window of a FieldBuffer currently holds
// meaningful data. The forward and backward plans are the only
// operations that bridge between the two sides.
type Phase uint8

const (
	// PhaseReal: the real window is valid (after construction,
	// ZeroReal, or painting).
	PhaseReal Phase = iota
	// PhaseComplex: the complex window is valid (after a forward
	// transform, which consumes the real window).
	PhaseComplex
	// PhaseBoth: both windows are valid (after a backward transform
	// followed by a snapshot restore of the complex window).
	PhaseBoth
)

func (p Phase) String() string {
	switch p {
	case PhaseReal:
		return "real"
	case PhaseComplex:
		return "complex"
	case PhaseBoth:
		return "both"
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// FieldBuffer owns the one backing allocation a mesh works in. The
// real window and the complex window are typed views over disjoint
// regions of that allocation; neither is ever independently owned or
// reallocated. The phase marker makes misordered access a checked
// state-machine violation instead of silent data corruption.
//
// The complex window stores interleaved (re, im) pairs of the arena's
// element type, in the transposed axis order of the Partition.
type FieldBuffer[T Float] struct {
	arena    []T
	realLen  int
	cmplxLen int // complex elements; occupies 2*cmplxLen arena slots
	shape    [Ndim]int
	phase    Phase
}

// NewFieldBuffer allocates the shared buffer for a partition. The
// buffer starts in PhaseReal with a zeroed real window.
func NewFieldBuffer[T Float](p *Partition) *FieldBuffer[T] {
	b := &FieldBuffer[T]{
		arena:    make([]T, p.RealLen()+2*p.ComplexLen()),
		realLen:  p.RealLen(),
		cmplxLen: p.ComplexLen(),
		shape:    p.LocalComplexSize,
		phase:    PhaseReal,
	}
	return b
}

// Phase returns the current phase marker.
func (b *FieldBuffer[T]) Phase() Phase { return b.phase }

// RealValid reports whether the real window may be read.
func (b *FieldBuffer[T]) RealValid() bool { return b.phase != PhaseComplex }

// ComplexValid reports whether the complex window may be read.
func (b *FieldBuffer[T]) ComplexValid() bool { return b.phase != PhaseReal }

// Real returns the real window. Reading or writing it is only legal
// while the real side is valid; painting into a buffer whose real
// window was consumed by a forward transform is a usage error.
func (b *FieldBuffer[T]) Real() []T {
	if !b.RealValid() {
		panic("pmesh: real window accessed in phase " + b.phase.String())
	}
	return b.realWindow()
}

// MarkRealWritten records a write through the real window, which
// invalidates the complex window.
func (b *FieldBuffer[T]) MarkRealWritten() {
	if !b.RealValid() {
		panic("pmesh: real window written in phase " + b.phase.String())
	}
	b.phase = PhaseReal
}

// Complex returns the complex window as a shaped field view.
func (b *FieldBuffer[T]) Complex() *ComplexField[T] {
	if !b.ComplexValid() {
		panic("pmesh: complex window accessed in phase " + b.phase.String())
	}
	return &ComplexField[T]{data: b.cmplxWindow(), Shape: b.shape}
}

// ZeroReal zeroes the real window and makes it the valid side.
func (b *FieldBuffer[T]) ZeroReal() {
	w := b.realWindow()
	for i := range w {
		w[i] = 0
	}
	b.phase = PhaseReal
}

// Forward executes a forward plan from the real window into the
// complex window and advances the phase. Collective.
func (b *FieldBuffer[T]) Forward(p Plan[T]) error {
	if !b.RealValid() {
		panic("pmesh: forward transform in phase " + b.phase.String())
	}
	if err := p.Execute(b.realWindow(), b.cmplxWindow()); err != nil {
		return fmt.Errorf("forward transform: %w", err)
	}
	b.phase = PhaseComplex
	return nil
}

// Backward executes a backward plan from the complex window into the
// real window. The complex window is treated as consumed, matching
// the destroy-input planning convention of parallel FFT engines; a
// snapshot restore brings it back. Collective.
func (b *FieldBuffer[T]) Backward(p Plan[T]) error {
	if !b.ComplexValid() {
		panic("pmesh: backward transform in phase " + b.phase.String())
	}
	if err := p.Execute(b.cmplxWindow(), b.realWindow()); err != nil {
		return fmt.Errorf("backward transform: %w", err)
	}
	b.phase = PhaseReal
	return nil
}

// CopyComplex deep-copies the complex window for a snapshot.
func (b *FieldBuffer[T]) CopyComplex() []T {
	if !b.ComplexValid() {
		panic("pmesh: complex window copied in phase " + b.phase.String())
	}
	saved := make([]T, 2*b.cmplxLen)
	copy(saved, b.cmplxWindow())
	return saved
}

// RestoreComplex overwrites the complex window from a snapshot taken
// with CopyComplex and marks the complex side valid again. A valid
// real window stays valid: the two windows do not overlap.
func (b *FieldBuffer[T]) RestoreComplex(saved []T) {
	w := b.cmplxWindow()
	if len(saved) != len(w) {
		panic(fmt.Sprintf("pmesh: snapshot length %d does not match complex window %d",
			len(saved), len(w)))
	}
	copy(w, saved)
	if b.phase == PhaseReal {
		b.phase = PhaseBoth
	}
}

func (b *FieldBuffer[T]) realWindow() []T {
	return b.arena[:b.realLen:b.realLen]
}

func (b *FieldBuffer[T]) cmplxWindow() []T {
	return b.arena[b.realLen : b.realLen+2*b.cmplxLen]
}

// ComplexField is a shaped view of a buffer's complex window. Element
// i of the flat index space is the interleaved pair (2i, 2i+1).
// Shape follows the transposed axis order of the Partition.
type ComplexField[T Float] struct {
	data  []T
	Shape [Ndim]int
}

// Len returns the number of complex elements.
func (f *ComplexField[T]) Len() int { return len(f.data) / 2 }

// Index maps (i, j, k) in the transposed layout to a flat index.
func (f *ComplexField[T]) Index(i, j, k int) int {
	return (i*f.Shape[1]+j)*f.Shape[2] + k
}

// Decompose splits a flat index into its (i, j, k) coordinates.
func (f *ComplexField[T]) Decompose(n int) (i, j, k int) {
	k = n % f.Shape[2]
	n /= f.Shape[2]
	return n / f.Shape[1], n % f.Shape[1], k
}

// At returns element n.
func (f *ComplexField[T]) At(n int) complex128 {
	return complex(float64(f.data[2*n]), float64(f.data[2*n+1]))
}

// Set stores v into element n.
func (f *ComplexField[T]) Set(n int, v complex128) {
	f.data[2*n] = T(real(v))
	f.data[2*n+1] = T(imag(v))
}

// Mul scales element n by the real factor s.
func (f *ComplexField[T]) Mul(n int, s float64) {
	f.data[2*n] = T(float64(f.data[2*n]) * s)
	f.data[2*n+1] = T(float64(f.data[2*n+1]) * s)
}
