package spectral

import (
	"fmt"

	"github.com/notargets/pmesh/comm"
	"gonum.org/v1/gonum/dsp/fourier"
)

// SerialEngine implements the Engine contract for a single-rank
// communicator on top of gonum's fourier package. The 3-D transform
// is decomposed into 1-D passes: a real-to-complex pass along z
// followed by complex passes along y and x. The complex output is
// stored in the transposed (y, z-half, x) layout so that serial runs
// exercise exactly the conventions a distributed engine imposes.
//
// gonum's transforms are unnormalized; the forward plan applies the
// engine-owned 1/Nmesh³ factor, the backward plan none, so a forward
// then backward round trip is the identity.
type SerialEngine[T Float] struct {
	part *Partition
	n    int // Nmesh
	nh   int // Nmesh/2 + 1

	rfft *fourier.FFT
	cfft *fourier.CmplxFFT

	// Scratch planned once; Execute allocates nothing.
	grid   []complex128 // n*n*nh intermediate, indexed (x, y, zh)
	rowR   []float64    // z-row staging, length n
	rowC   []complex128 // z-row coefficients, length nh
	colIn  []complex128 // 1-D pass input, length n
	colOut []complex128 // 1-D pass output, length n
}

// NewSerialEngine plans a serial engine for an Nmesh³ mesh. The
// process mesh and communicator must describe a single rank; larger
// runs need a distributed engine behind the same interface.
func NewSerialEngine[T Float](nmesh int, pm *ProcessMesh, c comm.Communicator) (*SerialEngine[T], error) {
	if nmesh < 2 {
		return nil, fmt.Errorf("Nmesh must be at least 2, got %d", nmesh)
	}
	if c.Size() != 1 || pm.Size() != 1 {
		return nil, fmt.Errorf("serial engine supports exactly 1 rank, got %d (process mesh %dx%d)",
			c.Size(), pm.Np[0], pm.Np[1])
	}
	nh := nmesh/2 + 1
	e := &SerialEngine[T]{
		n:      nmesh,
		nh:     nh,
		rfft:   fourier.NewFFT(nmesh),
		cfft:   fourier.NewCmplxFFT(nmesh),
		grid:   make([]complex128, nmesh*nmesh*nh),
		rowR:   make([]float64, nmesh),
		rowC:   make([]complex128, nh),
		colIn:  make([]complex128, nmesh),
		colOut: make([]complex128, nmesh),
	}
	e.part = &Partition{
		Nmesh:         nmesh,
		LocalRealSize: [Ndim]int{nmesh, nmesh, nmesh},
		// Transposed order: y, z-half, x.
		LocalComplexSize: [Ndim]int{nmesh, nh, nmesh},
	}
	for d := 0; d < Ndim; d++ {
		e.part.RealEdges[d] = []float64{0, float64(nmesh)}
	}
	if err := e.part.Validate(); err != nil {
		return nil, fmt.Errorf("serial partition: %w", err)
	}
	return e, nil
}

func (e *SerialEngine[T]) Partition() *Partition { return e.part }

func (e *SerialEngine[T]) AllocBuffer() *FieldBuffer[T] {
	return NewFieldBuffer[T](e.part)
}

func (e *SerialEngine[T]) Forward() Plan[T]  { return forwardPlan[T]{e} }
func (e *SerialEngine[T]) Backward() Plan[T] { return backwardPlan[T]{e} }

// gidx addresses the intermediate grid in (x, y, zh) order.
func (e *SerialEngine[T]) gidx(x, y, zh int) int {
	return (x*e.n+y)*e.nh + zh
}

type forwardPlan[T Float] struct{ e *SerialEngine[T] }

func (p forwardPlan[T]) Execute(src, dst []T) error {
	e := p.e
	n, nh := e.n, e.nh
	if len(src) != n*n*n || len(dst) != 2*n*nh*n {
		return fmt.Errorf("forward plan: window lengths %d/%d do not match mesh %d",
			len(src), len(dst), n)
	}

	// Real-to-complex along z.
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			row := src[(x*n+y)*n : (x*n+y+1)*n]
			for z := 0; z < n; z++ {
				e.rowR[z] = float64(row[z])
			}
			e.rfft.Coefficients(e.rowC, e.rowR)
			for zh := 0; zh < nh; zh++ {
				e.grid[e.gidx(x, y, zh)] = e.rowC[zh]
			}
		}
	}

	// Complex pass along y.
	for x := 0; x < n; x++ {
		for zh := 0; zh < nh; zh++ {
			for y := 0; y < n; y++ {
				e.colIn[y] = e.grid[e.gidx(x, y, zh)]
			}
			e.cfft.Coefficients(e.colOut, e.colIn)
			for y := 0; y < n; y++ {
				e.grid[e.gidx(x, y, zh)] = e.colOut[y]
			}
		}
	}

	// Complex pass along x, then scatter into the transposed layout
	// with the engine-owned normalization.
	norm := 1.0 / (float64(n) * float64(n) * float64(n))
	for y := 0; y < n; y++ {
		for zh := 0; zh < nh; zh++ {
			for x := 0; x < n; x++ {
				e.colIn[x] = e.grid[e.gidx(x, y, zh)]
			}
			e.cfft.Coefficients(e.colOut, e.colIn)
			for x := 0; x < n; x++ {
				c := e.colOut[x]
				out := (y*nh+zh)*n + x
				dst[2*out] = T(real(c) * norm)
				dst[2*out+1] = T(imag(c) * norm)
			}
		}
	}
	return nil
}

type backwardPlan[T Float] struct{ e *SerialEngine[T] }

func (p backwardPlan[T]) Execute(src, dst []T) error {
	e := p.e
	n, nh := e.n, e.nh
	if len(src) != 2*n*nh*n || len(dst) != n*n*n {
		return fmt.Errorf("backward plan: window lengths %d/%d do not match mesh %d",
			len(src), len(dst), n)
	}

	// Gather from the transposed layout and invert along x.
	for y := 0; y < n; y++ {
		for zh := 0; zh < nh; zh++ {
			for x := 0; x < n; x++ {
				in := (y*nh+zh)*n + x
				e.colIn[x] = complex(float64(src[2*in]), float64(src[2*in+1]))
			}
			e.cfft.Sequence(e.colOut, e.colIn)
			for x := 0; x < n; x++ {
				e.grid[e.gidx(x, y, zh)] = e.colOut[x]
			}
		}
	}

	// Invert along y.
	for x := 0; x < n; x++ {
		for zh := 0; zh < nh; zh++ {
			for y := 0; y < n; y++ {
				e.colIn[y] = e.grid[e.gidx(x, y, zh)]
			}
			e.cfft.Sequence(e.colOut, e.colIn)
			for y := 0; y < n; y++ {
				e.grid[e.gidx(x, y, zh)] = e.colOut[y]
			}
		}
	}

	// Complex-to-real along z.
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for zh := 0; zh < nh; zh++ {
				e.rowC[zh] = e.grid[e.gidx(x, y, zh)]
			}
			e.rfft.Sequence(e.rowR, e.rowC)
			out := dst[(x*n+y)*n : (x*n+y+1)*n]
			for z := 0; z < n; z++ {
				out[z] = T(e.rowR[z])
			}
		}
	}
	return nil
}
