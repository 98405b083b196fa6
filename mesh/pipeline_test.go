package mesh

import (
	"errors"
	"testing"

	"github.com/notargets/pmesh/comm"
	"github.com/notargets/pmesh/spectral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func identityTransfer() TransferFunc[float64] {
	return func(comm.Communicator, *spectral.ComplexField[float64], [3][]float64) error {
		return nil
	}
}

func snapshotComplex(m *Mesh[float64]) []complex128 {
	f := m.Complex()
	out := make([]complex128, f.Len())
	for n := range out {
		out[n] = f.At(n)
	}
	return out
}

func TestPushPop_BitIdenticalRestore(t *testing.T) {
	m := newTestMesh(t, 1.0, 8)
	require.NoError(t, m.R2C([][3]float64{{0.3, 0.6, 0.9}}, nil))

	before := snapshotComplex(m)
	m.Push()

	f := m.Complex()
	for n := 0; n < f.Len(); n++ {
		f.Set(n, complex(float64(n), -1))
	}

	m.Pop()
	assert.Equal(t, before, snapshotComplex(m),
		"pop must restore the complex field bit-identically")
	assert.Equal(t, 0, m.Stack().Depth())
}

func TestC2R_EmptyChain(t *testing.T) {
	m := newTestMesh(t, 1.0, 8)
	require.NoError(t, m.R2C([][3]float64{{0.25, 0.5, 0.75}}, nil))

	before := snapshotComplex(m)
	require.NoError(t, m.C2R(nil))

	// The push/apply/pop contract leaves the spectral field unchanged
	// while the real window now holds a valid backward transform.
	assert.Equal(t, before, snapshotComplex(m))
	assert.InDelta(t, 1.0, floats.Sum(m.Real()), 1e-10,
		"backward transform of the painted unit mass")
	assert.Equal(t, 0, m.Stack().Depth())
}

func TestC2R_Deterministic(t *testing.T) {
	m := newTestMesh(t, 1.0, 8)
	require.NoError(t, m.R2C([][3]float64{{0.1, 0.7, 0.4}, {0.8, 0.2, 0.6}}, nil))

	halve := func(_ comm.Communicator, f *spectral.ComplexField[float64], _ [3][]float64) error {
		for n := 0; n < f.Len(); n++ {
			f.Mul(n, 0.5)
		}
		return nil
	}

	chain := []TransferFunc[float64]{halve, identityTransfer()}

	require.NoError(t, m.C2R(chain))
	first := append([]float64(nil), m.Real()...)

	require.NoError(t, m.C2R(chain))
	assert.Equal(t, first, m.Real(),
		"identical chains must produce identical output from the restored field")
}

func TestC2R_ChainOrderSignificant(t *testing.T) {
	setDC := func(v complex128) TransferFunc[float64] {
		return func(_ comm.Communicator, f *spectral.ComplexField[float64], _ [3][]float64) error {
			f.Set(0, v)
			return nil
		}
	}
	double := func(_ comm.Communicator, f *spectral.ComplexField[float64], _ [3][]float64) error {
		f.Mul(0, 2)
		return nil
	}

	run := func(chain []TransferFunc[float64]) float64 {
		m := newTestMesh(t, 1.0, 8)
		require.NoError(t, m.R2C([][3]float64{{0.5, 0.5, 0.5}}, nil))
		require.NoError(t, m.C2R(chain))
		return floats.Sum(m.Real())
	}

	// set-then-double and double-then-set must differ: each function
	// sees the mutations of all prior functions.
	sumA := run([]TransferFunc[float64]{setDC(complex(2, 0)), double})
	sumB := run([]TransferFunc[float64]{double, setDC(complex(2, 0))})

	assert.InDelta(t, 4*512, sumA, 1e-9)
	assert.InDelta(t, 2*512, sumB, 1e-9)
}

func TestC2R_FailedTransferLeavesStackUnbalanced(t *testing.T) {
	m := newTestMesh(t, 1.0, 8)
	require.NoError(t, m.R2C([][3]float64{{0.5, 0.5, 0.5}}, nil))

	errBroken := errors.New("broken transfer")
	broken := func(comm.Communicator, *spectral.ComplexField[float64], [3][]float64) error {
		return errBroken
	}

	require.Equal(t, 0, m.Stack().Depth())
	err := m.C2R([]TransferFunc[float64]{broken})
	require.ErrorIs(t, err, errBroken)

	// The snapshot pushed at the start of C2R is still there: the
	// failure path does not auto-correct the stack.
	assert.Equal(t, 1, m.Stack().Depth())

	// The saved field is recoverable by hand.
	m.Pop()
	assert.Equal(t, 0, m.Stack().Depth())
}

func TestR2C_MassConservationEndToEnd(t *testing.T) {
	// Nmesh=16, BoxSize=1, one unit-mass particle at the box center:
	// paint, forward, identity chain, backward must conserve the mass.
	m := newTestMesh(t, 1.0, 16)

	pos := [][3]float64{{0.5, 0.5, 0.5}}
	require.NoError(t, m.R2C(pos, []float64{1.0}))
	require.NoError(t, m.C2R([]TransferFunc[float64]{identityTransfer()}))

	assert.InDelta(t, 1.0, floats.Sum(m.Real()), 1e-10,
		"total mass through the full pipeline")

	values := m.Readout(pos)
	require.Len(t, values, 1)
	assert.Greater(t, values[0], 0.0)
}

func TestR2C_DoubleNormalizationSharpEdge(t *testing.T) {
	// The (1/BoxSize)³ rescale inside R2C is applied unconditionally.
	// Running R2C again on existing real data (here: the output of a
	// backward transform) rescales a second time. This is intentional
	// and must not be silently corrected.
	const box = 2.0
	m, err := New[float64](Config[float64]{BoxSize: box, Nmesh: 8, Comm: comm.Self{}})
	require.NoError(t, err)

	require.NoError(t, m.R2C([][3]float64{{1, 1, 1}}, nil))
	firstDC := m.Complex().At(0)

	require.NoError(t, m.C2R(nil))
	require.NoError(t, m.R2C(nil, nil))
	secondDC := m.Complex().At(0)

	// First pass: mass/box³. Second pass rescales the already
	// density-scaled field by 1/box³ again.
	assert.InDelta(t, real(firstDC)/(box*box*box), real(secondDC), 1e-12)
	assert.NotEqual(t, firstDC, secondDC)
}

func TestObserver_StagesAndSums(t *testing.T) {
	obs := &CSVObserver{Rank: 0}
	m, err := New[float64](Config[float64]{
		BoxSize:  1.0,
		Nmesh:    8,
		Comm:     comm.Self{},
		Observer: obs,
	})
	require.NoError(t, err)

	require.NoError(t, m.R2C([][3]float64{{0.5, 0.5, 0.5}}, nil))
	require.NoError(t, m.C2R(nil))

	rows := obs.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "r2c.real", rows[0].Stage)
	assert.Equal(t, "c2r.real", rows[1].Stage)
	assert.InDelta(t, 1.0, rows[0].Sum, 1e-12)
	assert.InDelta(t, 1.0, rows[1].Sum, 1e-10)
}
