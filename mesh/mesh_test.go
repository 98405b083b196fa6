package mesh

import (
	"testing"

	"github.com/notargets/pmesh/comm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func newTestMesh(t *testing.T, boxSize float64, nmesh int) *Mesh[float64] {
	t.Helper()
	m, err := New[float64](Config[float64]{
		BoxSize: boxSize,
		Nmesh:   nmesh,
		Comm:    comm.Self{},
	})
	require.NoError(t, err)
	return m
}

func TestNew_Validation(t *testing.T) {
	t.Run("NonPositiveBoxSize", func(t *testing.T) {
		_, err := New[float64](Config[float64]{BoxSize: 0, Nmesh: 8})
		require.Error(t, err)
	})

	t.Run("TooSmallNmesh", func(t *testing.T) {
		_, err := New[float64](Config[float64]{BoxSize: 1, Nmesh: 1})
		require.Error(t, err)
	})

	t.Run("ProcessMeshMismatch", func(t *testing.T) {
		_, err := New[float64](Config[float64]{
			BoxSize:  1,
			Nmesh:    8,
			ProcMesh: &[2]int{2, 2},
			Comm:     comm.Self{},
		})
		require.Error(t, err)
	})

	t.Run("DefaultsApply", func(t *testing.T) {
		m, err := New[float64](Config[float64]{BoxSize: 1, Nmesh: 8})
		require.NoError(t, err)
		assert.Equal(t, 1, m.Comm().Size())
		assert.Equal(t, 8, m.Partition().Nmesh)
	})
}

func TestMesh_FreshAndCleared(t *testing.T) {
	m := newTestMesh(t, 1.0, 8)

	// A fresh mesh comes with a cleared canvas.
	assert.Zero(t, floats.Sum(m.Real()))

	m.Paint([][3]float64{{0.5, 0.5, 0.5}}, nil)
	require.InDelta(t, 1.0, floats.Sum(m.Real()), 1e-12)

	// Clearing twice is the same as clearing once.
	m.Clear()
	first := append([]float64(nil), m.Real()...)
	m.Clear()
	assert.Equal(t, first, m.Real())
	assert.Zero(t, floats.Sum(m.Real()))
}

func TestMesh_PaintAdditivity(t *testing.T) {
	pos := [][3]float64{{0.2, 0.4, 0.6}, {0.9, 0.1, 0.5}}

	mA := newTestMesh(t, 1.0, 8)
	mA.Paint(pos, []float64{1.0, 2.0})
	mA.Paint(pos, []float64{0.25, 0.75})

	mB := newTestMesh(t, 1.0, 8)
	mB.Paint(pos, []float64{1.25, 2.75})

	assert.InDeltaSlicef(t, mB.Real(), mA.Real(), 1e-12,
		"paint(m1); paint(m2) must match paint(m1+m2)")
}

func TestMesh_ReadoutEmpty(t *testing.T) {
	m := newTestMesh(t, 1.0, 8)
	before := append([]float64(nil), m.Real()...)

	got := m.Readout(nil)
	assert.Empty(t, got)
	assert.Equal(t, before, m.Real(), "readout must have no side effects")
}

func TestMesh_Decompose(t *testing.T) {
	m := newTestMesh(t, 1.0, 8)

	pos := [][3]float64{{0.1, 0.2, 0.3}, {0.99, 0.99, 0.99}, {0.5, 0.5, 0.5}}
	layout := m.Decompose(pos)

	require.Len(t, layout.Indices, 1)
	assert.Equal(t, []int{len(pos)}, layout.Counts())
}

func TestMesh_StateMachineViolations(t *testing.T) {
	pos := [][3]float64{{0.5, 0.5, 0.5}}

	t.Run("BackwardBeforeForward", func(t *testing.T) {
		m := newTestMesh(t, 1.0, 8)
		assert.Panics(t, func() { _ = m.C2R(nil) })
	})

	t.Run("PopOnEmptyStack", func(t *testing.T) {
		m := newTestMesh(t, 1.0, 8)
		require.NoError(t, m.R2C(pos, nil))
		assert.Panics(t, func() { m.Pop() })
	})

	t.Run("PaintAfterForward", func(t *testing.T) {
		m := newTestMesh(t, 1.0, 8)
		require.NoError(t, m.R2C(pos, nil))
		assert.Panics(t, func() { m.Paint(pos, nil) })
	})

	t.Run("ReadoutAfterForward", func(t *testing.T) {
		m := newTestMesh(t, 1.0, 8)
		require.NoError(t, m.R2C(pos, nil))
		assert.Panics(t, func() { m.Readout(pos) })
	})

	t.Run("TransferBeforeForward", func(t *testing.T) {
		m := newTestMesh(t, 1.0, 8)
		assert.Panics(t, func() { _ = m.Transfer(nil) })
	})

	t.Run("ClearRecovers", func(t *testing.T) {
		m := newTestMesh(t, 1.0, 8)
		require.NoError(t, m.R2C(pos, nil))
		m.Clear()
		m.Paint(pos, nil)
		assert.InDelta(t, 1.0, floats.Sum(m.Real()), 1e-12)
	})
}

func TestMesh_Float32(t *testing.T) {
	m, err := New[float32](Config[float32]{BoxSize: 1.0, Nmesh: 8, Comm: comm.Self{}})
	require.NoError(t, err)

	pos := [][3]float64{{0.5, 0.5, 0.5}}
	require.NoError(t, m.R2C(pos, nil))
	require.NoError(t, m.C2R(nil))

	sum := 0.0
	for _, v := range m.Real() {
		sum += float64(v)
	}
	assert.InDelta(t, 1.0, sum, 1e-4, "mass through the float32 pipeline")
}
