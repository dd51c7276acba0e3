package vec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestVector3Arithmetic(t *testing.T) {
	a := New(1.0, 2.0, 3.0)
	b := New(4.0, 5.0, 6.0)

	assert.Equal(t, New(5.0, 7.0, 9.0), a.Add(b))
	assert.Equal(t, New(-3.0, -3.0, -3.0), a.Sub(b))
	assert.Equal(t, New(2.0, 4.0, 6.0), a.Scale(2))
	assert.Equal(t, 32.0, a.Dot(b))
}

func TestVector3Cross(t *testing.T) {
	x := New(1.0, 0.0, 0.0)
	y := New(0.0, 1.0, 0.0)
	z := New(0.0, 0.0, 1.0)
	assert.Equal(t, z, x.Cross(y))
}

func TestNormalizeZeroVector(t *testing.T) {
	z := Vector3[float64]{}
	require.Equal(t, Vector3[float64]{}, z.Normalize())
}

func TestNormalizeUnitNorm(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Float64Range(-1e6, 1e6).Draw(rt, "x")
		y := rapid.Float64Range(-1e6, 1e6).Draw(rt, "y")
		z := rapid.Float64Range(-1e6, 1e6).Draw(rt, "z")
		v := New(x, y, z)
		if v.Norm2() == 0 {
			return
		}
		n := v.Normalize()
		assert.InDelta(t, 1.0, n.Norm(), 1e-6)
	})
}

func TestHasNaN(t *testing.T) {
	v := New(math.NaN(), 0.0, 0.0)
	assert.True(t, v.HasNaN())
	assert.False(t, New(1.0, 2.0, 3.0).HasNaN())
	assert.True(t, New(math.Inf(1), 0.0, 0.0).HasNaN())
}

func TestConvert(t *testing.T) {
	d := New[float64](1.5, 2.5, 3.5)
	f := Convert[float32](d)
	assert.Equal(t, float32(1.5), f.X)
}
