package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewDefaultsCapacity(t *testing.T) {
	r := New[int](0)
	assert.Equal(t, DefaultCapacity, r.Cap())
	assert.Equal(t, -1, r.Head())
	assert.False(t, r.Filled())
}

func TestPushWrapsAndLatchesFilled(t *testing.T) {
	r := New[int](3)
	for i := 0; i < 3; i++ {
		r.Push(i)
	}
	assert.True(t, r.Filled())
	assert.Equal(t, 2, r.Head())

	r.Push(99)
	assert.Equal(t, 0, r.Head())
	assert.Equal(t, 99, r.At(0))
}

func TestFilledLatchesAndNeverClearsWithoutReset(t *testing.T) {
	r := New[int](2)
	r.Push(1)
	r.Push(2)
	require.True(t, r.Filled())
	r.Push(3)
	assert.True(t, r.Filled(), "Filled must remain set once latched")

	r.Reset()
	assert.False(t, r.Filled())
	assert.Equal(t, -1, r.Head())
}

func TestLenTracksFillState(t *testing.T) {
	r := New[int](4)
	assert.Equal(t, 0, r.Len())
	r.Push(1)
	assert.Equal(t, 1, r.Len())
	r.Push(2)
	r.Push(3)
	r.Push(4)
	assert.Equal(t, 4, r.Len())
	r.Push(5)
	assert.Equal(t, 4, r.Len())
}

func TestPrevWrapsBackward(t *testing.T) {
	r := New[int](4)
	assert.Equal(t, 3, r.Prev(0))
	assert.Equal(t, 0, r.Prev(1))
}

func TestEachChronologicalOrder(t *testing.T) {
	r := New[int](3)
	r.Push(1)
	r.Push(2)
	r.Push(3)
	r.Push(4) // wraps: storage now holds 4,2,3 in slots 0,1,2; oldest is 2

	var seen []int
	r.Each(func(v int) { seen = append(seen, v) })
	assert.Equal(t, []int{2, 3, 4}, seen)
}

func TestSetOverwritesWithoutAdvancingHead(t *testing.T) {
	r := New[int](3)
	idx := r.Push(10)
	r.Set(idx, 99)
	assert.Equal(t, 99, r.At(idx))
	assert.Equal(t, idx, r.Head())
}

func TestPushHeadInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cap := rapid.IntRange(1, 8).Draw(rt, "cap")
		n := rapid.IntRange(0, 40).Draw(rt, "n")
		r := New[int](cap)
		for i := 0; i < n; i++ {
			r.Push(i)
		}
		assert.GreaterOrEqual(t, r.Head(), -1)
		assert.Less(t, r.Head(), cap)
		if n >= cap {
			assert.True(t, r.Filled())
		}
	})
}
