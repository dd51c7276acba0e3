// Package buffers owns the four ring buffers the control loop fills
// every tick (spec §4.B): magnetic field B, its first difference Ḃ,
// derived angular velocity ω, and the sun vector S. Update ordering is
// an invariant the loop driver must respect: B must be pushed before
// Bt (Bt is computed from two B samples), and Bt before W (W is
// computed from two Bt samples); S has no dependency on the other
// three and is pushed independently.
package buffers

import (
	"github.com/nyx-sat/acsd/internal/ring"
	"github.com/nyx-sat/acsd/internal/vec"
)

// Buffers groups the four per-tick ring buffers at the capacity the
// Bessel filter kernel was sized for.
type Buffers struct {
	B  *ring.Ring[vec.Vector3[float64]] // magnetic field samples, mG
	Bt *ring.Ring[vec.Vector3[float64]] // first difference of B, mG/s
	W  *ring.Ring[vec.Vector3[float32]] // derived angular velocity, rad/s
	S  *ring.Ring[vec.Vector3[float32]] // sun-pointing unit vector
}

// New allocates all four buffers at the given capacity (spec default
// is ring.DefaultCapacity, 64).
func New(capacity int) *Buffers {
	return &Buffers{
		B:  ring.New[vec.Vector3[float64]](capacity),
		Bt: ring.New[vec.Vector3[float64]](capacity),
		W:  ring.New[vec.Vector3[float32]](capacity),
		S:  ring.New[vec.Vector3[float32]](capacity),
	}
}

// Reset clears all four buffers and their Filled latches — performed
// only on the NaN-triggered flush recovery path (spec §4.H), never as
// part of normal operation.
func (b *Buffers) Reset() {
	b.B.Reset()
	b.Bt.Reset()
	b.W.Reset()
	b.S.Reset()
}

// AverageW returns the arithmetic mean of every sample currently held
// in the angular-velocity ring — the quantity the mode controller
// compares against the detumble threshold. It returns the zero vector
// if the buffer is empty.
func AverageW(w *ring.Ring[vec.Vector3[float32]]) vec.Vector3[float32] {
	return average(w)
}

// AverageS returns the mean sun vector over the filled portion of the
// ring, used by the mode controller's sun-pointing predicate.
func AverageS(s *ring.Ring[vec.Vector3[float32]]) vec.Vector3[float32] {
	return average(s)
}

func average(r *ring.Ring[vec.Vector3[float32]]) vec.Vector3[float32] {
	n := r.Len()
	if n == 0 {
		return vec.Vector3[float32]{}
	}
	var sum vec.Vector3[float32]
	r.Each(func(v vec.Vector3[float32]) {
		sum = sum.Add(v)
	})
	return sum.Scale(1.0 / float32(n))
}
