// Package filter implements the fixed Bessel-weighted moving average
// applied to the newest end of a ring buffer (spec §4.C). Grounded on
// original_source/src/bessel.c (calculateBessel / dfilterBessel /
// ffilterBessel) — same reverse-Bessel-polynomial weights, same
// backward walk with early termination, reimplemented generically over
// the module's own Ring/Vector3 types instead of three parallel x/y/z
// arrays.
package filter

import (
	"math"

	"github.com/nyx-sat/acsd/internal/ring"
	"github.com/nyx-sat/acsd/internal/vec"
)

// MinThreshold is the coefficient magnitude below which the filter
// kernel terminates early.
const MinThreshold = 0.001

// DefaultOrder and DefaultCutoff are the order-3, cutoff-5 Bessel filter
// the spec mandates for every scalar and vector channel.
const (
	DefaultOrder  = 3
	DefaultCutoff = 5.0
)

// Weights computes N coefficients of a reverse-Bessel-polynomial filter
// of the given order (capped at 5) and cutoff. w[0] is always 1: the
// numerator coefficients are c_i = (2n-i)! / (2^(n-i) * i! * (n-i)!),
// and w[j] = c_0 / Σ_i c_i * (j/cutoff)^i.
func Weights(n int, order int, cutoff float64) []float64 {
	if order > 5 {
		order = 5
	}
	coeff := make([]float64, order+1)
	for i := 0; i <= order; i++ {
		coeff[i] = factorial(2*order-i) / (math.Pow(2, float64(order-i)) * factorial(i) * factorial(order-i))
	}
	w := make([]float64, n)
	for j := 0; j < n; j++ {
		var sum float64
		pow := 1.0
		for i := 0; i <= order; i++ {
			sum += coeff[i] * pow
			pow *= float64(j) / cutoff
		}
		w[j] = coeff[0] / sum
	}
	return w
}

func factorial(n int) float64 {
	if n <= 1 {
		return 1
	}
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

// Bessel holds a precomputed weight kernel sized for a particular ring
// capacity, so it is computed once at startup and reused every tick.
type Bessel struct {
	weights []float64
}

func New(capacity int) *Bessel {
	return &Bessel{weights: Weights(capacity, DefaultOrder, DefaultCutoff)}
}

// ApplyScalar walks backward from index through r (wrapping at the
// start), multiplying each element by the next weight, stopping when a
// weight drops below MinThreshold, the walk returns to index, or
// capacity steps have been taken. It returns the weighted sum divided
// by the sum of applied weights — the same quantity the legacy
// dfilterBessel/ffilterBessel compute.
func ApplyScalar[T ~float32 | ~float64](f *Bessel, r *ring.Ring[T], index int) T {
	var val, wsum float64
	i := index
	for k, w := range f.weights {
		val += w * float64(r.At(i))
		wsum += w
		i = r.Prev(i)
		if i == index || w < MinThreshold || k+1 >= r.Cap() {
			break
		}
	}
	if wsum == 0 {
		return r.At(index)
	}
	return T(val / wsum)
}

// ApplyVector3 is ApplyScalar lifted component-wise over a ring of
// Vector3[T] — the filter applies the identical weight kernel to scalar
// and vector channels alike (spec §4.C).
func ApplyVector3[T vec.Number](f *Bessel, r *ring.Ring[vec.Vector3[T]], index int) vec.Vector3[T] {
	var vx, vy, vz, wsum float64
	i := index
	for k, w := range f.weights {
		e := r.At(i)
		vx += w * float64(e.X)
		vy += w * float64(e.Y)
		vz += w * float64(e.Z)
		wsum += w
		i = r.Prev(i)
		if i == index || w < MinThreshold || k+1 >= r.Cap() {
			break
		}
	}
	if wsum == 0 {
		return r.At(index)
	}
	return vec.Vector3[T]{X: T(vx / wsum), Y: T(vy / wsum), Z: T(vz / wsum)}
}

// ApplyVector3InPlace applies ApplyVector3 and writes the filtered
// value back over the just-inserted sample at index — the behavior the
// legacy APPLY_DBESSEL/APPLY_FBESSEL macros implement by assigning the
// filtered result back into x_name[index]/y_name[index]/z_name[index].
func ApplyVector3InPlace[T vec.Number](f *Bessel, r *ring.Ring[vec.Vector3[T]], index int) {
	r.Set(index, ApplyVector3(f, r, index))
}
