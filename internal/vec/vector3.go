// Package vec implements the fixed-size vector algebra the attitude
// pipeline is built on: Vector3[T] for T in {float32, float64}.
package vec

import "math"

// Number is the set of component types a Vector3 may hold. The pipeline
// carries double-precision vectors for B/Ḃ and single-precision vectors
// for ω/S (per the ring layout the spec mandates), so both are needed.
type Number interface {
	~float32 | ~float64
}

// Vector3 is a three-component vector sharing a single numeric type. It
// has no implicit broadcasting: every operand of a binary operation must
// already be a Vector3[T] of the same T.
type Vector3[T Number] struct {
	X, Y, Z T
}

func New[T Number](x, y, z T) Vector3[T] {
	return Vector3[T]{X: x, Y: y, Z: z}
}

func (v Vector3[T]) Add(o Vector3[T]) Vector3[T] {
	return Vector3[T]{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector3[T]) Sub(o Vector3[T]) Vector3[T] {
	return Vector3[T]{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector3[T]) Scale(s T) Vector3[T] {
	return Vector3[T]{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3[T]) Div(s T) Vector3[T] {
	return Vector3[T]{v.X / s, v.Y / s, v.Z / s}
}

func (v Vector3[T]) Cross(o Vector3[T]) Vector3[T] {
	return Vector3[T]{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector3[T]) Dot(o Vector3[T]) T {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Norm2 is the squared Euclidean norm, cheaper than Norm when only the
// magnitude ordering (or a division by it) matters — the ω derivation
// divides by exactly this quantity.
func (v Vector3[T]) Norm2() T {
	return v.Dot(v)
}

func (v Vector3[T]) Norm() T {
	return T(math.Sqrt(float64(v.Norm2())))
}

// Normalize returns the zero vector when the squared norm is zero,
// rather than producing NaN/Inf components.
func (v Vector3[T]) Normalize() Vector3[T] {
	n2 := v.Norm2()
	if n2 == 0 {
		return Vector3[T]{}
	}
	return v.Div(T(math.Sqrt(float64(n2))))
}

// HasNaN reports whether any component is NaN or ±Inf — the pipeline's
// total-finite check for the legacy self-comparison NaN test (§9).
func (v Vector3[T]) HasNaN() bool {
	return isBad(v.X) || isBad(v.Y) || isBad(v.Z)
}

func isBad[T Number](x T) bool {
	f := float64(x)
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// Convert changes the component type, e.g. float64 -> float32 when a
// double-precision vector must be written into a single-precision ring.
func Convert[To, From Number](v Vector3[From]) Vector3[To] {
	return Vector3[To]{To(v.X), To(v.Y), To(v.Z)}
}
