package vec

import "github.com/golang/geo/r3"

// ToR3 lifts a double-precision Vector3 into golang/geo's r3.Vector so
// callers can use its numerically stable Angle() instead of acos(dot).
func ToR3(v Vector3[float64]) r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

// FromR3 lowers an r3.Vector back into the pipeline's own vector type.
func FromR3(v r3.Vector) Vector3[float64] {
	return Vector3[float64]{X: v.X, Y: v.Y, Z: v.Z}
}
