// Package derive computes the pipeline's second-order signals — the
// magnetic field's first difference Ḃ, the gyro-free angular velocity
// ω, and the sun-pointing unit vector S — from the raw samples already
// pushed into the buffers package's ring buffers (spec §4.D). Grounded
// on original_source/src/acs.c's readSensors/getOmega/getSVec, which
// compute exactly these quantities over parallel x/y/z arrays; this
// package lifts the same arithmetic onto vec.Vector3 and ring.Ring.
package derive

import (
	"math"

	"github.com/nyx-sat/acsd/internal/filter"
	"github.com/nyx-sat/acsd/internal/frame"
	"github.com/nyx-sat/acsd/internal/ring"
	"github.com/nyx-sat/acsd/internal/vec"
)

// Bdot computes the first difference of the two newest B samples,
// Ḃ = (B[m1] - B[m0]) * freq, freq = 1e6/tstepUS, pushes it into bt,
// Bessel-filters it in place and returns the filtered value. The caller
// pushes B itself. It requires at least two B samples to have been pushed;
// callers must check b.Filled() || b.Head() > 0 before the second tick.
func Bdot(b, bt *ring.Ring[vec.Vector3[float64]], bf *filter.Bessel, tstepUS uint32) vec.Vector3[float64] {
	m1 := b.Head()
	m0 := b.Prev(m1)
	freq := 1e6 / float64(tstepUS)
	diff := b.At(m1).Sub(b.At(m0)).Scale(freq)
	idx := bt.Push(diff)
	filter.ApplyVector3InPlace(bf, bt, idx)
	return bt.At(idx)
}

// Omega computes ω from two consecutive filtered Ḃ samples:
//
//	ω = (Ḃ[m1] × Ḃ[m0]) * freq / |Ḃ[m0]|²
//
// and Bessel-filters the result in place before returning it. The
// legacy inertia-correction term (ω × MOI·ω run through IMOI) is
// deliberately not applied — the original author's own comment next to
// it reads "There is fast runaway with this on".
func Omega(bt *ring.Ring[vec.Vector3[float64]], w *ring.Ring[vec.Vector3[float32]], wf *filter.Bessel, tstepUS uint32) vec.Vector3[float32] {
	m1 := bt.Head()
	m0 := bt.Prev(m1)
	freq := 1e6 / float64(tstepUS)
	btm0 := bt.At(m0)
	norm2 := btm0.Norm2()

	raw := bt.At(m1).Cross(btm0).Scale(freq / norm2)
	idx := w.Push(vec.Convert[float32](raw))
	filter.ApplyVector3InPlace(wf, w, idx)
	return w.At(idx)
}

// SunResult is the outcome of one SunVector call: the derived vector
// (zero during night) and whether night was detected this tick.
type SunResult struct {
	S     vec.Vector3[float32]
	Night bool
}

// SunVector derives the sun-pointing unit vector. When the fine sun
// sensor reports no error bits, its two incidence angles are converted
// to a tangent-plane vector (fss reads degrees, sign-reversed in
// hardware) and normalized. Otherwise it falls back to the coarse sun
// sensors: X and Y are the differences of their ± channel pairs, Z is
// the +Z channel minus the average of the two -Z channels, and if the
// resulting vector's norm falls below
// cssLuxThreshold (tunables.Tunables.GetCSSLuxThreshold) the tick is
// night (S is reported as zero).
func SunVector(fr frame.SensorFrame, s *ring.Ring[vec.Vector3[float32]], cssLuxThreshold float64) SunResult {
	var result vec.Vector3[float32]
	night := false

	if !fr.FSSStatus.HasError() {
		fsx := -fr.FSSAngleX
		fsy := -fr.FSSAngleY
		raw := vec.Vector3[float64]{
			X: math.Tan(fsx * math.Pi / 180),
			Y: math.Tan(fsy * math.Pi / 180),
			Z: 1,
		}.Normalize()
		result = vec.Convert[float32](raw)
	} else {
		znavg := (float64(fr.CSS[5]) + float64(fr.CSS[6])) * 0.5
		raw := vec.Vector3[float64]{
			X: float64(fr.CSS[0]) - float64(fr.CSS[1]),
			Y: float64(fr.CSS[2]) - float64(fr.CSS[3]),
			Z: float64(fr.CSS[4]) - znavg,
		}
		if raw.Norm() < cssLuxThreshold {
			night = true
			result = vec.Vector3[float32]{}
		} else {
			result = vec.Convert[float32](raw.Normalize())
		}
	}

	idx := s.Push(result)
	return SunResult{S: s.At(idx), Night: night}
}
