// Package mode implements the five-state control mode machine (spec
// §4.E), grounded directly on original_source/src/acs.c's
// checkTransition. Angles between body-frame vectors are computed with
// github.com/golang/geo/r3's Angle method rather than acos(dot), which
// is numerically unstable near 0°/180° and saturates to NaN on
// floating-point overshoot past ±1.
package mode

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/nyx-sat/acsd/internal/corestate"
	"github.com/nyx-sat/acsd/internal/vec"
)

// SunNormThreshold is the sun-vector norm below which the satellite is
// considered to be in eclipse (original: NORM(avgSun) < 0.8f). Step
// applies it to Inputs.CurrentSun, the most recent sample, which is a
// unit vector in daylight and the zero vector when night detection
// zeroed it.
const SunNormThreshold = 0.8

// bodyZ is the body-frame vector the controller measures all angles
// against (original_source: z_body = 1).
var bodyZ = r3.Vector{X: 0, Y: 0, Z: 1}

// Inputs bundles one tick's averaged signals the mode controller reads.
type Inputs struct {
	AvgOmega   vec.Vector3[float32] // time-averaged angular velocity over the ω ring
	CurrentSun vec.Vector3[float32] // the most recent sun-vector sample (not time-averaged)
	WTargetZ   float64
	LeewayFrac float64 // OMEGA_TARGET_LEEWAY = WTargetZ * LeewayFrac
	MinDetumbleAngleDeg float64
	MinSunAngleDeg      float64
}

// Step advances st in place given this tick's inputs and returns the
// angles it computed, for telemetry/logging. Step does not check
// whether the ω and S buffers report Filled — callers must gate the
// call on that themselves, matching the original's W_full/S_full early
// return.
func Step(st *corestate.State, in Inputs) (omegaAngleDeg, sunAngleDeg float64) {
	avgOmega := r3.Vector{X: float64(in.AvgOmega.X), Y: float64(in.AvgOmega.Y), Z: float64(in.AvgOmega.Z)}
	sun := r3.Vector{X: float64(in.CurrentSun.X), Y: float64(in.CurrentSun.Y), Z: float64(in.CurrentSun.Z)}

	wTargetDiff := in.WTargetZ - float64(in.AvgOmega.Z)
	leeway := math.Abs(in.WTargetZ * in.LeewayFrac)

	omegaAngleDeg = 0
	if avgOmega.Norm() > 0 {
		omegaAngleDeg = radToDeg(avgOmega.Angle(bodyZ))
	}
	sunAngleDeg = 0
	if sun.Norm() > 0 {
		sunAngleDeg = radToDeg(sun.Angle(bodyZ))
	}

	sunNorm := sun.Norm()
	st.NightTransient = sunNorm < SunNormThreshold

	detumbled := math.Abs(omegaAngleDeg) < in.MinDetumbleAngleDeg && math.Abs(wTargetDiff) < leeway
	needsDetumble := math.Abs(omegaAngleDeg) > in.MinDetumbleAngleDeg || math.Abs(wTargetDiff) > leeway
	needsDetumbleWithLeeway := math.Abs(omegaAngleDeg) > in.MinDetumbleAngleDeg || math.Abs(wTargetDiff) > leeway*3
	sunPointed := math.Abs(sunAngleDeg) < in.MinSunAngleDeg

	next := st.Mode
	switch st.Mode {
	case corestate.Detumble:
		if detumbled {
			next = corestate.Night
			st.FirstDetumbleDone = true
		}
		if st.FirstDetumbleDone && st.NightTransient {
			next = corestate.Night
		}

	case corestate.Sunpoint:
		if needsDetumbleWithLeeway {
			next = corestate.Detumble
		}
		if st.NightTransient {
			next = corestate.Night
		}
		if sunPointed {
			next = corestate.Ready
		}

	case corestate.Night:
		if !st.NightTransient {
			if needsDetumble {
				next = corestate.Detumble
			} else if sunPointed {
				next = corestate.Ready
			} else {
				next = corestate.Sunpoint
			}
		}

	case corestate.Ready:
		if st.NightTransient {
			next = corestate.Night
		} else {
			if needsDetumble {
				next = corestate.Detumble
			} else if !sunPointed {
				next = corestate.Sunpoint
			} else {
				next = corestate.Ready
			}
		}

	case corestate.XBandReady:
		// Supplemental state (not present in the legacy controller):
		// entered only externally (ground command) once READY has held
		// long enough; it falls back through the same predicates READY
		// uses, since an X-band pass requires everything READY does.
		if st.NightTransient {
			next = corestate.Night
		} else if needsDetumble {
			next = corestate.Detumble
		} else if !sunPointed {
			next = corestate.Sunpoint
		}
	}

	st.Mode = next
	return omegaAngleDeg, sunAngleDeg
}

func radToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
