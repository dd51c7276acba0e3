// Package frame defines the raw sensor measurements collected once per
// tick (spec §3.3) and the fine-sun-sensor status bitmask (§6.4).
package frame

import "github.com/nyx-sat/acsd/internal/vec"

// FineSunStatus is the bitmask a fine sun sensor read returns.
type FineSunStatus uint32

const (
	StatusIndexMin FineSunStatus = 1 << iota
	StatusIndexMax
	StatusAngleX
	StatusAngleY
	StatusDivZero
)

// StatusOK is the empty mask: no error bit set.
const StatusOK FineSunStatus = 0

// HasError reports whether any of the five defined error bits is set.
func (s FineSunStatus) HasError() bool {
	return s&(StatusIndexMin|StatusIndexMax|StatusAngleX|StatusAngleY|StatusDivZero) != 0
}

// MagScaleLSBPerMilliGauss is the magnetometer's datasheet scale factor
// (spec §3.3): 6.842 LSB per milligauss.
const MagScaleLSBPerMilliGauss = 6.842

// MagFieldFromRaw applies the body-frame sign convention and scale
// factor to a raw 3-axis magnetometer reading: Bx = -my/scale,
// By = mx/scale, Bz = mz/scale.
func MagFieldFromRaw(mx, my, mz int16) vec.Vector3[float64] {
	return vec.Vector3[float64]{
		X: -float64(my) / MagScaleLSBPerMilliGauss,
		Y: float64(mx) / MagScaleLSBPerMilliGauss,
		Z: float64(mz) / MagScaleLSBPerMilliGauss,
	}
}

// ChannelMask latches per-mux-channel failure: once every lux read on a
// channel has failed, that channel is skipped on subsequent ticks until
// an explicit reset.
type ChannelMask [3]bool

// Reset clears all three channel latches — only performed at process
// init, never mid-run (spec §4.A).
func (m *ChannelMask) Reset() {
	m[0], m[1], m[2] = false, false, false
}

// SensorFrame is one tick's worth of raw measurements.
type SensorFrame struct {
	B vec.Vector3[float64] // magnetic field, engineering units (mG), sign-corrected

	// CSS holds the seven raw lux channel readings (16-bit range).
	CSS [7]uint16

	// FSSAngleX/Y are the fine sun sensor's two incidence angles, in
	// degrees, and FSSStatus is its status bitmask, returned verbatim.
	FSSAngleX, FSSAngleY float64
	FSSStatus            FineSunStatus

	// MagOK is false when the magnetometer read failed; the tick still
	// proceeds (a magnetometer failure is reported but never aborts the
	// tick, per §4.A), but downstream code can log the degraded sample.
	MagOK bool
}
