// Package control implements the two actuation laws the loop driver
// runs once per tick depending on mode: bang-bang detumble (spec §4.F)
// and PWM sunpoint (spec §4.G). Both are grounded on
// original_source/src/acs.c's detumbleAction/sunpointAction, with the
// usleep-driven firing sequences replaced by command values
// (DetumbleCommand, SunpointCommand) the loop driver executes against
// the magnetorquer driver and a clock.
package control

import (
	"math"
	"sort"

	"github.com/nyx-sat/acsd/internal/vec"
)

// Axis identifies one of the three magnetorquer rods.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// FireDirection is -1, 0, or +1 per axis: the sign the H-bridge should
// drive that rod, or 0 for "do not fire".
type FireDirection [3]int8

// FiringStep is one segment of a firing sequence: fire according to
// Dir for Duration, then the loop driver disables the single rod
// DisableAt before moving to the next step.
type FiringStep struct {
	Duration  uint32 // microseconds
	DisableAt Axis   // which rod's H-bridge channel to cut after this step
}

// DetumbleCommand is the full result of one detumble control-law
// evaluation: the fire direction plus the three-segment disable
// sequence (shortest-fire-time-first, per the legacy insertion sort)
// and the final idle wait to fill out the tick.
type DetumbleCommand struct {
	Dir         FireDirection
	Steps       [3]FiringStep
	FinalWaitUS uint32
}

// DetumbleParams bundles the tunables the law needs, so callers don't
// reach into the tunables package from inside a pure function.
type DetumbleParams struct {
	DipoleMoment  float64 // A·m²
	MaxFiringUS   uint32  // DETUMBLE_TIME_STEP - MEASURE_TIME
	MinFiringUS   uint32
	LTarget       vec.Vector3[float64] // target angular momentum, usually zero except about Z
	MOI           func(vec.Vector3[float64]) vec.Vector3[float64]
}

// Detumble evaluates the bang-bang law for one tick given the current
// filtered angular velocity w and magnetic field b (both body-frame,
// b in milligauss). It returns false if b is degenerate (zero field —
// nothing to steer against).
func Detumble(w, b vec.Vector3[float64], p DetumbleParams) (DetumbleCommand, bool) {
	bNorm := b.Normalize()
	if bNorm.Norm2() == 0 {
		return DetumbleCommand{}, false
	}

	currL := p.MOI(w)
	lError := p.LTarget.Sub(currL)
	lErrorNorm := lError.Normalize()

	firingDir := bNorm.Cross(lErrorNorm)

	var dir FireDirection
	var fire vec.Vector3[float64]
	dir[AxisX], fire.X = signedFire(firingDir.X)
	dir[AxisY], fire.Y = signedFire(firingDir.Y)
	dir[AxisZ], fire.Z = signedFire(firingDir.Z)

	dipole := fire.Scale(p.DipoleMoment * 1e-7)
	torque := dipole.Cross(b)

	firingTimeUS := [3]int64{
		clampFiringTime(lError.X, torque.X, p.MinFiringUS, p.MaxFiringUS),
		clampFiringTime(lError.Y, torque.Y, p.MinFiringUS, p.MaxFiringUS),
		clampFiringTime(lError.Z, torque.Z, p.MinFiringUS, p.MaxFiringUS),
	}

	order := []int{0, 1, 2}
	times := firingTimeUS
	insertionSort(times[:], order)

	finalWait := int64(p.MaxFiringUS) - times[2]
	seg2 := times[2] - times[1]
	seg1 := times[1] - times[0]

	cmd := DetumbleCommand{
		Dir: dir,
		Steps: [3]FiringStep{
			{Duration: clampPositive(times[0]), DisableAt: Axis(order[0])},
			{Duration: clampPositive(seg1), DisableAt: Axis(order[1])},
			{Duration: clampPositive(seg2), DisableAt: Axis(order[2])},
		},
		FinalWaitUS: clampPositive(finalWait),
	}
	return cmd, true
}

// signedFire returns the ±1 direction for a firing-direction component
// and the signed 1/0/-1 magnitude used in the dipole moment vector: a
// component under 0.01 in magnitude does not fire at all.
func signedFire(component float64) (int8, float64) {
	sign := int8(1)
	if component < 0 {
		sign = -1
	}
	if math.Abs(component) <= 0.01 {
		return 0, 0
	}
	return sign, float64(sign)
}

// clampFiringTime computes the signed ratio lError/torque in
// microseconds and clamps it to [minUS, maxUS], mapping "below minUS"
// (including any negative ratio) to 0 rather than minUS —
// a firing pulse shorter than the rod's response time is not worth
// issuing at all.
func clampFiringTime(lError, torque float64, minUS, maxUS uint32) int64 {
	if torque == 0 {
		return 0
	}
	seconds := lError / torque
	us := seconds * 1e6
	if us > float64(maxUS) {
		return int64(maxUS)
	}
	if us < float64(minUS) {
		return 0
	}
	return int64(us)
}

func clampPositive(v int64) uint32 {
	if v < 1 {
		return 1
	}
	return uint32(v)
}

// insertionSort sorts times ascending in place, permuting order in
// lockstep — the same stable small-N sort original_source/src/acs.c
// hand-rolls for exactly three elements.
func insertionSort(times []int64, order []int) {
	sort.Stable(&pairSort{times: times, order: order})
}

type pairSort struct {
	times []int64
	order []int
}

func (p *pairSort) Len() int { return len(p.times) }
func (p *pairSort) Less(i, j int) bool { return p.times[i] < p.times[j] }
func (p *pairSort) Swap(i, j int) {
	p.times[i], p.times[j] = p.times[j], p.times[i]
	p.order[i], p.order[j] = p.order[j], p.order[i]
}
