package control

import (
	"math"

	"github.com/nyx-sat/acsd/internal/vec"
)

// SunpointParams bundles the tunables the sunpoint law needs.
type SunpointParams struct {
	DutyCycleUS    uint32 // SUNPOINT_DUTY_CYCLE
	CoarseTimeStep uint32 // one tick's total duration budget, usually == DutyCycleUS's period source
	MeasureUS      uint32
	MOI            func(vec.Vector3[float64]) vec.Vector3[float64]
}

// SunpointCommand is a repeating on/off Z-axis fire cycle: fire Z in
// Dir for OnUS, then idle for OffUS, repeated until FiringBudgetUS of
// wall time has been spent.
type SunpointCommand struct {
	Dir            int8
	OnUS, OffUS    uint32
	FiringBudgetUS uint32
}

// Sunpoint evaluates the PWM steering law given the current filtered
// angular velocity w, magnetic field b, and sun vector s (all
// body-frame; b in milligauss). It returns false if b is degenerate.
func Sunpoint(w, b vec.Vector3[float64], s vec.Vector3[float64], p SunpointParams) (SunpointCommand, bool) {
	bNorm := b.Normalize()
	if bNorm.Norm2() == 0 {
		return SunpointCommand{}, false
	}
	sNorm := s.Normalize()
	currL := p.MOI(w)

	sdotB := sNorm.Dot(bNorm)
	sbHat := bNorm.Scale(sdotB).Add(sNorm).Normalize()

	ldotB := currL.Dot(bNorm)
	lbHat := bNorm.Scale(ldotB).Add(currL).Normalize()

	steer := sbHat.Cross(lbHat).Normalize()

	sunAng := math.Abs(s.Z)
	gain := math.Round(sunAng * 32)
	if gain < 1 {
		gain = 1
	}

	timeOnF := steer.Dot(bNorm) * float64(p.DutyCycleUS) * gain
	dir := int8(1)
	if timeOnF < 0 {
		dir = -1
		timeOnF = -timeOnF
	}
	timeOn := uint32(timeOnF)
	if timeOn > p.DutyCycleUS {
		timeOn = p.DutyCycleUS
	}
	if timeOn < 5000 && timeOn > 2499 {
		timeOn = 5000
	}
	timeOn = 10000 * uint32(math.Round(float64(timeOn)/10000.0))
	timeOn /= 5000
	timeOn *= 5000

	timeOff := p.DutyCycleUS - timeOn
	budget := p.CoarseTimeStep - p.MeasureUS

	return SunpointCommand{
		Dir:            dir,
		OnUS:           timeOn,
		OffUS:          timeOff,
		FiringBudgetUS: budget,
	}, true
}
