// Package tunables holds the spec's §3.5 scalar control parameters.
// Every field has an independent getter/setter pair; setters clamp
// before storing (idempotent — applying a setter twice with the same
// input is a no-op the second time), and getters always return the
// stored post-clamp value. Grounded on original_source/src/acs.c's
// acs_get_*/acs_set_* functions, which apply exactly these clamp rules.
package tunables

import (
	"math"
	"sync"

	"github.com/nyx-sat/acsd/internal/vec"
	"gonum.org/v1/gonum/mat"
)

const (
	defaultDipoleMoment = 0.22 // A·m²
	defaultTstepUS      = 100_000
	defaultMeasureUS    = 30_000
	defaultMinFireUS    = 10_000
	defaultSunpointDuty = 20_000
	defaultCSSThreshold = 20_000.0
	defaultLeeway       = 0.1
	defaultWTargetZ     = 0.5
	defaultDetumbleAng  = 10.0
	defaultSunAng       = 20.0
)

// Tunables is the single instance of clamped control parameters the
// loop driver owns for the life of the process.
type Tunables struct {
	mu sync.RWMutex

	dipoleMoment   float64
	tstepUS        uint32
	measureUS      uint32
	minFireUS      uint32
	sunpointDutyUS uint32
	cssLuxThresh   float64
	leewayFactor   float64
	wTargetZ       float64
	minDetumbleDeg float64
	minSunDeg      float64

	moi  *mat.Dense
	imoi *mat.Dense
}

// New returns a Tunables instance seeded with the spec's defaults,
// including the legacy flight computer's diagonal moment of inertia
// (original_source/src/acs.c: MOI/IMOI).
func New() *Tunables {
	t := &Tunables{
		dipoleMoment:   defaultDipoleMoment,
		tstepUS:        defaultTstepUS,
		measureUS:      defaultMeasureUS,
		minFireUS:      defaultMinFireUS,
		sunpointDutyUS: defaultSunpointDuty,
		cssLuxThresh:   defaultCSSThreshold,
		leewayFactor:   defaultLeeway,
		wTargetZ:       defaultWTargetZ,
		minDetumbleDeg: defaultDetumbleAng,
		minSunDeg:      defaultSunAng,
		moi:            mat.NewDense(3, 3, []float64{0.0821, 0, 0, 0, 0.0752, 0, 0, 0, 0.0874}),
		imoi:           mat.NewDense(3, 3, []float64{12.1733, 0, 0, 0, 13.2941, 0, 0, 0, 11.4661}),
	}
	return t
}

func (t *Tunables) GetDipoleMoment() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dipoleMoment
}

// SetDipoleMoment clamps any value <= 0 back to the default 0.22 A·m².
func (t *Tunables) SetDipoleMoment(d float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d <= 0 {
		d = defaultDipoleMoment
	}
	t.dipoleMoment = d
	return t.dipoleMoment
}

func (t *Tunables) GetTstepUS() uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tstepUS
}

func (t *Tunables) GetTstepMS() uint32 {
	return t.GetTstepUS() / 1000
}

// SetTstepMS rounds its millisecond argument down to a multiple of 10ms
// (minimum 100ms) and stores it internally as microseconds.
func (t *Tunables) SetTstepMS(ms uint32) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ms < 100 {
		ms = 100
	}
	ms = (ms / 10) * 10
	t.tstepUS = ms * 1000
	return t.tstepUS
}

func (t *Tunables) GetMeasureUS() uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.measureUS
}

func (t *Tunables) GetMeasureMS() uint32 {
	return t.GetMeasureUS() / 1000
}

// SetMeasureMS rounds to a multiple of 10ms and clamps to [20,50]ms.
func (t *Tunables) SetMeasureMS(ms uint32) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ms < 20 {
		ms = 20
	} else if ms > 50 {
		ms = 50
	}
	ms = (ms / 10) * 10
	t.measureUS = ms * 1000
	return t.measureUS
}

func (t *Tunables) GetMinFireUS() uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.minFireUS
}

func (t *Tunables) SetMinFireUS(us uint32) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.minFireUS = us
	return t.minFireUS
}

func (t *Tunables) GetSunpointDutyUS() uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sunpointDutyUS
}

func (t *Tunables) SetSunpointDutyUS(us uint32) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sunpointDutyUS = us
	return t.sunpointDutyUS
}

func (t *Tunables) GetCSSLuxThreshold() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cssLuxThresh
}

func (t *Tunables) SetCSSLuxThreshold(v float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cssLuxThresh = v
	return t.cssLuxThresh
}

// GetLeewayPercent returns round(1/leewayFactor) as the integer percent
// a caller originally set.
func (t *Tunables) GetLeewayPercent() uint8 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return uint8(math.Round(1 / t.leewayFactor))
}

func (t *Tunables) GetLeewayFactor() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.leewayFactor
}

// SetLeewayPercent clamps the integer percent to [5,50] and stores its
// reciprocal as the internal leeway factor.
func (t *Tunables) SetLeewayPercent(percent uint8) uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if percent < 5 {
		percent = 5
	} else if percent > 50 {
		percent = 50
	}
	t.leewayFactor = 1.0 / float64(percent)
	return percent
}

func (t *Tunables) GetWTargetZ() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.wTargetZ
}

// SetWTargetZ clamps the magnitude to [0.1, 2.0] rad/s, preserving sign.
func (t *Tunables) SetWTargetZ(w float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	sign := 1.0
	if w < 0 {
		sign = -1
	}
	mag := math.Abs(w)
	if mag < 0.1 {
		mag = 0.1
	} else if mag > 2.0 {
		mag = 2.0
	}
	t.wTargetZ = sign * mag
	return t.wTargetZ
}

func (t *Tunables) GetMinDetumbleAngleDeg() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.minDetumbleDeg
}

// SetMinDetumbleAngleDeg: values above 45 reset to 20 (not to the 10°
// default) rather than clamping to 45 (matches the legacy
// acs_set_detumble_ang, which resets rather than clamps).
func (t *Tunables) SetMinDetumbleAngleDeg(deg float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if deg > 45 {
		deg = 20
	}
	t.minDetumbleDeg = deg
	return t.minDetumbleDeg
}

func (t *Tunables) GetMinSunAngleDeg() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.minSunDeg
}

func (t *Tunables) SetMinSunAngleDeg(deg float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if deg > 45 {
		deg = 20
	}
	t.minSunDeg = deg
	return t.minSunDeg
}

// MOI returns a copy of the 3x3 moment-of-inertia matrix.
func (t *Tunables) MOI() *mat.Dense {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var c mat.Dense
	c.CloneFrom(t.moi)
	return &c
}

// SetMOI replaces the moment-of-inertia matrix (and does not
// automatically recompute its inverse — callers own both).
func (t *Tunables) SetMOI(m *mat.Dense) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.moi.CloneFrom(m)
}

// IMOI returns a copy of the inverse moment-of-inertia matrix.
func (t *Tunables) IMOI() *mat.Dense {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var c mat.Dense
	c.CloneFrom(t.imoi)
	return &c
}

func (t *Tunables) SetIMOI(m *mat.Dense) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.imoi.CloneFrom(m)
}

// MulMOI computes MOI · v (the angular momentum L for a given ω) using
// gonum's dense matrix-vector multiply.
func (t *Tunables) MulMOI(v vec.Vector3[float64]) vec.Vector3[float64] {
	return mulDense(t.MOI(), v)
}

// MulIMOI computes IMOI · v.
func (t *Tunables) MulIMOI(v vec.Vector3[float64]) vec.Vector3[float64] {
	return mulDense(t.IMOI(), v)
}

func mulDense(m *mat.Dense, v vec.Vector3[float64]) vec.Vector3[float64] {
	in := mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
	var out mat.VecDense
	out.MulVec(m, in)
	return vec.Vector3[float64]{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
