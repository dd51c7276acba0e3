package tunables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/nyx-sat/acsd/internal/vec"
)

func TestDefaults(t *testing.T) {
	tn := New()
	assert.Equal(t, defaultDipoleMoment, tn.GetDipoleMoment())
	assert.Equal(t, uint32(defaultTstepUS), tn.GetTstepUS())
	assert.Equal(t, uint32(defaultMeasureUS), tn.GetMeasureUS())
}

func TestSetDipoleMomentClampsNonPositive(t *testing.T) {
	tn := New()
	assert.Equal(t, defaultDipoleMoment, tn.SetDipoleMoment(-1))
	assert.Equal(t, defaultDipoleMoment, tn.SetDipoleMoment(0))
	assert.Equal(t, 0.5, tn.SetDipoleMoment(0.5))
}

func TestSetTstepMSRoundsAndClampsMinimum(t *testing.T) {
	tn := New()
	assert.Equal(t, uint32(100_000), tn.SetTstepMS(50))
	assert.Equal(t, uint32(120_000), tn.SetTstepMS(125))
	assert.Equal(t, uint32(120), tn.GetTstepMS())
}

func TestSetTstepMSIdempotent(t *testing.T) {
	tn := New()
	first := tn.SetTstepMS(237)
	second := tn.SetTstepMS(tn.GetTstepMS())
	assert.Equal(t, first, second)
}

func TestSetMeasureMSClampsRange(t *testing.T) {
	tn := New()
	assert.Equal(t, uint32(20_000), tn.SetMeasureMS(5))
	assert.Equal(t, uint32(50_000), tn.SetMeasureMS(999))
	assert.Equal(t, uint32(30_000), tn.SetMeasureMS(33))
}

func TestGetSetWTargetZRoundTrip(t *testing.T) {
	tn := New()
	got := tn.SetWTargetZ(1.2)
	assert.Equal(t, got, tn.GetWTargetZ())
	assert.Equal(t, got, tn.SetWTargetZ(got))
}

func TestSetWTargetZClampsMagnitudePreservesSign(t *testing.T) {
	tn := New()
	assert.InDelta(t, -0.1, tn.SetWTargetZ(-0.0001), 1e-9)
	assert.InDelta(t, 2.0, tn.SetWTargetZ(50), 1e-9)
	assert.InDelta(t, -2.0, tn.SetWTargetZ(-50), 1e-9)
}

func TestSetLeewayPercentClampsAndRoundTrips(t *testing.T) {
	tn := New()
	assert.Equal(t, uint8(5), tn.SetLeewayPercent(1))
	assert.Equal(t, uint8(50), tn.SetLeewayPercent(90))
	tn.SetLeewayPercent(20)
	assert.Equal(t, uint8(20), tn.GetLeewayPercent())
	assert.InDelta(t, 0.05, tn.GetLeewayFactor(), 1e-9)
}

func TestSetMinDetumbleAngleDegResetsAboveMax(t *testing.T) {
	tn := New()
	assert.Equal(t, 20.0, tn.SetMinDetumbleAngleDeg(80))
	assert.Equal(t, 30.0, tn.SetMinDetumbleAngleDeg(30))
}

func TestSetMinSunAngleDegResetsAboveMax(t *testing.T) {
	tn := New()
	assert.Equal(t, defaultSunAng, tn.SetMinSunAngleDeg(46))
}

func TestMulMOIandIMOIAreInverses(t *testing.T) {
	tn := New()
	w := vec.New(1.0, 2.0, 3.0)
	l := tn.MulMOI(w)
	back := tn.MulIMOI(l)
	assert.InDelta(t, w.X, back.X, 1e-2)
	assert.InDelta(t, w.Y, back.Y, 1e-2)
	assert.InDelta(t, w.Z, back.Z, 1e-2)
}

func TestSetTstepMSAlwaysMultipleOfTen(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ms := rapid.Uint32Range(0, 10_000).Draw(rt, "ms")
		tn := New()
		got := tn.SetTstepMS(ms)
		assert.Equal(t, uint32(0), (got/1000)%10)
		assert.GreaterOrEqual(t, got, uint32(100_000))
	})
}
