package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyx-sat/acsd/internal/vec"
)

func identityMOI(v vec.Vector3[float64]) vec.Vector3[float64] { return v }

func TestDetumbleDegenerateFieldReturnsFalse(t *testing.T) {
	_, ok := Detumble(vec.New(0.1, 0.2, 0.3), vec.Vector3[float64]{}, DetumbleParams{
		MOI: identityMOI, MaxFiringUS: 70_000, MinFiringUS: 10_000,
	})
	assert.False(t, ok)
}

func TestDetumbleFiringTimesAreOrderedAscending(t *testing.T) {
	cmd, ok := Detumble(
		vec.New(0.5, -0.3, 0.1),
		vec.New(200.0, -150.0, 50.0),
		DetumbleParams{
			DipoleMoment: 0.22,
			MaxFiringUS:  70_000,
			MinFiringUS:  10_000,
			MOI:          identityMOI,
		},
	)
	require.True(t, ok)
	assert.LessOrEqual(t, cmd.Steps[0].Duration, cmd.Steps[0].Duration+cmd.Steps[1].Duration)
	for _, s := range cmd.Steps {
		assert.GreaterOrEqual(t, s.Duration, uint32(1))
	}
}

func TestDetumbleSegmentsSumToMaxFiringBudget(t *testing.T) {
	const maxUS = 70_000
	cmd, ok := Detumble(
		vec.New(0.5, -0.3, 0.1),
		vec.New(200.0, -150.0, 50.0),
		DetumbleParams{
			DipoleMoment: 0.22,
			MaxFiringUS:  maxUS,
			MinFiringUS:  10_000,
			MOI:          identityMOI,
		},
	)
	require.True(t, ok)
	var total uint32
	for _, s := range cmd.Steps {
		total += s.Duration
	}
	total += cmd.FinalWaitUS
	assert.InDelta(t, maxUS, total, 3)
}

func TestDetumbleDisableOrderIsAPermutation(t *testing.T) {
	cmd, ok := Detumble(
		vec.New(-0.2, 0.4, -0.1),
		vec.New(-80.0, 30.0, 120.0),
		DetumbleParams{
			DipoleMoment: 0.22,
			MaxFiringUS:  70_000,
			MinFiringUS:  10_000,
			MOI:          identityMOI,
		},
	)
	require.True(t, ok)
	seen := map[Axis]bool{}
	for _, s := range cmd.Steps {
		seen[s.DisableAt] = true
	}
	assert.Len(t, seen, 3)
	assert.True(t, seen[AxisX] && seen[AxisY] && seen[AxisZ])
}

func TestClampFiringTimeZeroTorqueYieldsZero(t *testing.T) {
	assert.EqualValues(t, 0, clampFiringTime(1.0, 0, 10_000, 70_000))
}

func TestClampFiringTimeBelowMinIsZero(t *testing.T) {
	assert.EqualValues(t, 0, clampFiringTime(1e-9, 1.0, 10_000, 70_000))
}

func TestClampFiringTimeClampsToMax(t *testing.T) {
	assert.EqualValues(t, 70_000, clampFiringTime(1.0, 1e-9, 10_000, 70_000))
}

func TestSignedFireDeadband(t *testing.T) {
	sign, fire := signedFire(0.005)
	assert.EqualValues(t, 0, sign)
	assert.EqualValues(t, 0, fire)

	sign, fire = signedFire(-0.5)
	assert.EqualValues(t, -1, sign)
	assert.EqualValues(t, -1, fire)
}
