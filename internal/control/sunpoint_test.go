package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyx-sat/acsd/internal/vec"
)

func TestSunpointDegenerateFieldReturnsFalse(t *testing.T) {
	_, ok := Sunpoint(vec.New(0.1, 0.0, 0.0), vec.Vector3[float64]{}, vec.New(0.0, 0.0, 1.0), SunpointParams{
		DutyCycleUS: 20_000, CoarseTimeStep: 100_000, MeasureUS: 30_000, MOI: identityMOI,
	})
	assert.False(t, ok)
}

func TestSunpointOnTimeIsMultipleOf5000(t *testing.T) {
	cmd, ok := Sunpoint(
		vec.New(0.01, -0.02, 0.03),
		vec.New(150.0, -200.0, 100.0),
		vec.New(0.1, 0.2, 0.9),
		SunpointParams{DutyCycleUS: 20_000, CoarseTimeStep: 100_000, MeasureUS: 30_000, MOI: identityMOI},
	)
	require.True(t, ok)
	assert.Equal(t, uint32(0), cmd.OnUS%5000)
}

func TestSunpointOnPlusOffEqualsDutyCycle(t *testing.T) {
	cmd, ok := Sunpoint(
		vec.New(0.01, -0.02, 0.03),
		vec.New(150.0, -200.0, 100.0),
		vec.New(0.1, 0.2, 0.9),
		SunpointParams{DutyCycleUS: 20_000, CoarseTimeStep: 100_000, MeasureUS: 30_000, MOI: identityMOI},
	)
	require.True(t, ok)
	assert.Equal(t, cmd.OnUS+cmd.OffUS, uint32(20_000))
}

func TestSunpointBudgetIsCoarseMinusMeasure(t *testing.T) {
	cmd, ok := Sunpoint(
		vec.New(0.01, -0.02, 0.03),
		vec.New(150.0, -200.0, 100.0),
		vec.New(0.1, 0.2, 0.9),
		SunpointParams{DutyCycleUS: 20_000, CoarseTimeStep: 100_000, MeasureUS: 30_000, MOI: identityMOI},
	)
	require.True(t, ok)
	assert.Equal(t, uint32(70_000), cmd.FiringBudgetUS)
}

func TestSunpointDirIsSign(t *testing.T) {
	cmd, ok := Sunpoint(
		vec.New(0.0, 0.0, 0.0),
		vec.New(100.0, 0.0, 0.0),
		vec.New(0.0, 1.0, 0.0),
		SunpointParams{DutyCycleUS: 20_000, CoarseTimeStep: 100_000, MeasureUS: 30_000, MOI: identityMOI},
	)
	require.True(t, ok)
	assert.True(t, cmd.Dir == 1 || cmd.Dir == -1)
}
