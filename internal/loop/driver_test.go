package loop

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyx-sat/acsd/internal/control"
	"github.com/nyx-sat/acsd/internal/corestate"
	"github.com/nyx-sat/acsd/internal/frame"
	"github.com/nyx-sat/acsd/internal/vec"
)

type fakeSensor struct {
	frame frame.SensorFrame
	calls *int
}

// ReadFrame perturbs B by a small amount each call so Ḃ/ω never collapse
// to an exact zero vector (which would divide by zero downstream) while
// still reporting the same sun/fine-sensor state every tick.
func (f fakeSensor) ReadFrame() frame.SensorFrame {
	fr := f.frame
	if f.calls != nil {
		n := float64(*f.calls)
		*f.calls++
		fr.B = fr.B.Add(vec.New(n, n*0.7, n*0.3))
	}
	return fr
}

type fakeActuator struct {
	enables  []control.FireDirection
	disables []control.Axis
	disabled int
}

func (a *fakeActuator) Enable(dir control.FireDirection) error {
	a.enables = append(a.enables, dir)
	return nil
}
func (a *fakeActuator) DisableAxis(axis control.Axis) error {
	a.disables = append(a.disables, axis)
	return nil
}
func (a *fakeActuator) DisableAll() error {
	a.disabled++
	return nil
}

type instantSleeper struct{ total time.Duration }

func (s *instantSleeper) Sleep(d time.Duration) { s.total += d }

func healthyFrame() frame.SensorFrame {
	return frame.SensorFrame{
		B:         vec.New(120.0, -40.0, 300.0),
		FSSStatus: frame.StatusOK,
		FSSAngleX: 1.0,
		FSSAngleY: -1.0,
		MagOK:     true,
	}
}

func newTestDriver(fr frame.SensorFrame) (*Driver, *fakeActuator) {
	core := NewControlCore(4)
	act := &fakeActuator{}
	logger := log.New(io.Discard)
	calls := new(int)
	d := NewDriver(core, fakeSensor{frame: fr, calls: calls}, act, nil, logger)
	d.Sleep = &instantSleeper{}
	return d, act
}

func TestTickIncrementsCounterOnHealthyFrames(t *testing.T) {
	d, _ := newTestDriver(healthyFrame())
	for i := 0; i < 5; i++ {
		d.tick()
	}
	assert.EqualValues(t, 5, d.Core.tick)
}

func TestNaNFrameDoesNotAdvanceTickAndForcesNight(t *testing.T) {
	fr := healthyFrame()
	fr.B.X = nanFloat()
	d, _ := newTestDriver(fr)
	d.Core.State.Mode = corestate.Ready

	d.tick()

	assert.EqualValues(t, 0, d.Core.tick)
	assert.Equal(t, corestate.Night, d.Core.State.Mode)
	assert.Equal(t, 1, d.Core.consecutiveNaN)
}

func TestRepeatedNaNRecordsStructuralFailure(t *testing.T) {
	fr := healthyFrame()
	fr.B.X = nanFloat()
	d, _ := newTestDriver(fr)

	for i := 0; i < maxConsecutiveNaN; i++ {
		d.tick()
	}

	assert.EqualValues(t, 1, d.Core.structuralFails)
}

func TestConsecutiveNaNResetsAfterHealthyFrame(t *testing.T) {
	badFrame := healthyFrame()
	badFrame.B.X = nanFloat()

	d, _ := newTestDriver(badFrame)
	d.tick()
	assert.Equal(t, 1, d.Core.consecutiveNaN)

	d.Sensors = fakeSensor{frame: healthyFrame(), calls: new(int)}
	d.tick()
	assert.Equal(t, 0, d.Core.consecutiveNaN)
}

func TestActuateDetumbleEnablesActuator(t *testing.T) {
	d, act := newTestDriver(healthyFrame())
	d.Core.State.Mode = corestate.Detumble

	d.actuate(healthyFrame(), vec.New[float32](0.3, -0.2, 0.1))

	require.NotEmpty(t, act.enables)
	assert.Equal(t, 1, act.disabled)
}

func TestActuateSunpointEnablesActuator(t *testing.T) {
	d, act := newTestDriver(healthyFrame())
	d.Core.State.Mode = corestate.Sunpoint
	d.Core.Buffers.S.Push(vec.New[float32](0.1, 0.2, 0.9))

	d.actuate(healthyFrame(), vec.New[float32](0.1, 0.1, 0.1))

	require.NotEmpty(t, act.enables)
}

func TestActuateIdleModeSleepsWithoutFiring(t *testing.T) {
	d, act := newTestDriver(healthyFrame())
	d.Core.State.Mode = corestate.Night

	d.actuate(healthyFrame(), vec.New[float32](0, 0, 0))

	assert.Empty(t, act.enables)
}

func nanFloat() float64 {
	var zero float64
	return zero / zero
}
