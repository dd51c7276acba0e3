// Package loop implements the fixed-period cooperative control loop
// (spec §4.H), grounded on original_source/src/acs.c's acs_thread: a
// measurement phase bounded by measureUS, a deadline-bounded sleep to
// pad the tick out to tstepUS, then an actuation phase dispatched by
// mode, and a NaN-triggered buffer flush that falls back to NIGHT.
package loop

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nyx-sat/acsd/internal/buffers"
	"github.com/nyx-sat/acsd/internal/control"
	"github.com/nyx-sat/acsd/internal/corestate"
	"github.com/nyx-sat/acsd/internal/derive"
	"github.com/nyx-sat/acsd/internal/filter"
	"github.com/nyx-sat/acsd/internal/frame"
	"github.com/nyx-sat/acsd/internal/mode"
	"github.com/nyx-sat/acsd/internal/telemetry"
	"github.com/nyx-sat/acsd/internal/tunables"
	"github.com/nyx-sat/acsd/internal/vec"
)

// SensorReader is the boundary to the hw package's Sampler, narrowed to
// the one call the loop needs.
type SensorReader interface {
	ReadFrame() frame.SensorFrame
}

// Actuator is the boundary to the hw package's HBridge.
type Actuator interface {
	Enable(control.FireDirection) error
	DisableAxis(control.Axis) error
	DisableAll() error
}

// Sleeper abstracts time.Sleep so tests can run the loop without real
// delays.
type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// ControlCore is the loop driver's aggregate: every piece of state a
// tick touches, owned exclusively by the loop goroutine and exposed to
// peers only through Snapshot (spec §9's "narrow read-only snapshot").
type ControlCore struct {
	State    *corestate.State
	Buffers  *buffers.Buffers
	Tunables *tunables.Tunables

	bFilter  *filter.Bessel
	btFilter *filter.Bessel
	wFilter  *filter.Bessel

	tick            uint64
	tStartUS        uint64
	structuralFails uint32
	consecutiveNaN  int
}

// maxConsecutiveNaN is the number of back-to-back NaN ticks that counts
// as a structural failure event rather than ordinary sensor noise.
const maxConsecutiveNaN = 3

func NewControlCore(capacity int) *ControlCore {
	return &ControlCore{
		State:    corestate.New(),
		Buffers:  buffers.New(capacity),
		Tunables: tunables.New(),
		bFilter:  filter.New(capacity),
		btFilter: filter.New(capacity),
		wFilter:  filter.New(capacity),
	}
}

// Snapshot is the read-only view of core state a telemetry/command peer
// may consult without touching loop-goroutine-owned memory.
type Snapshot struct {
	Tick               uint64
	Mode               corestate.Mode
	B, Bdot            vec.Vector3[float64]
	W, S               vec.Vector3[float32]
	StructuralFailures uint32
}

// Driver runs the fixed-period loop.
type Driver struct {
	Core      *ControlCore
	Sensors   SensorReader
	Actuator  Actuator
	Publisher *telemetry.Publisher
	Log       *log.Logger
	Sleep     Sleeper

	snapshotCh chan Snapshot
}

func NewDriver(core *ControlCore, sensors SensorReader, act Actuator, pub *telemetry.Publisher, logger *log.Logger) *Driver {
	return &Driver{
		Core:       core,
		Sensors:    sensors,
		Actuator:   act,
		Publisher:  pub,
		Log:        logger,
		Sleep:      realSleeper{},
		snapshotCh: make(chan Snapshot, 1),
	}
}

// Run executes ticks until ctx is canceled. It never returns an error
// on its own — device failures are logged and the loop degrades
// gracefully, per spec §7's policy that no single-sensor failure
// aborts the mission.
func (d *Driver) Run(ctx context.Context) error {
	d.Core.tStartUS = nowUS()
	for {
		select {
		case <-ctx.Done():
			_ = d.Actuator.DisableAll()
			return ctx.Err()
		default:
		}
		d.tick()
	}
}

func (d *Driver) tick() {
	c := d.Core
	tickStart := nowUS()

	fr := d.Sensors.ReadFrame()
	tstepUS := c.Tunables.GetTstepUS()
	measureUS := c.Tunables.GetMeasureUS()

	bIdx := c.Buffers.B.Push(fr.B)
	filter.ApplyVector3InPlace(c.bFilter, c.Buffers.B, bIdx)

	hasEnoughForBdot := c.Buffers.B.Filled() || c.Buffers.B.Head() > 0
	var wSample vec.Vector3[float32]
	var bdotSample vec.Vector3[float64]
	if hasEnoughForBdot {
		bdotSample = derive.Bdot(c.Buffers.B, c.Buffers.Bt, c.btFilter, tstepUS)
		hasEnoughForOmega := c.Buffers.Bt.Filled() || c.Buffers.Bt.Head() > 0
		if hasEnoughForOmega {
			wSample = derive.Omega(c.Buffers.Bt, c.Buffers.W, c.wFilter, tstepUS)
		}
	}

	sunResult := derive.SunVector(fr, c.Buffers.S, c.Tunables.GetCSSLuxThreshold())
	c.State.NightTransient = sunResult.Night

	if fr.B.HasNaN() || wSample.HasNaN() || sunResult.S.HasNaN() {
		d.handleNaN()
		return
	}
	c.consecutiveNaN = 0

	d.runModeTransition()

	elapsedMeasure := nowUS() - tickStart
	sleepUS := int64(measureUS) - int64(elapsedMeasure)
	if sleepUS < 0 {
		// measurement overran its budget: fall back to padding out the
		// full tick period and skip actuation this cycle, matching the
		// legacy jitter-minimization branch in acs_thread.
		remaining := int64(tstepUS) - int64(elapsedMeasure)
		if remaining < 0 {
			remaining = 0
		}
		d.Sleep.Sleep(time.Duration(remaining) * time.Microsecond)
		d.publish(bdotSample, wSample, sunResult.S)
		return
	}
	d.Sleep.Sleep(time.Duration(sleepUS) * time.Microsecond)

	d.actuate(fr, wSample)
	d.publish(bdotSample, wSample, sunResult.S)
}

func (d *Driver) handleNaN() {
	c := d.Core
	c.consecutiveNaN++
	if c.consecutiveNaN >= maxConsecutiveNaN {
		c.structuralFails++
		d.Log.Warn("structural failure: buffers not stabilizing", "consecutive_nan", c.consecutiveNaN)
	}
	c.Buffers.Reset()
	c.State.Mode = corestate.Night
	d.Log.Warn("NaN detected in derived signal, flushing buffers", "mode", c.State.Mode)
}

func (d *Driver) runModeTransition() {
	// Mode transition itself lives in package mode; the driver only
	// decides whether enough history exists yet to call it, mirroring
	// checkTransition's own W_full/S_full early return.
	c := d.Core
	if !c.Buffers.W.Filled() || !c.Buffers.S.Filled() {
		return
	}
	avgOmega := buffers.AverageW(c.Buffers.W)
	currentSun := currentSunSample(c.Buffers.S)

	mode.Step(c.State, mode.Inputs{
		AvgOmega:            avgOmega,
		CurrentSun:          currentSun,
		WTargetZ:            c.Tunables.GetWTargetZ(),
		LeewayFrac:          c.Tunables.GetLeewayFactor(),
		MinDetumbleAngleDeg: c.Tunables.GetMinDetumbleAngleDeg(),
		MinSunAngleDeg:      c.Tunables.GetMinSunAngleDeg(),
	})
}

func (d *Driver) actuate(fr frame.SensorFrame, w vec.Vector3[float32]) {
	c := d.Core
	moi := c.Tunables.MulMOI
	w64 := vec.Convert[float64](w)

	switch c.State.Mode {
	case corestate.Detumble:
		cmd, ok := control.Detumble(w64, fr.B, control.DetumbleParams{
			DipoleMoment: c.Tunables.GetDipoleMoment(),
			MaxFiringUS:  c.Tunables.GetTstepUS() - c.Tunables.GetMeasureUS(),
			MinFiringUS:  c.Tunables.GetMinFireUS(),
			LTarget:      moi(vec.Vector3[float64]{Z: c.Tunables.GetWTargetZ()}),
			MOI:          moi,
		})
		if !ok {
			d.Sleep.Sleep(time.Duration(c.Tunables.GetTstepUS()-c.Tunables.GetMeasureUS()) * time.Microsecond)
			return
		}
		d.fireDetumble(cmd)
	case corestate.Sunpoint:
		sSample := vec.Convert[float64](currentSunSample(c.Buffers.S))
		cmd, ok := control.Sunpoint(w64, fr.B, sSample, control.SunpointParams{
			DutyCycleUS:    c.Tunables.GetSunpointDutyUS(),
			CoarseTimeStep: c.Tunables.GetTstepUS(),
			MeasureUS:      c.Tunables.GetMeasureUS(),
			MOI:            moi,
		})
		if !ok {
			d.Sleep.Sleep(time.Duration(c.Tunables.GetTstepUS()-c.Tunables.GetMeasureUS()) * time.Microsecond)
			return
		}
		d.fireSunpoint(cmd)
	default:
		d.Sleep.Sleep(time.Duration(c.Tunables.GetTstepUS()-c.Tunables.GetMeasureUS()) * time.Microsecond)
	}
}

func (d *Driver) fireDetumble(cmd control.DetumbleCommand) {
	if err := d.Actuator.Enable(cmd.Dir); err != nil {
		d.Log.Warn("hbridge enable failed", "err", err)
	}
	for _, step := range cmd.Steps {
		d.Sleep.Sleep(time.Duration(step.Duration) * time.Microsecond)
		if err := d.Actuator.DisableAxis(step.DisableAt); err != nil {
			d.Log.Warn("hbridge disable failed", "axis", step.DisableAt, "err", err)
		}
	}
	d.Sleep.Sleep(time.Duration(cmd.FinalWaitUS) * time.Microsecond)
	_ = d.Actuator.DisableAll()
}

func (d *Driver) fireSunpoint(cmd control.SunpointCommand) {
	dir := control.FireDirection{}
	dir[control.AxisZ] = cmd.Dir
	remaining := int64(cmd.FiringBudgetUS)
	for remaining > 0 {
		if err := d.Actuator.Enable(dir); err != nil {
			d.Log.Warn("hbridge enable failed", "err", err)
		}
		d.Sleep.Sleep(time.Duration(cmd.OnUS) * time.Microsecond)
		if cmd.OffUS > 0 {
			_ = d.Actuator.DisableAxis(control.AxisZ)
			d.Sleep.Sleep(time.Duration(cmd.OffUS) * time.Microsecond)
		}
		remaining -= int64(cmd.OnUS + cmd.OffUS)
	}
	_ = d.Actuator.DisableAxis(control.AxisZ)
}

func (d *Driver) publish(bdot vec.Vector3[float64], w, s vec.Vector3[float32]) {
	c := d.Core
	c.tick++
	if d.Publisher == nil {
		return
	}
	f := telemetry.Frame{
		Tick:               c.tick,
		TNowUS:             nowUS(),
		TStartUS:           c.tStartUS,
		Mode:               uint8(c.State.Mode),
		B:                  vec.Convert[float32](c.Buffers.B.At(c.Buffers.B.Head())),
		Bdot:               vec.Convert[float32](bdot),
		W:                  w,
		S:                  s,
		StructuralFailures: c.structuralFails,
	}
	select {
	case d.snapshotCh <- Snapshot{Tick: f.Tick, Mode: c.State.Mode, B: c.Buffers.B.At(c.Buffers.B.Head()), Bdot: bdot, W: w, S: s, StructuralFailures: c.structuralFails}:
	default:
	}
	if err := d.Publisher.Publish(f); err != nil {
		d.Log.Warn("telemetry publish failed", "err", err)
	}
}

// Snapshots returns the channel peers read the most recent Snapshot
// from (non-blocking send on the loop side — a slow peer simply misses
// a tick rather than stalling the control loop).
func (d *Driver) Snapshots() <-chan Snapshot {
	return d.snapshotCh
}

func currentSunSample(s interface {
	At(int) vec.Vector3[float32]
	Head() int
}) vec.Vector3[float32] {
	return s.At(s.Head())
}

func nowUS() uint64 {
	return uint64(time.Now().UnixMicro())
}
