// Package app wires the control loop, hardware drivers, and telemetry
// publisher into a runnable worker — the same role the teacher's
// RunWeb/RunInertialProducer play for their own domains.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/nyx-sat/acsd/internal/bootcount"
	"github.com/nyx-sat/acsd/internal/control"
	"github.com/nyx-sat/acsd/internal/hw"
	"github.com/nyx-sat/acsd/internal/loop"
	"github.com/nyx-sat/acsd/internal/ring"
	"github.com/nyx-sat/acsd/internal/sysconfig"
	"github.com/nyx-sat/acsd/internal/telemetry"
)

// InitError wraps a subsystem init failure with the exit code spec
// §6.9 requires the binary report for it.
type InitError struct {
	Subsystem string
	Code      int
	Err       error
}

func (e *InitError) Error() string { return fmt.Sprintf("%s init: %v", e.Subsystem, e.Err) }
func (e *InitError) Unwrap() error { return e.Err }

// Exit codes for each subsystem RunACS can fail to initialize, per
// spec §6.9 ("non-zero indicates init failure in a particular
// subsystem").
const (
	ExitBootcount    = 10
	ExitMagnetometer = 11
	ExitMux          = 12
	ExitSunSensor    = 13
	ExitHBridge      = 14
)

// RunACS initializes every sensor and actuator driver, runs the
// first-boot warm-up pulse if this is the process's first-ever start,
// and then runs the control loop until SIGINT/SIGTERM.
func RunACS() error {
	cfg := sysconfig.Get()
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: parseLevel(cfg.LogLevel)})

	boot, err := bootcount.Load(cfg.BootcountFile)
	if err != nil {
		return &InitError{"bootcount", ExitBootcount, err}
	}

	mag, err := hw.OpenMagnetometer(cfg.MagI2CBus, cfg.MagI2CAddr)
	if err != nil {
		return &InitError{"magnetometer", ExitMagnetometer, err}
	}
	mux, err := hw.OpenMux(cfg.MuxI2CBus, cfg.MuxI2CAddr)
	if err != nil {
		return &InitError{"mux", ExitMux, err}
	}
	var lux [7]*hw.LuxSensor
	for i, addr := range cfg.LuxI2CAddrs {
		l, err := hw.OpenLuxSensor(cfg.LuxI2CBus, addr)
		if err != nil {
			logger.Warn("lux sensor init failed, channel will read as degraded", "index", i, "err", err)
			continue
		}
		lux[i] = l
	}
	sun, err := hw.OpenSunSensor(cfg.SunI2CBus, cfg.SunI2CAddr)
	if err != nil {
		return &InitError{"sun sensor", ExitSunSensor, err}
	}
	bridge, err := hw.OpenHBridge(cfg.HBridgeSPI, cfg.HBridgeCSPin)
	if err != nil {
		return &InitError{"h-bridge", ExitHBridge, err}
	}

	sampler := hw.NewSampler(mag, mux, lux, sun, logger)
	sampler.ResetChannelLatches()

	pub, err := telemetry.NewPublisher(cfg.MQTTBroker, cfg.MQTTClientID, cfg.TopicTelemetry)
	if err != nil {
		logger.Warn("telemetry publisher unavailable, continuing without it", "err", err)
		pub = nil
	}

	core := loop.NewControlCore(ring.DefaultCapacity)
	if cfg.TstepUSOverride > 0 {
		core.Tunables.SetTstepMS(uint32(cfg.TstepUSOverride) / 1000)
	}
	if cfg.MeasureUSOverride > 0 {
		core.Tunables.SetMeasureMS(uint32(cfg.MeasureUSOverride) / 1000)
	}

	driver := loop.NewDriver(core, sampler, bridge, pub, logger)

	if bootcount.IsFirstBoot(boot) {
		logger.Info("first boot detected, running magnetorquer warm-up self-check")
		if err := warmUpSelfCheck(bridge); err != nil {
			logger.Warn("warm-up self-check reported an error", "err", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting attitude control loop", "tstep_us", core.Tunables.GetTstepUS())
	err = driver.Run(ctx)
	if pub != nil {
		pub.Close()
	}
	if err == context.Canceled {
		return nil
	}
	return err
}

// warmUpSelfCheck fires each magnetorquer rod briefly in turn — the
// only self-test the original firmware had no equivalent for; this is
// a supplemental safety check added because flight acceptance review
// of any first boot wants proof every H-bridge channel is alive.
func warmUpSelfCheck(bridge *hw.HBridge) error {
	for axis := control.AxisX; axis <= control.AxisZ; axis++ {
		dir := control.FireDirection{}
		dir[axis] = 1
		if err := bridge.Enable(dir); err != nil {
			return err
		}
		if err := bridge.DisableAxis(axis); err != nil {
			return err
		}
	}
	return bridge.DisableAll()
}

func parseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
