// Sampler implements the per-tick sensor read sequence (spec §4.A),
// grounded on original_source/src/acs.c's readSensors: the mux is
// stepped through its three channels, a channel whose every device
// read fails on a given tick latches as failed and is skipped on every
// subsequent tick, but a single sensor failure within a still-live
// channel does not latch it — any one successful read on the channel
// clears that tick's failure.
package hw

import (
	"github.com/charmbracelet/log"

	"github.com/nyx-sat/acsd/internal/frame"
)

// Sampler owns every sensor driver and the mux channel-failure latch.
type Sampler struct {
	Mag *Magnetometer
	Mux *Mux
	Lux [7]*LuxSensor
	Sun *SunSensor

	failed frame.ChannelMask
	log    *log.Logger
}

func NewSampler(mag *Magnetometer, mux *Mux, lux [7]*LuxSensor, sun *SunSensor, logger *log.Logger) *Sampler {
	return &Sampler{Mag: mag, Mux: mux, Lux: lux, Sun: sun, log: logger}
}

// channelSensors maps each of the mux's three physical channels to the
// lux sensor indices wired behind it, mirroring the legacy firmware's
// three-channel grouping (channel 0: CSS 0-2, channel 1: CSS 3-5,
// channel 2: CSS 6 alone).
var channelSensors = [3][]int{
	{0, 1, 2},
	{3, 4, 5},
	{6},
}

// ReadFrame executes one full sensor read: magnetometer, the three-channel
// coarse sun sensor sweep (skipping latched-failed channels), then the
// fine sun sensor. It never returns an error — a degraded read is
// reported through the returned SensorFrame's fields instead, matching
// the legacy readSensors' policy of always proceeding to filtering.
func (s *Sampler) ReadFrame() frame.SensorFrame {
	var fr frame.SensorFrame

	mx, my, mz, err := s.Mag.ReadRaw()
	if err != nil {
		s.log.Warn("magnetometer read failed", "err", err)
		fr.MagOK = false
	} else {
		fr.B = frame.MagFieldFromRaw(mx, my, mz)
		fr.MagOK = true
	}

	for ch := 0; ch < 3; ch++ {
		if s.failed[ch] {
			continue
		}
		if err := s.Mux.SetChannel(ch); err != nil {
			s.log.Warn("mux channel select failed", "channel", ch, "err", err)
			continue
		}
		chanOK := false
		for _, idx := range channelSensors[ch] {
			if s.Lux[idx] == nil {
				continue
			}
			v, err := s.Lux[idx].Measure()
			if err != nil {
				s.log.Debug("lux channel read failed", "index", idx, "err", err)
				continue
			}
			fr.CSS[idx] = v
			chanOK = true
		}
		s.failed[ch] = !chanOK
	}
	_ = s.Mux.SetChannel(-1) // disable mux, matches the legacy tca9458a_set(mux, 8) safety call

	angleX, angleY, status, err := s.Sun.Read()
	if err != nil {
		s.log.Warn("fine sun sensor read failed", "err", err)
		fr.FSSStatus = frame.StatusDivZero
	} else {
		fr.FSSAngleX, fr.FSSAngleY, fr.FSSStatus = angleX, angleY, status
	}

	return fr
}

// ResetChannelLatches clears every mux channel's failure latch — called
// only at process start (spec §4.A forbids clearing it mid-run).
func (s *Sampler) ResetChannelLatches() {
	s.failed.Reset()
}
