package hw

import "periph.io/x/conn/v3/i2c"

// luxRegCmdRead is the command-register value that triggers a combined
// visible+IR read on the coarse sun sensor's light-to-digital chip.
const luxRegCmdRead = 0x80 | 0x0C

// LuxSensor wraps one coarse sun sensor photodiode channel.
type LuxSensor struct {
	dev    *i2c.Dev
	closer i2c.BusCloser
}

func OpenLuxSensor(busName string, addr uint16) (*LuxSensor, error) {
	dev, closer, err := OpenI2C(busName, addr)
	if err != nil {
		return nil, err
	}
	return &LuxSensor{dev: dev, closer: closer}, nil
}

func (l *LuxSensor) Close() error { return l.closer.Close() }

// Measure reads the 16-bit lux count. A non-nil error means the read
// failed and the caller should treat this channel as degraded for the
// tick (but not necessarily latch the whole mux channel — see
// Sampler.ReadFrame).
func (l *LuxSensor) Measure() (uint16, error) {
	var buf [2]byte
	if err := l.dev.Tx([]byte{luxRegCmdRead}, buf[:]); err != nil {
		return 0, err
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}
