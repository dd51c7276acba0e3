package hw

import "periph.io/x/conn/v3/i2c"

// Mux drives a TCA9458A-style I2C channel multiplexer: a single
// control register selects which downstream bus segment is live.
type Mux struct {
	dev    *i2c.Dev
	closer i2c.BusCloser
}

// DisableChannel is the control-register value that disconnects every
// downstream segment (original: tca9458a_set(mux, 8)).
const DisableChannel = 0x00

func OpenMux(busName string, addr uint16) (*Mux, error) {
	dev, closer, err := OpenI2C(busName, addr)
	if err != nil {
		return nil, err
	}
	return &Mux{dev: dev, closer: closer}, nil
}

func (m *Mux) Close() error { return m.closer.Close() }

// SetChannel writes the channel-select bitmask (1<<channel) for a
// channel >= 0; any negative channel writes DisableChannel to mask
// every segment off.
func (m *Mux) SetChannel(channel int) error {
	var mask byte
	if channel >= 0 {
		mask = 1 << uint(channel)
	}
	return m.dev.Tx([]byte{mask}, nil)
}
