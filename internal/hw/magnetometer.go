package hw

import "periph.io/x/conn/v3/i2c"

// Magnetometer registers for the flight 3-axis mag sensor (a bespoke
// register map, so no existing periph.io driver applies — only the
// bus primitives are reused).
const (
	magRegOutXL = 0x28
	magRegOutXH = 0x29
	magRegOutYL = 0x2A
	magRegOutYH = 0x2B
	magRegOutZL = 0x2C
	magRegOutZH = 0x2D
)

// Magnetometer wraps the raw I2C device for the 3-axis sensor.
type Magnetometer struct {
	dev    *i2c.Dev
	closer i2c.BusCloser
}

func OpenMagnetometer(busName string, addr uint16) (*Magnetometer, error) {
	dev, closer, err := OpenI2C(busName, addr)
	if err != nil {
		return nil, err
	}
	return &Magnetometer{dev: dev, closer: closer}, nil
}

func (m *Magnetometer) Close() error { return m.closer.Close() }

// ReadRaw returns the three raw 16-bit axis counts, low byte first
// (little-endian register pairs, as the flight sensor's datasheet
// specifies), sign-extended into int16.
func (m *Magnetometer) ReadRaw() (mx, my, mz int16, err error) {
	mx, err = m.readAxis(magRegOutXL, magRegOutXH)
	if err != nil {
		return
	}
	my, err = m.readAxis(magRegOutYL, magRegOutYH)
	if err != nil {
		return
	}
	mz, err = m.readAxis(magRegOutZL, magRegOutZH)
	return
}

func (m *Magnetometer) readAxis(regLo, regHi byte) (int16, error) {
	var lo, hi [1]byte
	if err := m.dev.Tx([]byte{regLo}, lo[:]); err != nil {
		return 0, err
	}
	if err := m.dev.Tx([]byte{regHi}, hi[:]); err != nil {
		return 0, err
	}
	return int16(uint16(hi[0])<<8 | uint16(lo[0])), nil
}
