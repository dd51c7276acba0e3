// Package hw talks to the attitude sensors and magnetorquer driver over
// I2C and SPI using periph.io's bus primitives — the same library the
// teacher's mpu9250 IMU source uses, here driving raw register reads
// against devices with no existing periph.io driver (the mux, lux
// channels, sun sensors, and H-bridge are all bespoke flight hardware).
package hw

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

var hostInitOnce sync.Once
var hostInitErr error

// initHost runs periph.io's host.Init exactly once per process, as
// every periph driver requires before bus registries are populated.
func initHost() error {
	hostInitOnce.Do(func() {
		_, hostInitErr = host.Init()
	})
	return hostInitErr
}

// OpenI2C opens an I2C bus by device path and wraps it as a device at
// addr, ready for register-level reads/writes.
func OpenI2C(busName string, addr uint16) (*i2c.Dev, i2c.BusCloser, error) {
	if err := initHost(); err != nil {
		return nil, nil, fmt.Errorf("hw: periph host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, nil, fmt.Errorf("hw: open i2c bus %s: %w", busName, err)
	}
	return &i2c.Dev{Bus: bus, Addr: addr}, bus, nil
}

// OpenSPI opens an SPI device and returns a connection at a
// conservative 1MHz/mode-0, suitable for the H-bridge's shift-register
// command protocol.
func OpenSPI(devPath string) (spi.Conn, spi.PortCloser, error) {
	if err := initHost(); err != nil {
		return nil, nil, fmt.Errorf("hw: periph host init: %w", err)
	}
	port, err := spireg.Open(devPath)
	if err != nil {
		return nil, nil, fmt.Errorf("hw: open spi device %s: %w", devPath, err)
	}
	conn, err := port.Connect(1_000_000, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, nil, fmt.Errorf("hw: spi connect %s: %w", devPath, err)
	}
	return conn, port, nil
}

// ReadRegister16 reads a big-endian 16-bit register from an I2C device.
func ReadRegister16(dev *i2c.Dev, reg byte) (int16, error) {
	var buf [2]byte
	if err := dev.Tx([]byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	return int16(uint16(buf[0])<<8 | uint16(buf[1])), nil
}

// WriteRegister8 writes a single byte register over I2C.
func WriteRegister8(dev *i2c.Dev, reg, value byte) error {
	return dev.Tx([]byte{reg, value}, nil)
}
