package hw

import (
	"github.com/nyx-sat/acsd/internal/control"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
)

// HBridge drives a 3-channel SPI-shift-register H-bridge (an
// NCV7718-class driver): each channel's sign is latched into a command
// byte, then shifted out and strobed on the chip-select line.
type HBridge struct {
	conn   spi.Conn
	port   spi.PortCloser
	cs     gpio.PinOut
	output [3]int8 // last commanded direction per axis, -1/0/1
}

func OpenHBridge(spiDev, csPinName string) (*HBridge, error) {
	conn, port, err := OpenSPI(spiDev)
	if err != nil {
		return nil, err
	}
	var cs gpio.PinOut
	if csPinName != "" {
		cs = gpioreg.ByName(csPinName)
	}
	return &HBridge{conn: conn, port: port, cs: cs}, nil
}

func (h *HBridge) Close() error { return h.port.Close() }

// SetOutput stages a direction for one axis without transmitting yet.
func (h *HBridge) SetOutput(axis control.Axis, dir int8) {
	h.output[axis] = dir
}

// Exec shifts the three staged directions out over SPI as a single
// command byte (two bits per channel: the low bit drives the rod
// forward, the high bit drives it in reverse, neither means off) and
// strobes CS.
func (h *HBridge) Exec() error {
	var cmd byte
	for axis, dir := range h.output {
		shift := uint(axis * 2)
		switch {
		case dir > 0:
			cmd |= 0x1 << shift
		case dir < 0:
			cmd |= 0x2 << shift
		}
	}
	if h.cs != nil {
		if err := h.cs.Out(gpio.Low); err != nil {
			return err
		}
		defer h.cs.Out(gpio.High)
	}
	return h.conn.Tx([]byte{cmd}, nil)
}

// Enable stages and transmits dir for every axis in one call — the
// firing half of the detumble/sunpoint cycle.
func (h *HBridge) Enable(dir control.FireDirection) error {
	h.output = dir
	return h.Exec()
}

// DisableAxis zeroes one channel and re-transmits — the staged
// per-axis turnoffs the detumble firing sequence issues.
func (h *HBridge) DisableAxis(axis control.Axis) error {
	h.output[axis] = 0
	return h.Exec()
}

// DisableAll zeroes every channel — the safety call the detumble firing
// sequence issues at the end of a tick (the sunpoint sequence disables
// only the Z channel).
func (h *HBridge) DisableAll() error {
	h.output = [3]int8{}
	return h.Exec()
}
