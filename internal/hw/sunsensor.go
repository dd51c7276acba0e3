package hw

import (
	"github.com/nyx-sat/acsd/internal/frame"
	"periph.io/x/conn/v3/i2c"
)

// Fine sun sensor registers: two 16-bit signed incidence angles
// (millidegrees) and a status word, matching a nanoSSOC-A60-class
// analog sun sensor's I2C front end.
const (
	sunRegAngleX = 0x10
	sunRegAngleY = 0x12
	sunRegStatus = 0x14
)

// SunSensor wraps the fine sun sensor.
type SunSensor struct {
	dev    *i2c.Dev
	closer i2c.BusCloser
}

func OpenSunSensor(busName string, addr uint16) (*SunSensor, error) {
	dev, closer, err := OpenI2C(busName, addr)
	if err != nil {
		return nil, err
	}
	return &SunSensor{dev: dev, closer: closer}, nil
}

func (s *SunSensor) Close() error { return s.closer.Close() }

// Read returns the two incidence angles in degrees and the raw status
// word the sensor reports.
func (s *SunSensor) Read() (angleXDeg, angleYDeg float64, status frame.FineSunStatus, err error) {
	rawX, err := ReadRegister16(s.dev, sunRegAngleX)
	if err != nil {
		return 0, 0, 0, err
	}
	rawY, err := ReadRegister16(s.dev, sunRegAngleY)
	if err != nil {
		return 0, 0, 0, err
	}
	rawStatus, err := ReadRegister16(s.dev, sunRegStatus)
	if err != nil {
		return 0, 0, 0, err
	}
	return float64(rawX) / 1000.0, float64(rawY) / 1000.0, frame.FineSunStatus(uint16(rawStatus)), nil
}
