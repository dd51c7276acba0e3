// Package sysconfig loads the deployment-level configuration: bus
// device paths, MQTT broker/topics, and the bootcount file location.
// Values here are fixed for the life of the process — they are not the
// spec's §3.5 tunables, which have independent clamped getters/setters
// and live in package tunables.
//
// Structured the way the teacher's internal/config package is: a flat
// KEY=VALUE text file, a per-key switch in setValue, and a package-level
// singleton behind sync.Once + sync.RWMutex.
package sysconfig

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds deployment configuration values.
type Config struct {
	// MQTT
	MQTTBroker      string
	MQTTClientID    string
	TopicTelemetry  string
	TopicBessel     string // raw-channel sub-topic; loaded but not read by any binary here

	// Bus device paths
	MagI2CBus    string
	MagI2CAddr   uint16
	MuxI2CBus    string
	MuxI2CAddr   uint16
	LuxI2CBus    string
	LuxI2CAddrs  [7]uint16
	SunI2CBus    string
	SunI2CAddr   uint16
	HBridgeSPI   string
	HBridgeCSPin string

	// Persisted state
	BootcountFile string

	// Timing overrides (microseconds); 0 means "use the tunables default"
	TstepUSOverride   int
	MeasureUSOverride int

	LogLevel string
}

var (
	global     *Config
	globalOnce sync.Once
	mu         sync.RWMutex
)

// Default returns a Config populated with the values a bench/SITL run
// needs with no config file present.
func Default() *Config {
	return &Config{
		MQTTBroker:     "tcp://localhost:1883",
		MQTTClientID:   "acsd",
		TopicTelemetry: "acs/telemetry",
		TopicBessel:    "acs/telemetry/raw",

		MagI2CBus:  "/dev/i2c-1",
		MagI2CAddr: 0x6b,
		MuxI2CBus:  "/dev/i2c-1",
		MuxI2CAddr: 0x70,
		LuxI2CBus:  "/dev/i2c-1",
		LuxI2CAddrs: [7]uint16{
			0x39, 0x29, 0x49, 0x39, 0x29, 0x49, 0x39,
		},
		SunI2CBus:  "/dev/i2c-1",
		SunI2CAddr: 0x2d,

		HBridgeSPI:   "/dev/spidev0.0",
		HBridgeCSPin: "",

		BootcountFile: "/var/lib/acsd/bootcount",
		LogLevel:      "info",
	}
}

// Load reads a KEY=VALUE config file over Default()'s values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("sysconfig: open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("sysconfig: invalid line %d: %q", lineNum, line)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("sysconfig: line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sysconfig: reading %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) setValue(key, value string) error {
	switch key {
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "TOPIC_TELEMETRY":
		c.TopicTelemetry = value
	case "TOPIC_BESSEL":
		c.TopicBessel = value
	case "MAG_I2C_BUS":
		c.MagI2CBus = value
	case "MAG_I2C_ADDR":
		v, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid MAG_I2C_ADDR %q: %w", value, err)
		}
		c.MagI2CAddr = uint16(v)
	case "MUX_I2C_BUS":
		c.MuxI2CBus = value
	case "MUX_I2C_ADDR":
		v, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid MUX_I2C_ADDR %q: %w", value, err)
		}
		c.MuxI2CAddr = uint16(v)
	case "LUX_I2C_BUS":
		c.LuxI2CBus = value
	case "SUN_I2C_BUS":
		c.SunI2CBus = value
	case "SUN_I2C_ADDR":
		v, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid SUN_I2C_ADDR %q: %w", value, err)
		}
		c.SunI2CAddr = uint16(v)
	case "HBRIDGE_SPI_DEVICE":
		c.HBridgeSPI = value
	case "HBRIDGE_CS_PIN":
		c.HBridgeCSPin = value
	case "BOOTCOUNT_FILE":
		c.BootcountFile = value
	case "TSTEP_US_OVERRIDE":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TSTEP_US_OVERRIDE %q: %w", value, err)
		}
		c.TstepUSOverride = v
	case "MEASURE_US_OVERRIDE":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MEASURE_US_OVERRIDE %q: %w", value, err)
		}
		c.MeasureUSOverride = v
	case "LOG_LEVEL":
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return nil
}

// InitGlobal initializes the global configuration from a file path
// (empty means defaults only). Safe to call from multiple goroutines;
// only the first call takes effect.
func InitGlobal(path string) error {
	var err error
	globalOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		global, err = Load(path)
	})
	return err
}

// Get returns the global configuration. InitGlobal must run first.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return global
}
