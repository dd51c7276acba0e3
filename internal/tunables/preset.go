package tunables

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is the YAML-serializable snapshot of every clamped field —
// used by cmd/acstune to save/load named bench and SITL configurations
// without touching the running process's tunables API directly.
type Preset struct {
	DipoleMoment        float64 `yaml:"dipole_moment"`
	TstepMS             uint32  `yaml:"tstep_ms"`
	MeasureMS           uint32  `yaml:"measure_ms"`
	MinFireUS           uint32  `yaml:"min_fire_us"`
	SunpointDutyUS      uint32  `yaml:"sunpoint_duty_us"`
	CSSLuxThreshold     float64 `yaml:"css_lux_threshold"`
	LeewayPercent       uint8   `yaml:"leeway_percent"`
	WTargetZ            float64 `yaml:"wtarget_z"`
	MinDetumbleAngleDeg float64 `yaml:"min_detumble_angle_deg"`
	MinSunAngleDeg      float64 `yaml:"min_sun_angle_deg"`
}

// ToPreset snapshots the current values.
func (t *Tunables) ToPreset() Preset {
	return Preset{
		DipoleMoment:        t.GetDipoleMoment(),
		TstepMS:             t.GetTstepMS(),
		MeasureMS:           t.GetMeasureMS(),
		MinFireUS:           t.GetMinFireUS(),
		SunpointDutyUS:      t.GetSunpointDutyUS(),
		CSSLuxThreshold:     t.GetCSSLuxThreshold(),
		LeewayPercent:       t.GetLeewayPercent(),
		WTargetZ:            t.GetWTargetZ(),
		MinDetumbleAngleDeg: t.GetMinDetumbleAngleDeg(),
		MinSunAngleDeg:      t.GetMinSunAngleDeg(),
	}
}

// ApplyPreset runs every field through its clamped setter — loading a
// preset never bypasses the same validation a live setter call would.
func (t *Tunables) ApplyPreset(p Preset) {
	t.SetDipoleMoment(p.DipoleMoment)
	t.SetTstepMS(p.TstepMS)
	t.SetMeasureMS(p.MeasureMS)
	t.SetMinFireUS(p.MinFireUS)
	t.SetSunpointDutyUS(p.SunpointDutyUS)
	t.SetCSSLuxThreshold(p.CSSLuxThreshold)
	t.SetLeewayPercent(p.LeewayPercent)
	t.SetWTargetZ(p.WTargetZ)
	t.SetMinDetumbleAngleDeg(p.MinDetumbleAngleDeg)
	t.SetMinSunAngleDeg(p.MinSunAngleDeg)
}

// SavePreset writes p as YAML to path.
func SavePreset(path string, p Preset) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("tunables: marshal preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("tunables: write preset %s: %w", path, err)
	}
	return nil
}

// LoadPreset reads a YAML preset from path.
func LoadPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("tunables: read preset %s: %w", path, err)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("tunables: unmarshal preset %s: %w", path, err)
	}
	return p, nil
}
