package model

import "fmt"

// DeviceType classifies a load by how it may be shed under deficit.
type DeviceType int

const (
	DeviceEssential DeviceType = iota
	DeviceFlexible
	DeviceOptional
)

// String returns a human-readable representation of the device type.
func (t DeviceType) String() string {
	switch t {
	case DeviceEssential:
		return "essential"
	case DeviceFlexible:
		return "flexible"
	case DeviceOptional:
		return "optional"
	default:
		return "unknown"
	}
}

// ParseDeviceType converts a configuration string to a DeviceType.
func ParseDeviceType(s string) (DeviceType, error) {
	switch s {
	case "essential":
		return DeviceEssential, nil
	case "flexible":
		return DeviceFlexible, nil
	case "optional":
		return DeviceOptional, nil
	default:
		return 0, fmt.Errorf("unknown device type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t DeviceType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *DeviceType) UnmarshalText(b []byte) error {
	v, err := ParseDeviceType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// HourWindow is a preferred operating window expressed in hours of day.
// A window may wrap midnight (Start > End).
type HourWindow struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// Contains reports whether the given hour of day falls inside the window.
// The start bound is inclusive, the end bound exclusive.
func (w HourWindow) Contains(hour int) bool {
	if w.StartHour <= w.EndHour {
		return hour >= w.StartHour && hour < w.EndHour
	}
	return hour >= w.StartHour || hour < w.EndHour
}

// Device represents a schedulable load in the microgrid. It is read-only
// input to a scheduling run; the configuration store owns it.
type Device struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	RatedPowerW       float64     `json:"rated_power_w"`
	Type              DeviceType  `json:"type"`
	MinRuntimeMinutes int         `json:"min_runtime_minutes"`
	Window            *HourWindow `json:"preferred_window,omitempty"`
	Priority          int         `json:"priority"` // lower = served first
	Active            bool        `json:"active"`
}

// RatedPowerKW returns the rated draw in kW.
func (d Device) RatedPowerKW() float64 { return d.RatedPowerW / 1000 }

// Validate checks that the device definition is sound.
func (d Device) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("device id is required")
	}
	if d.RatedPowerW <= 0 {
		return fmt.Errorf("device %s: rated power must be positive", d.ID)
	}
	if d.MinRuntimeMinutes < 0 {
		return fmt.Errorf("device %s: minimum runtime must not be negative", d.ID)
	}
	if d.Window != nil {
		if d.Window.StartHour < 0 || d.Window.StartHour > 23 || d.Window.EndHour < 0 || d.Window.EndHour > 23 {
			return fmt.Errorf("device %s: window hours must be within 0-23", d.ID)
		}
	}
	return nil
}
