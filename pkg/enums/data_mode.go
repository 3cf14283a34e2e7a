package enums

import "fmt"

// DataMode selects between live connector data and the synthetic demo data set.
type DataMode string

const (
	DataModeLive DataMode = "live"
	DataModeDemo DataMode = "demo"
)

var validDataModes = []DataMode{
	DataModeLive,
	DataModeDemo,
}

// IsValid reports whether the value matches the canonical data mode enum.
func (d DataMode) IsValid() bool {
	for _, candidate := range validDataModes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDataMode converts the raw string to DataMode.
func ParseDataMode(value string) (DataMode, error) {
	for _, candidate := range validDataModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid data mode %q", value)
}
