package enums

import "fmt"

// Severity ranks alerts and signals.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

var validSeverities = []Severity{
	SeverityCritical,
	SeverityWarning,
	SeverityInfo,
}

// IsValid reports whether the value matches the canonical severity enum.
func (s Severity) IsValid() bool {
	for _, candidate := range validSeverities {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSeverity converts the raw string to Severity.
func ParseSeverity(value string) (Severity, error) {
	for _, candidate := range validSeverities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid severity %q", value)
}
