package enums

import "fmt"

// SignalType distinguishes how a signal was derived.
type SignalType string

const (
	SignalTypeAlert       SignalType = "alert"
	SignalTypeMetricDelta SignalType = "metric_delta"
	SignalTypeFunnelDrop  SignalType = "funnel_drop"
)

var validSignalTypes = []SignalType{
	SignalTypeAlert,
	SignalTypeMetricDelta,
	SignalTypeFunnelDrop,
}

// IsValid reports whether the value matches the canonical signal type enum.
func (s SignalType) IsValid() bool {
	for _, candidate := range validSignalTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSignalType converts the raw string to SignalType.
func ParseSignalType(value string) (SignalType, error) {
	for _, candidate := range validSignalTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid signal type %q", value)
}
