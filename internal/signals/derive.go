package signals

import (
	"fmt"

	"github.com/angelmondragon/pulsecheck-backend/internal/detection"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
)

const (
	aovDeltaPct     = 10.0
	aovWarnPct      = 20.0
	sessionsDropPct = -15.0
	sessionsCritPct = -30.0
	funnelDropPct   = -15.0
	funnelWarnPct   = -30.0
)

// Signal is a normalized anomaly observation, either rule-derived or
// delta/funnel-derived. IDs are deterministic so callers can deduplicate
// across runs.
type Signal struct {
	ID            string           `json:"id"`
	Type          enums.SignalType `json:"type"`
	SourceMetric  string           `json:"source_metric"`
	CurrentValue  float64          `json:"current_value"`
	PreviousValue float64          `json:"previous_value"`
	ChangePercent float64          `json:"change_percent"`
	Severity      enums.Severity   `json:"severity"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
}

// Derive wraps each alert into a signal 1:1 and appends the delta and funnel
// checks the rule engine does not cover.
func Derive(alerts []detection.Alert, snapshot detection.MetricsSnapshot) []Signal {
	signals := make([]Signal, 0, len(alerts)+6)
	for _, alert := range alerts {
		signals = append(signals, Signal{
			ID:            "alert:" + alert.ID,
			Type:          enums.SignalTypeAlert,
			SourceMetric:  alert.ID,
			CurrentValue:  alert.MetricValue,
			PreviousValue: alert.Threshold,
			ChangePercent: alert.MetricValue,
			Severity:      alert.Severity,
			Title:         alert.Title,
			Description:   alert.Description,
		})
	}

	if signal := aovDelta(snapshot); signal != nil {
		signals = append(signals, *signal)
	}
	if signal := sessionsDecline(snapshot); signal != nil {
		signals = append(signals, *signal)
	}
	signals = append(signals, funnelDrops(snapshot)...)
	return signals
}

func aovDelta(s detection.MetricsSnapshot) *Signal {
	current := averageOrderValue(s.CurrentRevenue, s.CurrentOrders)
	previous := averageOrderValue(s.PreviousRevenue, s.PreviousOrders)
	change := detection.PercentChange(current, previous)
	magnitude := change
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude <= aovDeltaPct {
		return nil
	}
	severity := enums.SeverityInfo
	if magnitude > aovWarnPct {
		severity = enums.SeverityWarning
	}
	return &Signal{
		ID:            "metric:aov",
		Type:          enums.SignalTypeMetricDelta,
		SourceMetric:  "aov",
		CurrentValue:  current,
		PreviousValue: previous,
		ChangePercent: change,
		Severity:      severity,
		Title:         "Average order value shifted",
		Description:   fmt.Sprintf("AOV moved from $%.2f to $%.2f (%+.1f%%) week over week.", previous, current, change),
	}
}

func sessionsDecline(s detection.MetricsSnapshot) *Signal {
	current := float64(s.CurrentSessions)
	previous := float64(s.PreviousSessions)
	change := detection.PercentChange(current, previous)
	if change >= sessionsDropPct {
		return nil
	}
	severity := enums.SeverityInfo
	if change < sessionsCritPct {
		severity = enums.SeverityWarning
	}
	return &Signal{
		ID:            "metric:sessions",
		Type:          enums.SignalTypeMetricDelta,
		SourceMetric:  "sessions",
		CurrentValue:  current,
		PreviousValue: previous,
		ChangePercent: change,
		Severity:      severity,
		Title:         "Site sessions are declining",
		Description:   fmt.Sprintf("Sessions fell from %.0f to %.0f (%.1f%%) week over week.", previous, current, change),
	}
}

// funnelDrops checks each stage's conversion rate. A stage with a zero
// previous rate is skipped; there is no meaningful baseline to fall from.
func funnelDrops(s detection.MetricsSnapshot) []Signal {
	stages := []enums.FunnelStage{
		enums.FunnelStageSessionToPDP,
		enums.FunnelStagePDPToCart,
		enums.FunnelStageCartToCheckout,
		enums.FunnelStageCheckoutToPurchase,
	}

	var signals []Signal
	for _, stage := range stages {
		previous := s.PreviousFunnel.Rate(stage)
		if previous == 0 {
			continue
		}
		current := s.CurrentFunnel.Rate(stage)
		change := detection.PercentChange(current, previous)
		if change >= funnelDropPct {
			continue
		}
		severity := enums.SeverityInfo
		if change < funnelWarnPct {
			severity = enums.SeverityWarning
		}
		signals = append(signals, Signal{
			ID:            "funnel:" + string(stage),
			Type:          enums.SignalTypeFunnelDrop,
			SourceMetric:  string(stage),
			CurrentValue:  current,
			PreviousValue: previous,
			ChangePercent: change,
			Severity:      severity,
			Title:         fmt.Sprintf("Conversion dropped at %s", stage),
			Description:   fmt.Sprintf("The %s rate fell from %.1f%% to %.1f%% (%.1f%%).", stage, previous*100, current*100, change),
		})
	}
	return signals
}

func averageOrderValue(revenue float64, orders int64) float64 {
	if orders == 0 {
		return 0
	}
	return revenue / float64(orders)
}
