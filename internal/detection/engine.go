package detection

import (
	"fmt"

	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
)

// Rule thresholds. Every boundary is open: a change of exactly the threshold
// does not fire.
const (
	cacWarnPct     = 15.0
	cacCritPct     = 30.0
	cmWarnPoints   = -3.0
	cmCritPoints   = -6.0
	retWarnPoints  = -5.0
	retCritPoints  = -10.0
	merSpendGate   = 10.0
	merRevenueGate = 5.0
	merDropPct     = -10.0
	channelCacPct  = 25.0
	channelFloor   = 500.0
	revWarnPct     = -10.0
	revCritPct     = -20.0
	sharePoints    = -8.0
)

// Alert rule IDs.
const (
	AlertCACIncrease      = "cac_increase"
	AlertCMDecrease       = "cm_decrease"
	AlertRetentionDrop    = "retention_drop"
	AlertMERDeterioration = "mer_deterioration"
	AlertChannelCACSpike  = "channel_cac_spike"
	AlertRevenueDecline   = "revenue_decline"
	AlertNewCustomerShare = "new_customer_share_decline"
)

// Evaluate runs every rule over the snapshot. Rules are independent; several
// may fire at once and none suppresses another. The function is pure and never
// fails for any well-typed snapshot.
func Evaluate(snapshot MetricsSnapshot) []Alert {
	var alerts []Alert
	appendIf := func(alert *Alert) {
		if alert != nil {
			alerts = append(alerts, *alert)
		}
	}

	appendIf(checkCACIncrease(snapshot))
	appendIf(checkCMDecrease(snapshot))
	appendIf(checkRetentionDrop(snapshot))
	appendIf(checkMERDeterioration(snapshot))
	alerts = append(alerts, checkChannelCACSpikes(snapshot)...)
	appendIf(checkRevenueDecline(snapshot))
	appendIf(checkNewCustomerShare(snapshot))
	return alerts
}

// PercentChange is the relative change between two values, in percent. A
// metric that was zero and became positive counts as +100%; zero to zero is 0.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		if current > 0 {
			return 100
		}
		return -100
	}
	return (current - previous) / previous * 100
}

// BlendedCAC is spend per acquired customer, zero when nobody was acquired.
func BlendedCAC(spend float64, newCustomers int64) float64 {
	if newCustomers == 0 {
		return 0
	}
	return spend / float64(newCustomers)
}

// MER is revenue per dollar of spend, zero when nothing was spent.
func MER(revenue, spend float64) float64 {
	if spend == 0 {
		return 0
	}
	return revenue / spend
}

func checkCACIncrease(s MetricsSnapshot) *Alert {
	current := BlendedCAC(s.CurrentSpend, s.CurrentNewCustomers)
	previous := BlendedCAC(s.PreviousSpend, s.PreviousNewCustomers)
	change := PercentChange(current, previous)
	if change <= cacWarnPct {
		return nil
	}
	severity := enums.SeverityWarning
	if change > cacCritPct {
		severity = enums.SeverityCritical
	}
	return &Alert{
		ID:              AlertCACIncrease,
		Severity:        severity,
		Title:           "Customer acquisition cost is rising",
		Description:     fmt.Sprintf("Blended CAC moved from $%.2f to $%.2f (%+.1f%%) week over week.", previous, current, change),
		ImpactedSegment: "acquisition",
		Recommendation:  "Review campaign targeting and pause the worst-performing ad sets.",
		MetricValue:     change,
		Threshold:       cacWarnPct,
		Context: map[string]any{
			"current_cac":  current,
			"previous_cac": previous,
		},
	}
}

func checkCMDecrease(s MetricsSnapshot) *Alert {
	current := marginPercent(s.CurrentContributionMargin, s.CurrentNetRevenue)
	previous := marginPercent(s.PreviousContributionMargin, s.PreviousNetRevenue)
	points := current - previous
	if points >= cmWarnPoints {
		return nil
	}
	severity := enums.SeverityWarning
	if points < cmCritPoints {
		severity = enums.SeverityCritical
	}
	return &Alert{
		ID:              AlertCMDecrease,
		Severity:        severity,
		Title:           "Contribution margin is shrinking",
		Description:     fmt.Sprintf("Contribution margin fell from %.1f%% to %.1f%% of net revenue (%.1fpp).", previous, current, points),
		ImpactedSegment: "profitability",
		Recommendation:  "Check COGS, shipping costs and discount depth for the current period.",
		MetricValue:     points,
		Threshold:       cmWarnPoints,
		Context: map[string]any{
			"current_cm_pct":  current,
			"previous_cm_pct": previous,
		},
	}
}

func checkRetentionDrop(s MetricsSnapshot) *Alert {
	points := (s.CurrentRetentionD30 - s.BaselineRetentionD30) * 100
	if points >= retWarnPoints {
		return nil
	}
	severity := enums.SeverityWarning
	if points < retCritPoints {
		severity = enums.SeverityCritical
	}
	return &Alert{
		ID:              AlertRetentionDrop,
		Severity:        severity,
		Title:           "30-day retention is below baseline",
		Description:     fmt.Sprintf("D30 retention is %.1f%% against a %.1f%% baseline (%.1fpp).", s.CurrentRetentionD30*100, s.BaselineRetentionD30*100, points),
		ImpactedSegment: "retention",
		Recommendation:  "Audit post-purchase flows and recent cohort experience.",
		MetricValue:     points,
		Threshold:       retWarnPoints,
		Context: map[string]any{
			"current_retention":  s.CurrentRetentionD30,
			"baseline_retention": s.BaselineRetentionD30,
		},
	}
}

// checkMERDeterioration fires only when spend is clearly up while revenue
// stays flat; a MER dip during a revenue surge is not a problem.
func checkMERDeterioration(s MetricsSnapshot) *Alert {
	spendChange := PercentChange(s.CurrentSpend, s.PreviousSpend)
	revenueChange := PercentChange(s.CurrentRevenue, s.PreviousRevenue)
	if spendChange <= merSpendGate || revenueChange >= merRevenueGate {
		return nil
	}
	current := MER(s.CurrentRevenue, s.CurrentSpend)
	previous := MER(s.PreviousRevenue, s.PreviousSpend)
	change := PercentChange(current, previous)
	if change >= merDropPct {
		return nil
	}
	return &Alert{
		ID:              AlertMERDeterioration,
		Severity:        enums.SeverityWarning,
		Title:           "Marketing efficiency is deteriorating",
		Description:     fmt.Sprintf("Spend is up %.1f%% while revenue moved %.1f%%; MER fell from %.2f to %.2f.", spendChange, revenueChange, previous, current),
		ImpactedSegment: "marketing",
		Recommendation:  "Rebalance budget toward channels still converting at target efficiency.",
		MetricValue:     change,
		Threshold:       merDropPct,
		Context: map[string]any{
			"current_mer":    current,
			"previous_mer":   previous,
			"spend_change":   spendChange,
			"revenue_change": revenueChange,
		},
	}
}

// checkChannelCACSpikes skips channels below the spend floor; small budgets
// produce noisy CAC swings.
func checkChannelCACSpikes(s MetricsSnapshot) []Alert {
	var alerts []Alert
	for _, channel := range s.Channels {
		if channel.CurrentSpend <= channelFloor {
			continue
		}
		current := BlendedCAC(channel.CurrentSpend, channel.CurrentNewCustomers)
		previous := BlendedCAC(channel.PreviousSpend, channel.PreviousNewCustomers)
		change := PercentChange(current, previous)
		if change <= channelCacPct {
			continue
		}
		alerts = append(alerts, Alert{
			ID:              fmt.Sprintf("%s:%s", AlertChannelCACSpike, channel.Channel),
			Severity:        enums.SeverityWarning,
			Title:           fmt.Sprintf("CAC spike on %s", channel.Channel),
			Description:     fmt.Sprintf("CAC on %s moved from $%.2f to $%.2f (%+.1f%%).", channel.Channel, previous, current, change),
			ImpactedSegment: string(channel.Channel),
			Recommendation:  fmt.Sprintf("Inspect %s campaigns for creative fatigue or audience saturation.", channel.Channel),
			MetricValue:     change,
			Threshold:       channelCacPct,
			Context: map[string]any{
				"channel":      string(channel.Channel),
				"current_cac":  current,
				"previous_cac": previous,
				"spend":        channel.CurrentSpend,
			},
		})
	}
	return alerts
}

func checkRevenueDecline(s MetricsSnapshot) *Alert {
	change := PercentChange(s.CurrentRevenue, s.PreviousRevenue)
	if change >= revWarnPct {
		return nil
	}
	severity := enums.SeverityWarning
	if change < revCritPct {
		severity = enums.SeverityCritical
	}
	return &Alert{
		ID:              AlertRevenueDecline,
		Severity:        severity,
		Title:           "Revenue is declining",
		Description:     fmt.Sprintf("Revenue moved from $%.2f to $%.2f (%.1f%%) week over week.", s.PreviousRevenue, s.CurrentRevenue, change),
		ImpactedSegment: "revenue",
		Recommendation:  "Compare channel mix and promotion calendar against the prior week.",
		MetricValue:     change,
		Threshold:       revWarnPct,
		Context: map[string]any{
			"current_revenue":  s.CurrentRevenue,
			"previous_revenue": s.PreviousRevenue,
		},
	}
}

func checkNewCustomerShare(s MetricsSnapshot) *Alert {
	current := sharePercent(s.CurrentNewCustomers, s.CurrentOrders)
	previous := sharePercent(s.PreviousNewCustomers, s.PreviousOrders)
	points := current - previous
	if points >= sharePoints {
		return nil
	}
	return &Alert{
		ID:              AlertNewCustomerShare,
		Severity:        enums.SeverityInfo,
		Title:           "New-customer share of orders is slipping",
		Description:     fmt.Sprintf("New customers made up %.1f%% of orders, down from %.1f%% (%.1fpp).", current, previous, points),
		ImpactedSegment: "acquisition",
		Recommendation:  "Consider shifting a portion of budget from retargeting to prospecting.",
		MetricValue:     points,
		Threshold:       sharePoints,
		Context: map[string]any{
			"current_share":  current,
			"previous_share": previous,
		},
	}
}

func marginPercent(margin, netRevenue float64) float64 {
	if netRevenue == 0 {
		return 0
	}
	return margin / netRevenue * 100
}

func sharePercent(newCustomers, orders int64) float64 {
	if orders == 0 {
		return 0
	}
	return float64(newCustomers) / float64(orders) * 100
}
