package detection

import "github.com/angelmondragon/pulsecheck-backend/pkg/enums"

// MetricsSnapshot pairs current and previous 7-day aggregates. It is a plain
// value assembled by a snapshot source; the engine never asks where the
// numbers came from.
//
// Retention figures are fractions (0.25 means 25%). Everything else is in
// natural units: dollars for money, counts for orders and customers.
type MetricsSnapshot struct {
	CurrentRevenue  float64
	PreviousRevenue float64

	CurrentSpend  float64
	PreviousSpend float64

	CurrentNewCustomers  int64
	PreviousNewCustomers int64

	CurrentOrders  int64
	PreviousOrders int64

	CurrentContributionMargin  float64
	PreviousContributionMargin float64

	CurrentNetRevenue  float64
	PreviousNetRevenue float64

	CurrentRetentionD30  float64
	BaselineRetentionD30 float64

	CurrentSessions  int64
	PreviousSessions int64

	CurrentFunnel  FunnelRates
	PreviousFunnel FunnelRates

	Channels []ChannelMetrics
}

// FunnelRates are the four stage conversion rates, as fractions.
type FunnelRates struct {
	SessionToPDP       float64
	PDPToCart          float64
	CartToCheckout     float64
	CheckoutToPurchase float64
}

// Rate returns the conversion rate for the named stage.
func (f FunnelRates) Rate(stage enums.FunnelStage) float64 {
	switch stage {
	case enums.FunnelStageSessionToPDP:
		return f.SessionToPDP
	case enums.FunnelStagePDPToCart:
		return f.PDPToCart
	case enums.FunnelStageCartToCheckout:
		return f.CartToCheckout
	case enums.FunnelStageCheckoutToPurchase:
		return f.CheckoutToPurchase
	default:
		return 0
	}
}

// ChannelMetrics is one channel's paired spend and acquisition aggregates.
type ChannelMetrics struct {
	Channel enums.Channel

	CurrentSpend  float64
	PreviousSpend float64

	CurrentNewCustomers  int64
	PreviousNewCustomers int64
}

// Alert is one fired rule. Produced fresh on every evaluation, never mutated.
type Alert struct {
	ID              string         `json:"id"`
	Severity        enums.Severity `json:"severity"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	ImpactedSegment string         `json:"impacted_segment"`
	Recommendation  string         `json:"recommendation"`
	MetricValue     float64        `json:"metric_value"`
	Threshold       float64        `json:"threshold"`
	Context         map[string]any `json:"context"`
}
