package enums

import "fmt"

// OpportunityType names the business-problem archetype a signal cluster maps to.
type OpportunityType string

const (
	OpportunityEfficiencyDrop   OpportunityType = "EFFICIENCY_DROP"
	OpportunityChannelImbalance OpportunityType = "CHANNEL_IMBALANCE"
	OpportunityCACSpike         OpportunityType = "CAC_SPIKE"
	OpportunityRetentionDecline OpportunityType = "RETENTION_DECLINE"
	OpportunityFunnelLeak       OpportunityType = "FUNNEL_LEAK"
	OpportunityGrowthPlateau    OpportunityType = "GROWTH_PLATEAU"
	OpportunityQuickWin         OpportunityType = "QUICK_WIN"
)

var validOpportunityTypes = []OpportunityType{
	OpportunityEfficiencyDrop,
	OpportunityChannelImbalance,
	OpportunityCACSpike,
	OpportunityRetentionDecline,
	OpportunityFunnelLeak,
	OpportunityGrowthPlateau,
	OpportunityQuickWin,
}

// IsValid reports whether the value matches the canonical opportunity type enum.
func (o OpportunityType) IsValid() bool {
	for _, candidate := range validOpportunityTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOpportunityType converts the raw string to OpportunityType.
func ParseOpportunityType(value string) (OpportunityType, error) {
	for _, candidate := range validOpportunityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid opportunity type %q", value)
}
