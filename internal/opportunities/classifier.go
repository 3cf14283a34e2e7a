package opportunities

import (
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/pulsecheck-backend/internal/signals"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
)

const (
	blendedCACSignal = "alert:cac_increase"
	merSignal        = "alert:mer_deterioration"
	retentionSignal  = "alert:retention_drop"
	revenueSignal    = "alert:revenue_decline"
	sessionsSignal   = "metric:sessions"
	channelCACPrefix = "alert:channel_cac_spike:"
)

// Candidate is a prioritized cluster of signals mapped to one archetype.
type Candidate struct {
	Type        enums.OpportunityType
	Title       string
	Description string
	Priority    int
	Signals     []signals.Signal
}

var basePriorities = map[enums.OpportunityType]int{
	enums.OpportunityCACSpike:         85,
	enums.OpportunityEfficiencyDrop:   80,
	enums.OpportunityRetentionDecline: 75,
	enums.OpportunityFunnelLeak:       70,
	enums.OpportunityChannelImbalance: 65,
	enums.OpportunityGrowthPlateau:    60,
	enums.OpportunityQuickWin:         40,
}

// Classify groups signals into opportunity archetypes. Each step claims the
// signals it uses so later steps only see the remainder; the one exception is
// that channel CAC signals feed both CHANNEL_IMBALANCE and CAC_SPIKE. An
// archetype with no matching signals produces no candidate. The result is
// sorted by priority descending.
func Classify(input []signals.Signal) []Candidate {
	claimed := make([]bool, len(input))

	claim := func(match func(signals.Signal) bool) []signals.Signal {
		var picked []signals.Signal
		for i, signal := range input {
			if claimed[i] || !match(signal) {
				continue
			}
			claimed[i] = true
			picked = append(picked, signal)
		}
		return picked
	}

	var candidates []Candidate
	emit := func(kind enums.OpportunityType, title, description string, group []signals.Signal) {
		if len(group) == 0 {
			return
		}
		candidates = append(candidates, Candidate{
			Type:        kind,
			Title:       title,
			Description: description,
			Priority:    priorityFor(kind, group),
			Signals:     group,
		})
	}

	mer := claim(func(s signals.Signal) bool { return s.ID == merSignal })
	emit(enums.OpportunityEfficiencyDrop,
		"Marketing efficiency is dropping",
		"Spend is growing faster than the revenue it generates.",
		mer)

	// Channel CAC signals belong to CHANNEL_IMBALANCE and CAC_SPIKE at the
	// same time, so they are gathered without claiming first.
	var channelSpikes []signals.Signal
	for i, signal := range input {
		if !claimed[i] && strings.HasPrefix(signal.ID, channelCACPrefix) {
			channelSpikes = append(channelSpikes, signal)
		}
	}
	if len(distinctChannels(channelSpikes)) > 1 {
		emit(enums.OpportunityChannelImbalance,
			"Acquisition costs are diverging across channels",
			fmt.Sprintf("%d channels show a CAC spike at once; the budget split no longer matches channel efficiency.", len(channelSpikes)),
			channelSpikes)
	}

	cac := claim(func(s signals.Signal) bool {
		return s.ID == blendedCACSignal || strings.HasPrefix(s.ID, channelCACPrefix)
	})
	emit(enums.OpportunityCACSpike,
		"Customer acquisition cost spiked",
		"Acquiring a customer costs meaningfully more than last week.",
		cac)

	retention := claim(func(s signals.Signal) bool { return s.ID == retentionSignal })
	emit(enums.OpportunityRetentionDecline,
		"Customer retention is declining",
		"Repeat purchase behavior is falling below the store's baseline.",
		retention)

	funnel := claim(func(s signals.Signal) bool { return s.Type == enums.SignalTypeFunnelDrop })
	emit(enums.OpportunityFunnelLeak,
		"The purchase funnel is leaking",
		"One or more funnel stages convert markedly worse than last week.",
		funnel)

	// A revenue drop already explained by spend efficiency gets the CAC
	// framing, not a demand-side one.
	if len(cac) == 0 {
		plateau := claim(func(s signals.Signal) bool {
			return s.ID == revenueSignal || s.ID == sessionsSignal
		})
		emit(enums.OpportunityGrowthPlateau,
			"Growth is plateauing",
			"Revenue and traffic are trending down without a cost-side explanation.",
			plateau)
	}

	quickWins := claim(func(s signals.Signal) bool { return s.Severity == enums.SeverityInfo })
	emit(enums.OpportunityQuickWin,
		"Small wins worth a look",
		"Low-severity observations that are cheap to act on.",
		quickWins)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})
	return candidates
}

// priorityFor boosts the archetype's base score by the highest severity in the
// group. Boosts do not stack.
func priorityFor(kind enums.OpportunityType, group []signals.Signal) int {
	priority := basePriorities[kind]
	boost := 0
	for _, signal := range group {
		switch signal.Severity {
		case enums.SeverityCritical:
			boost = 10
		case enums.SeverityWarning:
			if boost < 5 {
				boost = 5
			}
		}
	}
	priority += boost
	if priority > 100 {
		priority = 100
	}
	return priority
}

func distinctChannels(spikes []signals.Signal) []string {
	seen := make(map[string]bool, len(spikes))
	var channels []string
	for _, signal := range spikes {
		channel := strings.TrimPrefix(signal.ID, channelCACPrefix)
		if !seen[channel] {
			seen[channel] = true
			channels = append(channels, channel)
		}
	}
	return channels
}
