package opportunities

import (
	"testing"

	"github.com/angelmondragon/pulsecheck-backend/internal/signals"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
)

func alertSignal(id string, severity enums.Severity) signals.Signal {
	return signals.Signal{ID: id, Type: enums.SignalTypeAlert, Severity: severity}
}

func candidateByType(candidates []Candidate, kind enums.OpportunityType) *Candidate {
	for i := range candidates {
		if candidates[i].Type == kind {
			return &candidates[i]
		}
	}
	return nil
}

func TestCACSignalSuppressesGrowthPlateau(t *testing.T) {
	withCAC := []signals.Signal{
		alertSignal("alert:revenue_decline", enums.SeverityWarning),
		alertSignal("alert:cac_increase", enums.SeverityWarning),
	}
	candidates := Classify(withCAC)
	if candidateByType(candidates, enums.OpportunityGrowthPlateau) != nil {
		t.Fatal("a CAC signal must suppress GROWTH_PLATEAU")
	}
	if candidateByType(candidates, enums.OpportunityCACSpike) == nil {
		t.Fatal("expected CAC_SPIKE to claim the cac signal")
	}

	withoutCAC := []signals.Signal{
		alertSignal("alert:revenue_decline", enums.SeverityWarning),
	}
	candidates = Classify(withoutCAC)
	plateau := candidateByType(candidates, enums.OpportunityGrowthPlateau)
	if plateau == nil {
		t.Fatal("without a CAC signal, GROWTH_PLATEAU must appear")
	}
	if len(plateau.Signals) != 1 || plateau.Signals[0].ID != "alert:revenue_decline" {
		t.Fatalf("unexpected plateau signals: %+v", plateau.Signals)
	}
}

func TestChannelImbalanceRequiresTwoChannels(t *testing.T) {
	one := Classify([]signals.Signal{
		alertSignal("alert:channel_cac_spike:meta", enums.SeverityWarning),
	})
	if candidateByType(one, enums.OpportunityChannelImbalance) != nil {
		t.Fatal("a single channel spike must not produce CHANNEL_IMBALANCE")
	}
	if candidateByType(one, enums.OpportunityCACSpike) == nil {
		t.Fatal("a single channel spike still produces CAC_SPIKE")
	}

	two := Classify([]signals.Signal{
		alertSignal("alert:channel_cac_spike:meta", enums.SeverityWarning),
		alertSignal("alert:channel_cac_spike:google", enums.SeverityWarning),
	})
	imbalance := candidateByType(two, enums.OpportunityChannelImbalance)
	spike := candidateByType(two, enums.OpportunityCACSpike)
	if imbalance == nil || spike == nil {
		t.Fatalf("expected both CHANNEL_IMBALANCE and CAC_SPIKE, got %+v", two)
	}
	// The channel signals deliberately appear in both candidates.
	if len(imbalance.Signals) != 2 || len(spike.Signals) != 2 {
		t.Fatalf("expected channel signals in both clusters, got %d and %d", len(imbalance.Signals), len(spike.Signals))
	}
}

func TestQuickWinCollectsUnclaimedInfoSignals(t *testing.T) {
	candidates := Classify([]signals.Signal{
		alertSignal("alert:new_customer_share_decline", enums.SeverityInfo),
		{ID: "metric:aov", Type: enums.SignalTypeMetricDelta, Severity: enums.SeverityInfo},
		alertSignal("alert:retention_drop", enums.SeverityWarning),
	})

	quick := candidateByType(candidates, enums.OpportunityQuickWin)
	if quick == nil {
		t.Fatal("expected QUICK_WIN for the unclaimed info signals")
	}
	if len(quick.Signals) != 2 {
		t.Fatalf("expected two quick-win signals, got %+v", quick.Signals)
	}
	for _, signal := range quick.Signals {
		if signal.ID == "alert:retention_drop" {
			t.Fatal("a signal claimed by RETENTION_DECLINE must not reach QUICK_WIN")
		}
	}
}

func TestPriorityBoostAndOrdering(t *testing.T) {
	candidates := Classify([]signals.Signal{
		alertSignal("alert:cac_increase", enums.SeverityCritical),
		alertSignal("alert:retention_drop", enums.SeverityWarning),
		{ID: "funnel:pdp_cart", Type: enums.SignalTypeFunnelDrop, Severity: enums.SeverityInfo},
	})

	spike := candidateByType(candidates, enums.OpportunityCACSpike)
	if spike == nil || spike.Priority != 95 {
		t.Fatalf("expected critical boost 85+10, got %+v", spike)
	}
	retention := candidateByType(candidates, enums.OpportunityRetentionDecline)
	if retention == nil || retention.Priority != 80 {
		t.Fatalf("expected warning boost 75+5, got %+v", retention)
	}
	leak := candidateByType(candidates, enums.OpportunityFunnelLeak)
	if leak == nil || leak.Priority != 70 {
		t.Fatalf("expected no boost for info-only group, got %+v", leak)
	}

	for i := 1; i < len(candidates); i++ {
		if candidates[i-1].Priority < candidates[i].Priority {
			t.Fatalf("candidates not sorted by priority: %+v", candidates)
		}
	}
}

func TestBoostsDoNotStack(t *testing.T) {
	candidates := Classify([]signals.Signal{
		alertSignal("alert:channel_cac_spike:meta", enums.SeverityCritical),
		alertSignal("alert:channel_cac_spike:google", enums.SeverityWarning),
		alertSignal("alert:cac_increase", enums.SeverityWarning),
	})
	spike := candidateByType(candidates, enums.OpportunityCACSpike)
	if spike == nil || spike.Priority != 95 {
		t.Fatalf("expected only the highest boost to apply (85+10), got %+v", spike)
	}
}

func TestNoSignalsNoCandidates(t *testing.T) {
	if got := Classify(nil); len(got) != 0 {
		t.Fatalf("expected no candidates for no signals, got %+v", got)
	}
}
