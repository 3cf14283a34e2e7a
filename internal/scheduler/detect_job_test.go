package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/pulsecheck-backend/internal/detection"
	"github.com/angelmondragon/pulsecheck-backend/internal/opportunities"
	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
)

type stubSource struct {
	snapshot detection.MetricsSnapshot
	err      error
}

func (s *stubSource) Build(ctx context.Context) (detection.MetricsSnapshot, error) {
	return s.snapshot, s.err
}

type stubOppService struct {
	saved  []opportunities.Candidate
	stored []models.Opportunity
	err    error
}

func (s *stubOppService) SaveCandidates(ctx context.Context, candidates []opportunities.Candidate) ([]models.Opportunity, error) {
	s.saved = append(s.saved, candidates...)
	return s.stored, s.err
}

func (s *stubOppService) ListRecent(ctx context.Context, limit int) ([]models.Opportunity, error) {
	return s.stored, nil
}

type stubNotifier struct {
	notified [][]models.Opportunity
	err      error
}

func (s *stubNotifier) OpportunitiesRaised(ctx context.Context, rows []models.Opportunity) error {
	s.notified = append(s.notified, rows)
	return s.err
}

func declineSnapshot() detection.MetricsSnapshot {
	return detection.MetricsSnapshot{
		CurrentRevenue:  70000,
		PreviousRevenue: 100000,
	}
}

func TestDetectJobRunsFullChain(t *testing.T) {
	opps := &stubOppService{stored: []models.Opportunity{{Type: enums.OpportunityGrowthPlateau}}}
	notifier := &stubNotifier{}

	job, err := NewDetectJob(&stubSource{snapshot: declineSnapshot()}, opps, notifier, schedulerLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(opps.saved) == 0 {
		t.Fatal("expected the revenue decline to produce a candidate")
	}
	if opps.saved[0].Type != enums.OpportunityGrowthPlateau {
		t.Fatalf("expected GROWTH_PLATEAU, got %s", opps.saved[0].Type)
	}
	if len(notifier.notified) != 1 {
		t.Fatalf("expected one notification batch, got %d", len(notifier.notified))
	}
}

func TestDetectJobQuietSnapshotStoresNothing(t *testing.T) {
	opps := &stubOppService{}
	job, err := NewDetectJob(&stubSource{}, opps, &stubNotifier{}, schedulerLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opps.saved) != 0 {
		t.Fatalf("expected no candidates for a quiet snapshot, got %+v", opps.saved)
	}
}

func TestDetectJobWithoutNotifier(t *testing.T) {
	opps := &stubOppService{stored: []models.Opportunity{{Type: enums.OpportunityGrowthPlateau}}}
	job, err := NewDetectJob(&stubSource{snapshot: declineSnapshot()}, opps, nil, schedulerLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDetectJobSurfacesSnapshotFailure(t *testing.T) {
	job, err := NewDetectJob(&stubSource{err: errors.New("warehouse offline")}, &stubOppService{}, nil, schedulerLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected snapshot failure to surface")
	}
}

func TestDetectJobSkipsDedupedBatches(t *testing.T) {
	// SaveCandidates stored nothing (all deduped); the notifier must stay quiet.
	opps := &stubOppService{stored: nil}
	notifier := &stubNotifier{}
	job, err := NewDetectJob(&stubSource{snapshot: declineSnapshot()}, opps, notifier, schedulerLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.notified) != 0 {
		t.Fatal("expected no notification when everything was deduped")
	}
}
