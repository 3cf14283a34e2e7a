package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/pulsecheck-backend/internal/detection"
	"github.com/angelmondragon/pulsecheck-backend/internal/opportunities"
	"github.com/angelmondragon/pulsecheck-backend/internal/signals"
	"github.com/angelmondragon/pulsecheck-backend/internal/snapshot"
	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	"github.com/angelmondragon/pulsecheck-backend/pkg/logger"
)

// OpportunityNotifier announces stored opportunities to downstream consumers.
type OpportunityNotifier interface {
	OpportunitiesRaised(ctx context.Context, rows []models.Opportunity) error
}

// DetectJob runs the detection chain: snapshot, rule evaluation, signal
// derivation, classification, persistence, notification.
type DetectJob struct {
	source   snapshot.Source
	opps     opportunities.Service
	notifier OpportunityNotifier
	logg     *logger.Logger
}

// NewDetectJob builds the detection job. The notifier is optional; without it
// opportunities are stored but not announced.
func NewDetectJob(source snapshot.Source, opps opportunities.Service, notifier OpportunityNotifier, logg *logger.Logger) (*DetectJob, error) {
	if source == nil {
		return nil, errors.New("snapshot source required")
	}
	if opps == nil {
		return nil, errors.New("opportunity service required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &DetectJob{
		source:   source,
		opps:     opps,
		notifier: notifier,
		logg:     logg,
	}, nil
}

func (j *DetectJob) Name() string {
	return "anomaly-detect"
}

func (j *DetectJob) Run(ctx context.Context) error {
	metricsSnapshot, err := j.source.Build(ctx)
	if err != nil {
		return fmt.Errorf("building metrics snapshot: %w", err)
	}

	alerts := detection.Evaluate(metricsSnapshot)
	derived := signals.Derive(alerts, metricsSnapshot)
	candidates := opportunities.Classify(derived)

	fields := map[string]any{
		"alerts":     len(alerts),
		"signals":    len(derived),
		"candidates": len(candidates),
	}
	j.logg.Info(j.logg.WithFields(ctx, fields), "detection pass evaluated")

	if len(candidates) == 0 {
		return nil
	}

	stored, err := j.opps.SaveCandidates(ctx, candidates)
	if err != nil {
		return fmt.Errorf("storing opportunities: %w", err)
	}
	if j.notifier == nil || len(stored) == 0 {
		return nil
	}
	if err := j.notifier.OpportunitiesRaised(ctx, stored); err != nil {
		return fmt.Errorf("announcing opportunities: %w", err)
	}
	return nil
}
