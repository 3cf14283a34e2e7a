package scheduler

import (
	"context"
	"errors"

	"github.com/angelmondragon/pulsecheck-backend/internal/staging"
)

// NormalizeJob replays the raw store into the staging tables.
type NormalizeJob struct {
	normalizer staging.Service
}

// NewNormalizeJob builds the normalization job.
func NewNormalizeJob(normalizer staging.Service) (*NormalizeJob, error) {
	if normalizer == nil {
		return nil, errors.New("staging normalizer required")
	}
	return &NormalizeJob{normalizer: normalizer}, nil
}

func (j *NormalizeJob) Name() string {
	return "staging-normalize"
}

func (j *NormalizeJob) Run(ctx context.Context) error {
	return j.normalizer.Run(ctx)
}
