package opportunities

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pulsecheck-backend/pkg/errors"
	"github.com/angelmondragon/pulsecheck-backend/pkg/logger"
)

// dedupWindow blocks re-raising the same archetype within a day.
const dedupWindow = 24 * time.Hour

// Service persists classified candidates with the dedup window applied.
type Service interface {
	// SaveCandidates stores every candidate whose archetype was not already
	// raised inside the dedup window and returns the stored rows.
	SaveCandidates(ctx context.Context, candidates []Candidate) ([]models.Opportunity, error)
	ListRecent(ctx context.Context, limit int) ([]models.Opportunity, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService wires the opportunity service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("opportunity repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo: repo,
		logg: logg,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) SaveCandidates(ctx context.Context, candidates []Candidate) ([]models.Opportunity, error) {
	now := s.now()
	cutoff := now.Add(-dedupWindow)

	var stored []models.Opportunity
	for _, candidate := range candidates {
		exists, err := s.repo.ExistsSince(ctx, candidate.Type, cutoff)
		if err != nil {
			return stored, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "checking opportunity dedup window")
		}
		if exists {
			s.logg.Debug(ctx, fmt.Sprintf("opportunity %s already raised in the last 24h, skipping", candidate.Type))
			continue
		}

		payload, err := json.Marshal(candidate.Signals)
		if err != nil {
			return stored, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding opportunity signals")
		}

		row := models.Opportunity{
			Type:        candidate.Type,
			Title:       candidate.Title,
			Description: candidate.Description,
			Priority:    candidate.Priority,
			Signals:     payload,
			RaisedAt:    now,
		}
		if err := s.repo.Create(ctx, &row); err != nil {
			return stored, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "storing opportunity")
		}
		stored = append(stored, row)
	}

	if len(stored) > 0 {
		fields := map[string]any{"opportunities": len(stored)}
		s.logg.Info(s.logg.WithFields(ctx, fields), "opportunities raised")
	}
	return stored, nil
}

func (s *service) ListRecent(ctx context.Context, limit int) ([]models.Opportunity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "listing opportunities")
	}
	return rows, nil
}
