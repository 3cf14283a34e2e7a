package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/pulsecheck-backend/internal/rawstore"
	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pulsecheck-backend/pkg/errors"
	"github.com/angelmondragon/pulsecheck-backend/pkg/logger"
	"github.com/angelmondragon/pulsecheck-backend/pkg/types"
	"github.com/go-playground/validator/v10"
)

const demoSource = "demo"

// RecordInput is one raw item handed over by a connector. ExternalID, when
// present, must be stable across re-fetches of the same logical item.
type RecordInput struct {
	Source     string        `validate:"required"`
	Entity     string        `validate:"required"`
	ExternalID *string       `validate:"omitempty,min=1"`
	Cursor     *string       `validate:"-"`
	Payload    types.JSONMap `validate:"required"`
}

// Service is the validated entry point connectors use to write into the raw store.
type Service interface {
	// Ingest writes the batch into the raw store and returns the number of
	// records written. The whole batch is rejected on a validation failure.
	Ingest(ctx context.Context, batch []RecordInput) (int, error)
}

type service struct {
	repo     rawstore.Repository
	logg     *logger.Logger
	mode     enums.DataMode
	validate *validator.Validate
}

// NewService wires the ingest service. The data mode decides whether synthetic
// demo payloads are accepted.
func NewService(repo rawstore.Repository, logg *logger.Logger, mode enums.DataMode) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("raw store repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("invalid data mode %q", mode)
	}
	return &service{
		repo:     repo,
		logg:     logg,
		mode:     mode,
		validate: validator.New(),
	}, nil
}

func (s *service) Ingest(ctx context.Context, batch []RecordInput) (int, error) {
	now := time.Now().UTC()
	written := 0
	for i, input := range batch {
		if err := s.validate.Struct(input); err != nil {
			return written, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("record %d invalid", i))
		}
		entity, err := enums.ParseRawEntity(input.Entity)
		if err != nil {
			return written, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("record %d invalid", i))
		}
		if err := s.checkMode(input.Source); err != nil {
			return written, err
		}

		record := &models.RawRecord{
			Source:     input.Source,
			Entity:     entity,
			ExternalID: input.ExternalID,
			Cursor:     input.Cursor,
			Payload:    input.Payload,
			FetchedAt:  now,
		}
		if err := s.repo.Upsert(ctx, record); err != nil {
			return written, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "writing raw record")
		}
		written++
	}

	fields := map[string]any{"records": written}
	s.logg.Info(s.logg.WithFields(ctx, fields), "raw batch ingested")
	return written, nil
}

func (s *service) checkMode(source string) error {
	switch s.mode {
	case enums.DataModeDemo:
		if source != demoSource {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("source %q not accepted in demo mode", source))
		}
	case enums.DataModeLive:
		if source == demoSource {
			return pkgerrors.New(pkgerrors.CodeValidation, "demo source not accepted in live mode")
		}
	}
	return nil
}
