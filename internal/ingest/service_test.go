package ingest

import (
	"context"
	"io"
	"testing"

	"github.com/angelmondragon/pulsecheck-backend/internal/rawstore"
	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pulsecheck-backend/pkg/errors"
	"github.com/angelmondragon/pulsecheck-backend/pkg/logger"
	"github.com/angelmondragon/pulsecheck-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubRawRepo struct {
	records []*models.RawRecord
	err     error
}

func (s *stubRawRepo) WithTx(tx *gorm.DB) rawstore.Repository { return s }

func (s *stubRawRepo) Upsert(ctx context.Context, record *models.RawRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

func (s *stubRawRepo) ListBatch(ctx context.Context, entity enums.RawEntity, afterID uuid.UUID, limit int) ([]models.RawRecord, error) {
	return nil, nil
}

func (s *stubRawRepo) CountByEntity(ctx context.Context, entity enums.RawEntity) (int64, error) {
	return int64(len(s.records)), nil
}

func (s *stubRawRepo) Reset(ctx context.Context, source string) error {
	s.records = nil
	return nil
}

func ingestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func orderInput(source string) RecordInput {
	externalID := "ord-1"
	return RecordInput{
		Source:     source,
		Entity:     string(enums.RawEntityOrders),
		ExternalID: &externalID,
		Payload:    types.JSONMap{"id": "ord-1"},
	}
}

func TestIngestWritesBatch(t *testing.T) {
	repo := &stubRawRepo{}
	svc, err := NewService(repo, ingestLogger(), enums.DataModeLive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	written, err := svc.Ingest(context.Background(), []RecordInput{
		orderInput("shopify"),
		{Source: "shopify", Entity: string(enums.RawEntityCustomers), Payload: types.JSONMap{"id": "cus-1"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written != 2 {
		t.Fatalf("expected 2 records written, got %d", written)
	}
	if repo.records[0].Entity != enums.RawEntityOrders {
		t.Fatalf("unexpected entity %s", repo.records[0].Entity)
	}
	if repo.records[0].FetchedAt.IsZero() {
		t.Fatal("fetched_at must be stamped on ingest")
	}
}

func TestIngestRejectsUnknownEntity(t *testing.T) {
	svc, err := NewService(&stubRawRepo{}, ingestLogger(), enums.DataModeLive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Ingest(context.Background(), []RecordInput{
		{Source: "shopify", Entity: "widgets", Payload: types.JSONMap{"id": "1"}},
	})
	if err == nil {
		t.Fatal("expected unknown entity to be rejected")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIngestRejectsMissingPayload(t *testing.T) {
	repo := &stubRawRepo{}
	svc, err := NewService(repo, ingestLogger(), enums.DataModeLive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	written, err := svc.Ingest(context.Background(), []RecordInput{
		orderInput("shopify"),
		{Source: "shopify", Entity: string(enums.RawEntityOrders)},
	})
	if err == nil {
		t.Fatal("expected missing payload to be rejected")
	}
	if written != 1 {
		t.Fatalf("expected the valid record before the failure to count, got %d", written)
	}
}

func TestIngestDataModeGate(t *testing.T) {
	demo, err := NewService(&stubRawRepo{}, ingestLogger(), enums.DataModeDemo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := demo.Ingest(context.Background(), []RecordInput{orderInput("shopify")}); err == nil {
		t.Fatal("demo mode must reject live sources")
	}
	if _, err := demo.Ingest(context.Background(), []RecordInput{orderInput("demo")}); err != nil {
		t.Fatalf("demo mode must accept the demo source: %v", err)
	}

	live, err := NewService(&stubRawRepo{}, ingestLogger(), enums.DataModeLive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := live.Ingest(context.Background(), []RecordInput{orderInput("demo")}); err == nil {
		t.Fatal("live mode must reject the demo source")
	}
}

func TestNewServiceValidation(t *testing.T) {
	if _, err := NewService(nil, ingestLogger(), enums.DataModeLive); err == nil {
		t.Fatal("expected error without repository")
	}
	if _, err := NewService(&stubRawRepo{}, nil, enums.DataModeLive); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := NewService(&stubRawRepo{}, ingestLogger(), enums.DataMode("bogus")); err == nil {
		t.Fatal("expected error for invalid data mode")
	}
}
