package staging

import (
	"context"
	"fmt"

	"github.com/angelmondragon/pulsecheck-backend/internal/rawstore"
	"github.com/angelmondragon/pulsecheck-backend/pkg/db"
	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pulsecheck-backend/pkg/errors"
	"github.com/angelmondragon/pulsecheck-backend/pkg/logger"
	"github.com/angelmondragon/pulsecheck-backend/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const defaultBatchSize = 250

// Service replays the raw store into the staging tables. Normalization is
// repeatable: running it twice over the same raw data leaves the staging
// tables unchanged.
type Service interface {
	// Run normalizes every raw entity and then enriches staged orders with
	// payment-provider charges. A failure in one entity does not stop the
	// others; all failures are combined into the returned error.
	Run(ctx context.Context) error
}

type service struct {
	client    *db.Client
	raw       rawstore.Repository
	repo      Repository
	logg      *logger.Logger
	jobMetric *metrics.PipelineJobMetrics
	batchSize int
}

// NewService wires the staging normalizer.
func NewService(client *db.Client, raw rawstore.Repository, repo Repository, logg *logger.Logger, jobMetric *metrics.PipelineJobMetrics, batchSize int) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if raw == nil {
		return nil, fmt.Errorf("raw store repository required")
	}
	if repo == nil {
		return nil, fmt.Errorf("staging repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &service{
		client:    client,
		raw:       raw,
		repo:      repo,
		logg:      logg,
		jobMetric: jobMetric,
		batchSize: batchSize,
	}, nil
}

func (s *service) Run(ctx context.Context) error {
	var errs error
	errs = multierr.Append(errs, s.normalizeOrders(ctx))
	errs = multierr.Append(errs, s.normalizeCustomers(ctx))
	errs = multierr.Append(errs, s.normalizeSpend(ctx))
	errs = multierr.Append(errs, s.normalizeTraffic(ctx))
	errs = multierr.Append(errs, s.normalizeEmail(ctx))
	// Charges run last so the orders they reference are already staged.
	errs = multierr.Append(errs, s.applyCharges(ctx))
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, errs, "normalization incomplete")
	}
	return nil
}

func (s *service) normalizeOrders(ctx context.Context) error {
	ctx = s.logg.WithEntity(ctx, string(enums.RawEntityOrders))
	return s.forEachBatch(ctx, enums.RawEntityOrders, func(ctx context.Context, batch []models.RawRecord) error {
		rows := make([]*models.StagingOrder, 0, len(batch))
		for _, record := range batch {
			row, err := normalizeOrder(record)
			if err != nil {
				s.skip(ctx, enums.RawEntityOrders, err)
				continue
			}
			rows = append(rows, row)
		}
		return s.client.WithTx(ctx, func(tx *gorm.DB) error {
			return s.repo.WithTx(tx).UpsertOrders(ctx, rows)
		})
	})
}

func (s *service) normalizeCustomers(ctx context.Context) error {
	ctx = s.logg.WithEntity(ctx, string(enums.RawEntityCustomers))
	return s.forEachBatch(ctx, enums.RawEntityCustomers, func(ctx context.Context, batch []models.RawRecord) error {
		rows := make([]*models.StagingCustomer, 0, len(batch))
		for _, record := range batch {
			row, err := normalizeCustomer(record)
			if err != nil {
				s.skip(ctx, enums.RawEntityCustomers, err)
				continue
			}
			rows = append(rows, row)
		}
		return s.client.WithTx(ctx, func(tx *gorm.DB) error {
			return s.repo.WithTx(tx).UpsertCustomers(ctx, rows)
		})
	})
}

func (s *service) normalizeSpend(ctx context.Context) error {
	ctx = s.logg.WithEntity(ctx, string(enums.RawEntitySpend))
	return s.forEachBatch(ctx, enums.RawEntitySpend, func(ctx context.Context, batch []models.RawRecord) error {
		rows := make([]*models.StagingSpend, 0, len(batch))
		for _, record := range batch {
			row, err := normalizeSpend(record)
			if err != nil {
				s.skip(ctx, enums.RawEntitySpend, err)
				continue
			}
			rows = append(rows, row)
		}
		return s.client.WithTx(ctx, func(tx *gorm.DB) error {
			return s.repo.WithTx(tx).UpsertSpend(ctx, rows)
		})
	})
}

func (s *service) normalizeTraffic(ctx context.Context) error {
	ctx = s.logg.WithEntity(ctx, string(enums.RawEntityTraffic))
	return s.forEachBatch(ctx, enums.RawEntityTraffic, func(ctx context.Context, batch []models.RawRecord) error {
		rows := make([]*models.StagingTraffic, 0, len(batch))
		for _, record := range batch {
			row, err := normalizeTraffic(record)
			if err != nil {
				s.skip(ctx, enums.RawEntityTraffic, err)
				continue
			}
			rows = append(rows, row)
		}
		return s.client.WithTx(ctx, func(tx *gorm.DB) error {
			return s.repo.WithTx(tx).UpsertTraffic(ctx, rows)
		})
	})
}

func (s *service) normalizeEmail(ctx context.Context) error {
	ctx = s.logg.WithEntity(ctx, string(enums.RawEntityEmail))
	return s.forEachBatch(ctx, enums.RawEntityEmail, func(ctx context.Context, batch []models.RawRecord) error {
		rows := make([]*models.StagingEmail, 0, len(batch))
		for _, record := range batch {
			row, err := normalizeEmail(record)
			if err != nil {
				s.skip(ctx, enums.RawEntityEmail, err)
				continue
			}
			rows = append(rows, row)
		}
		return s.client.WithTx(ctx, func(tx *gorm.DB) error {
			return s.repo.WithTx(tx).UpsertEmail(ctx, rows)
		})
	})
}

// applyCharges copies payment method and status from provider charges onto
// staged orders. Charges that reference no staged order are skipped without
// complaint; providers see charges for orders outside our window.
func (s *service) applyCharges(ctx context.Context) error {
	ctx = s.logg.WithEntity(ctx, string(enums.RawEntityCharges))
	return s.forEachBatch(ctx, enums.RawEntityCharges, func(ctx context.Context, batch []models.RawRecord) error {
		for _, record := range batch {
			update, ok := normalizeCharge(record)
			if !ok {
				continue
			}
			matched, err := s.repo.UpdateOrderPayment(ctx, update.orderID, update.method, update.status)
			if err != nil {
				return err
			}
			if matched == 0 {
				s.logg.Debug(ctx, fmt.Sprintf("charge for unknown order %s ignored", update.orderID))
			}
		}
		return nil
	})
}

func (s *service) forEachBatch(ctx context.Context, entity enums.RawEntity, handle func(ctx context.Context, batch []models.RawRecord) error) error {
	afterID := uuid.Nil
	for {
		batch, err := s.raw.ListBatch(ctx, entity, afterID, s.batchSize)
		if err != nil {
			return fmt.Errorf("listing %s batch: %w", entity, err)
		}
		if len(batch) == 0 {
			return nil
		}
		if err := handle(ctx, batch); err != nil {
			return fmt.Errorf("normalizing %s batch: %w", entity, err)
		}
		afterID = batch[len(batch)-1].ID
		if len(batch) < s.batchSize {
			return nil
		}
	}
}

// skip drops one unparsable record. Bad rows never stop the batch.
func (s *service) skip(ctx context.Context, entity enums.RawEntity, err error) {
	s.logg.Warn(ctx, "skipping unparsable record: "+err.Error())
	s.jobMetric.AddRowsSkipped(string(entity), 1)
}
