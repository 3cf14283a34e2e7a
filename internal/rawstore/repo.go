package rawstore

import (
	"context"
	"time"

	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository stores and pages raw external records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// Upsert writes a raw record. Records carrying an external id refresh the
	// existing row for (source, entity, external_id); records without one
	// always insert a new row.
	Upsert(ctx context.Context, record *models.RawRecord) error
	// ListBatch returns up to limit records for the entity with an id greater
	// than afterID, ordered by id. Pass uuid.Nil to start from the beginning.
	ListBatch(ctx context.Context, entity enums.RawEntity, afterID uuid.UUID, limit int) ([]models.RawRecord, error)
	CountByEntity(ctx context.Context, entity enums.RawEntity) (int64, error)
	// Reset deletes every raw record for the source. This is the only way raw
	// data is ever removed.
	Reset(ctx context.Context, source string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a raw store repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Upsert(ctx context.Context, record *models.RawRecord) error {
	if record.FetchedAt.IsZero() {
		record.FetchedAt = time.Now().UTC()
	}
	if record.ExternalID == nil {
		return r.db.WithContext(ctx).Create(record).Error
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "source"},
				{Name: "entity"},
				{Name: "external_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"cursor", "payload", "fetched_at", "updated_at"}),
		}).
		Create(record).Error
}

func (r *repository) ListBatch(ctx context.Context, entity enums.RawEntity, afterID uuid.UUID, limit int) ([]models.RawRecord, error) {
	var records []models.RawRecord
	query := r.db.WithContext(ctx).
		Where("entity = ?", entity).
		Order("id ASC").
		Limit(limit)
	if afterID != uuid.Nil {
		query = query.Where("id > ?", afterID)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) CountByEntity(ctx context.Context, entity enums.RawEntity) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RawRecord{}).
		Where("entity = ?", entity).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) Reset(ctx context.Context, source string) error {
	return r.db.WithContext(ctx).
		Where("source = ?", source).
		Delete(&models.RawRecord{}).Error
}
