package opportunities

import (
	"context"
	"time"

	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository persists classified opportunities.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, opportunity *models.Opportunity) error
	// ExistsSince reports whether an opportunity of the type was raised at or
	// after the cutoff.
	ExistsSince(ctx context.Context, kind enums.OpportunityType, cutoff time.Time) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]models.Opportunity, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an opportunity repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, opportunity *models.Opportunity) error {
	return r.db.WithContext(ctx).Create(opportunity).Error
}

func (r *repository) ExistsSince(ctx context.Context, kind enums.OpportunityType, cutoff time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("type = ? AND raised_at >= ?", kind, cutoff).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]models.Opportunity, error) {
	var rows []models.Opportunity
	err := r.db.WithContext(ctx).
		Order("raised_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
