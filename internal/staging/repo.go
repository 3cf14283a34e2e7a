package staging

import (
	"context"

	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository writes normalized rows into the staging tables. Every upsert is
// keyed on the natural key of its table so re-running normalization over the
// same raw data converges instead of duplicating.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	UpsertOrders(ctx context.Context, rows []*models.StagingOrder) error
	UpsertCustomers(ctx context.Context, rows []*models.StagingCustomer) error
	UpsertSpend(ctx context.Context, rows []*models.StagingSpend) error
	UpsertTraffic(ctx context.Context, rows []*models.StagingTraffic) error
	UpsertEmail(ctx context.Context, rows []*models.StagingEmail) error
	// UpdateOrderPayment enriches a staged order with charge data and reports
	// how many rows matched. Zero means the charge references an order that was
	// never staged.
	UpdateOrderPayment(ctx context.Context, orderID, method string, status enums.PaymentStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a staging repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) UpsertOrders(ctx context.Context, rows []*models.StagingOrder) error {
	if len(rows) == 0 {
		return nil
	}
	// payment_method and payment_status are owned by charge enrichment and are
	// deliberately absent here so re-normalizing orders does not clobber them.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"order_date", "customer_id", "email",
				"revenue_gross", "discounts", "refunds", "revenue_net",
				"currency", "channel_raw", "region", "is_new_customer",
				"line_items", "updated_at",
			}),
		}).
		Create(rows).Error
}

func (r *repository) UpsertCustomers(ctx context.Context, rows []*models.StagingCustomer) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"email", "first_name", "last_name", "orders_count",
				"total_spent", "region", "first_order_at", "updated_at",
			}),
		}).
		Create(rows).Error
}

func (r *repository) UpsertSpend(ctx context.Context, rows []*models.StagingSpend) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "date"},
				{Name: "source"},
				{Name: "campaign_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"campaign_name", "spend", "impressions", "clicks",
				"currency", "updated_at",
			}),
		}).
		Create(rows).Error
}

func (r *repository) UpsertTraffic(ctx context.Context, rows []*models.StagingTraffic) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "date"},
				{Name: "source"},
				{Name: "channel_raw"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"sessions", "product_views", "cart_additions",
				"checkouts_started", "purchases", "updated_at",
			}),
		}).
		Create(rows).Error
}

func (r *repository) UpsertEmail(ctx context.Context, rows []*models.StagingEmail) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "date"},
				{Name: "source"},
				{Name: "campaign_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"campaign_name", "sends", "opens", "clicks",
				"revenue", "updated_at",
			}),
		}).
		Create(rows).Error
}

func (r *repository) UpdateOrderPayment(ctx context.Context, orderID, method string, status enums.PaymentStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StagingOrder{}).
		Where("order_id = ?", orderID).
		Updates(map[string]any{
			"payment_method": method,
			"payment_status": status,
		})
	return result.RowsAffected, result.Error
}
