package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StagingCustomer is the canonical customer row, upserted by customer id.
type StagingCustomer struct {
	CustomerID   string          `gorm:"column:customer_id;primaryKey"`
	Email        string          `gorm:"column:email;index"`
	FirstName    string          `gorm:"column:first_name"`
	LastName     string          `gorm:"column:last_name"`
	OrdersCount  int             `gorm:"column:orders_count;not null;default:0"`
	TotalSpent   decimal.Decimal `gorm:"column:total_spent;type:numeric(14,2);not null"`
	Region       string          `gorm:"column:region"`
	FirstOrderAt *time.Time      `gorm:"column:first_order_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
