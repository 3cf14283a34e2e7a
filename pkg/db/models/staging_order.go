package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
	"github.com/angelmondragon/pulsecheck-backend/pkg/types"
)

// StagingOrder is the canonical order row produced by normalization. RevenueNet
// is always recomputed as gross - discounts - refunds, never read from upstream.
type StagingOrder struct {
	OrderID       string                `gorm:"column:order_id;primaryKey"`
	OrderDate     time.Time             `gorm:"column:order_date;not null;index"`
	CustomerID    string                `gorm:"column:customer_id;index"`
	Email         string                `gorm:"column:email"`
	RevenueGross  decimal.Decimal       `gorm:"column:revenue_gross;type:numeric(14,2);not null"`
	Discounts     decimal.Decimal       `gorm:"column:discounts;type:numeric(14,2);not null"`
	Refunds       decimal.Decimal       `gorm:"column:refunds;type:numeric(14,2);not null"`
	RevenueNet    decimal.Decimal       `gorm:"column:revenue_net;type:numeric(14,2);not null"`
	Currency      string                `gorm:"column:currency;not null;default:'USD'"`
	ChannelRaw    enums.Channel         `gorm:"column:channel_raw;type:text;not null"`
	Region        string                `gorm:"column:region"`
	IsNewCustomer bool                  `gorm:"column:is_new_customer;not null;default:false"`
	LineItems     types.OrderLineItems  `gorm:"column:line_items;type:jsonb"`
	PaymentMethod *string               `gorm:"column:payment_method"`
	PaymentStatus *enums.PaymentStatus  `gorm:"column:payment_status;type:text"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
