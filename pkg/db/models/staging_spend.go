package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StagingSpend is one day of ad spend per source campaign.
type StagingSpend struct {
	Date         time.Time       `gorm:"column:date;type:date;not null;uniqueIndex:idx_staging_spend_key"`
	Source       string          `gorm:"column:source;not null;uniqueIndex:idx_staging_spend_key"`
	CampaignID   string          `gorm:"column:campaign_id;not null;uniqueIndex:idx_staging_spend_key"`
	CampaignName string          `gorm:"column:campaign_name"`
	Spend        decimal.Decimal `gorm:"column:spend;type:numeric(14,2);not null"`
	Impressions  int64           `gorm:"column:impressions;not null;default:0"`
	Clicks       int64           `gorm:"column:clicks;not null;default:0"`
	Currency     string          `gorm:"column:currency;not null;default:'USD'"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (StagingSpend) TableName() string {
	return "staging_spend"
}
