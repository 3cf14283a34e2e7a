package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StagingEmail is one day of email campaign performance per source campaign.
type StagingEmail struct {
	Date         time.Time       `gorm:"column:date;type:date;not null;uniqueIndex:idx_staging_email_key"`
	Source       string          `gorm:"column:source;not null;uniqueIndex:idx_staging_email_key"`
	CampaignID   string          `gorm:"column:campaign_id;not null;uniqueIndex:idx_staging_email_key"`
	CampaignName string          `gorm:"column:campaign_name"`
	Sends        int64           `gorm:"column:sends;not null;default:0"`
	Opens        int64           `gorm:"column:opens;not null;default:0"`
	Clicks       int64           `gorm:"column:clicks;not null;default:0"`
	Revenue      decimal.Decimal `gorm:"column:revenue;type:numeric(14,2);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (StagingEmail) TableName() string {
	return "staging_email"
}
