package models

import (
	"time"

	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
)

// StagingTraffic is one day of site traffic per source and attributed channel.
// The funnel columns feed the mart builder's stage conversion rates.
type StagingTraffic struct {
	Date             time.Time     `gorm:"column:date;type:date;not null;uniqueIndex:idx_staging_traffic_key"`
	Source           string        `gorm:"column:source;not null;uniqueIndex:idx_staging_traffic_key"`
	ChannelRaw       enums.Channel `gorm:"column:channel_raw;type:text;not null;uniqueIndex:idx_staging_traffic_key"`
	Sessions         int64         `gorm:"column:sessions;not null;default:0"`
	ProductViews     int64         `gorm:"column:product_views;not null;default:0"`
	CartAdditions    int64         `gorm:"column:cart_additions;not null;default:0"`
	CheckoutsStarted int64         `gorm:"column:checkouts_started;not null;default:0"`
	Purchases        int64         `gorm:"column:purchases;not null;default:0"`
	CreatedAt        time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (StagingTraffic) TableName() string {
	return "staging_traffic"
}
