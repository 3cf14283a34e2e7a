package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
)

// Opportunity is a persisted opportunity candidate. Rows within the 24h dedup
// window block re-raising the same archetype.
type Opportunity struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type        enums.OpportunityType `gorm:"column:type;type:text;not null;index:idx_opportunities_type_raised"`
	Title       string                `gorm:"column:title;not null"`
	Description string                `gorm:"column:description"`
	Priority    int                   `gorm:"column:priority;not null"`
	Signals     json.RawMessage       `gorm:"column:signals;type:jsonb"`
	RaisedAt    time.Time             `gorm:"column:raised_at;not null;index:idx_opportunities_type_raised"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
