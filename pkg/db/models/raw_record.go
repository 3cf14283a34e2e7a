package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
	"github.com/angelmondragon/pulsecheck-backend/pkg/types"
)

// RawRecord is the append-only capture of one fetched external item. Identity
// is (source, entity, external_id) when an external id is present; rows without
// one are never deduplicated.
type RawRecord struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Source     string          `gorm:"column:source;not null;uniqueIndex:idx_raw_records_identity"`
	Entity     enums.RawEntity `gorm:"column:entity;type:text;not null;uniqueIndex:idx_raw_records_identity"`
	ExternalID *string         `gorm:"column:external_id;uniqueIndex:idx_raw_records_identity"`
	Cursor     *string         `gorm:"column:cursor"`
	Payload    types.JSONMap   `gorm:"column:payload;type:jsonb;not null"`
	FetchedAt  time.Time       `gorm:"column:fetched_at;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
