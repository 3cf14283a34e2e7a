package rawstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
	"github.com/angelmondragon/pulsecheck-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRawTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`CREATE TABLE raw_records (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  entity TEXT NOT NULL,
  external_id TEXT,
  cursor TEXT,
  payload TEXT NOT NULL,
  fetched_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (source, entity, external_id)
);`).Error)
	return conn
}

// orderedUUID yields ids whose lexical order matches n, so keyset pagination
// over the TEXT primary key is deterministic under sqlite.
func orderedUUID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

func rawOrder(n int, externalID string) *models.RawRecord {
	record := &models.RawRecord{
		ID:        orderedUUID(n),
		Source:    "shopify",
		Entity:    enums.RawEntityOrders,
		Payload:   types.JSONMap{"id": externalID},
		FetchedAt: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	if externalID != "" {
		record.ExternalID = &externalID
	}
	return record
}

func TestUpsertRefreshesByIdentity(t *testing.T) {
	conn := setupRawTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, rawOrder(1, "ord-1")))

	refreshed := rawOrder(2, "ord-1")
	refreshed.Payload = types.JSONMap{"id": "ord-1", "total_price": "42.00"}
	require.NoError(t, repo.Upsert(ctx, refreshed))

	count, err := repo.CountByEntity(ctx, enums.RawEntityOrders)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	records, err := repo.ListBatch(ctx, enums.RawEntityOrders, uuid.Nil, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "42.00", records[0].Payload["total_price"])
}

func TestUpsertWithoutExternalIDAlwaysInserts(t *testing.T) {
	conn := setupRawTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, rawOrder(1, "")))
	require.NoError(t, repo.Upsert(ctx, rawOrder(2, "")))

	count, err := repo.CountByEntity(ctx, enums.RawEntityOrders)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestListBatchPaginatesByKeyset(t *testing.T) {
	conn := setupRawTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	for n := 1; n <= 5; n++ {
		require.NoError(t, repo.Upsert(ctx, rawOrder(n, fmt.Sprintf("ord-%d", n))))
	}

	first, err := repo.ListBatch(ctx, enums.RawEntityOrders, uuid.Nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := repo.ListBatch(ctx, enums.RawEntityOrders, first[1].ID, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.NotEqual(t, first[0].ID, second[0].ID)

	last, err := repo.ListBatch(ctx, enums.RawEntityOrders, second[1].ID, 2)
	require.NoError(t, err)
	assert.Len(t, last, 1)
}

func TestResetDeletesOnlyTheSource(t *testing.T) {
	conn := setupRawTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, rawOrder(1, "ord-1")))
	other := rawOrder(2, "cmp-1")
	other.Source = "meta"
	other.Entity = enums.RawEntitySpend
	require.NoError(t, repo.Upsert(ctx, other))

	require.NoError(t, repo.Reset(ctx, "shopify"))

	orders, err := repo.CountByEntity(ctx, enums.RawEntityOrders)
	require.NoError(t, err)
	assert.Equal(t, int64(0), orders)

	spend, err := repo.CountByEntity(ctx, enums.RawEntitySpend)
	require.NoError(t, err)
	assert.Equal(t, int64(1), spend)
}
