package staging

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStagingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE staging_orders (
  order_id TEXT PRIMARY KEY,
  order_date DATETIME NOT NULL,
  customer_id TEXT,
  email TEXT,
  revenue_gross NUMERIC NOT NULL,
  discounts NUMERIC NOT NULL,
  refunds NUMERIC NOT NULL,
  revenue_net NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  channel_raw TEXT NOT NULL,
  region TEXT,
  is_new_customer INTEGER NOT NULL DEFAULT 0,
  line_items TEXT,
  payment_method TEXT,
  payment_status TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE staging_spend (
  date DATETIME NOT NULL,
  source TEXT NOT NULL,
  campaign_id TEXT NOT NULL,
  campaign_name TEXT,
  spend NUMERIC NOT NULL,
  impressions INTEGER NOT NULL DEFAULT 0,
  clicks INTEGER NOT NULL DEFAULT 0,
  currency TEXT NOT NULL DEFAULT 'USD',
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (date, source, campaign_id)
);`,
		`CREATE TABLE staging_traffic (
  date DATETIME NOT NULL,
  source TEXT NOT NULL,
  channel_raw TEXT NOT NULL,
  sessions INTEGER NOT NULL DEFAULT 0,
  product_views INTEGER NOT NULL DEFAULT 0,
  cart_additions INTEGER NOT NULL DEFAULT 0,
  checkouts_started INTEGER NOT NULL DEFAULT 0,
  purchases INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (date, source, channel_raw)
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func stagedOrder(id string, net string) *models.StagingOrder {
	amount := decimal.RequireFromString(net)
	return &models.StagingOrder{
		OrderID:      id,
		OrderDate:    time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		RevenueGross: amount,
		Discounts:    decimal.Zero,
		Refunds:      decimal.Zero,
		RevenueNet:   amount,
		Currency:     "USD",
		ChannelRaw:   enums.ChannelDirect,
	}
}

func TestUpsertOrdersConverges(t *testing.T) {
	conn := setupStagingTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, repo.UpsertOrders(ctx, []*models.StagingOrder{stagedOrder("o-1", "50.00")}))
	require.NoError(t, repo.UpsertOrders(ctx, []*models.StagingOrder{stagedOrder("o-1", "75.00")}))

	var rows []models.StagingOrder
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].RevenueNet.Equal(decimal.RequireFromString("75.00")))
}

func TestUpsertOrdersPreservesPaymentEnrichment(t *testing.T) {
	conn := setupStagingTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, repo.UpsertOrders(ctx, []*models.StagingOrder{stagedOrder("o-1", "50.00")}))

	matched, err := repo.UpdateOrderPayment(ctx, "o-1", "card", enums.PaymentStatusPaid)
	require.NoError(t, err)
	require.EqualValues(t, 1, matched)

	// Re-normalizing the same order must not wipe the charge data.
	require.NoError(t, repo.UpsertOrders(ctx, []*models.StagingOrder{stagedOrder("o-1", "55.00")}))

	var row models.StagingOrder
	require.NoError(t, conn.Where("order_id = ?", "o-1").First(&row).Error)
	require.NotNil(t, row.PaymentMethod)
	assert.Equal(t, "card", *row.PaymentMethod)
	require.NotNil(t, row.PaymentStatus)
	assert.Equal(t, enums.PaymentStatusPaid, *row.PaymentStatus)
	assert.True(t, row.RevenueNet.Equal(decimal.RequireFromString("55.00")))
}

func TestUpdateOrderPaymentUnknownOrder(t *testing.T) {
	conn := setupStagingTestDB(t)
	repo := NewRepository(conn)

	matched, err := repo.UpdateOrderPayment(context.Background(), "missing", "card", enums.PaymentStatusPaid)
	require.NoError(t, err)
	assert.EqualValues(t, 0, matched)
}

func TestUpsertSpendKeyedByDateSourceCampaign(t *testing.T) {
	conn := setupStagingTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	row := &models.StagingSpend{
		Date:       day,
		Source:     "meta_ads",
		CampaignID: "c-1",
		Spend:      decimal.RequireFromString("100.00"),
		Currency:   "USD",
	}
	require.NoError(t, repo.UpsertSpend(ctx, []*models.StagingSpend{row}))

	updated := *row
	updated.Spend = decimal.RequireFromString("150.00")
	otherCampaign := *row
	otherCampaign.CampaignID = "c-2"
	require.NoError(t, repo.UpsertSpend(ctx, []*models.StagingSpend{&updated, &otherCampaign}))

	var rows []models.StagingSpend
	require.NoError(t, conn.Order("campaign_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Spend.Equal(decimal.RequireFromString("150.00")))
}

func TestUpsertTrafficKeyedByChannel(t *testing.T) {
	conn := setupStagingTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	rows := []*models.StagingTraffic{
		{Date: day, Source: "ga4", ChannelRaw: enums.ChannelGoogle, Sessions: 100},
		{Date: day, Source: "ga4", ChannelRaw: enums.ChannelMeta, Sessions: 40},
	}
	require.NoError(t, repo.UpsertTraffic(ctx, rows))
	require.NoError(t, repo.UpsertTraffic(ctx, []*models.StagingTraffic{
		{Date: day, Source: "ga4", ChannelRaw: enums.ChannelGoogle, Sessions: 120},
	}))

	var stored []models.StagingTraffic
	require.NoError(t, conn.Order("channel_raw").Find(&stored).Error)
	require.Len(t, stored, 2)
	for _, row := range stored {
		if row.ChannelRaw == enums.ChannelGoogle {
			assert.EqualValues(t, 120, row.Sessions)
		}
	}
}
