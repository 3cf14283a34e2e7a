package ingest

import (
	"fmt"
	"time"

	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
	"github.com/angelmondragon/pulsecheck-backend/pkg/types"
)

// DemoBatch builds the synthetic data set for demo mode: two weeks of orders,
// spend, traffic and email activity plus one charge, enough for every
// normalizer and detection rule to have something to chew on. All records use
// the demo source, so they pass the demo-mode gate and nothing else does.
func DemoBatch(now time.Time) []RecordInput {
	day := func(daysAgo int) string {
		return now.UTC().AddDate(0, 0, -daysAgo).Format("2006-01-02")
	}

	var batch []RecordInput

	add := func(entity enums.RawEntity, externalID string, payload types.JSONMap) {
		id := externalID
		batch = append(batch, RecordInput{
			Source:     demoSource,
			Entity:     string(entity),
			ExternalID: &id,
			Payload:    payload,
		})
	}

	// Orders: a new customer and a repeat purchase in the current week, a
	// larger previous week so the revenue-decline rule has a delta to see.
	add(enums.RawEntityOrders, "demo-ord-1", types.JSONMap{
		"id":              "demo-ord-1",
		"created_at":      day(2),
		"total_price":     "120.00",
		"total_discounts": "20.00",
		"customer":        map[string]any{"id": "demo-cus-1", "orders_count": float64(1)},
		"channel":         string(enums.ChannelMeta),
		"currency":        "USD",
	})
	add(enums.RawEntityOrders, "demo-ord-2", types.JSONMap{
		"id":          "demo-ord-2",
		"created_at":  day(4),
		"total_price": "80.00",
		"customer":    map[string]any{"id": "demo-cus-2", "orders_count": float64(3)},
		"channel":     string(enums.ChannelGoogle),
		"currency":    "USD",
	})
	for i := 0; i < 3; i++ {
		orderID := fmt.Sprintf("demo-ord-prev-%d", i+1)
		add(enums.RawEntityOrders, orderID, types.JSONMap{
			"id":          orderID,
			"created_at":  day(9 + i),
			"total_price": "110.00",
			"customer":    map[string]any{"id": fmt.Sprintf("demo-cus-%d", i+3), "orders_count": float64(1)},
			"channel":     string(enums.ChannelOrganic),
			"currency":    "USD",
		})
	}

	add(enums.RawEntityCustomers, "demo-cus-1", types.JSONMap{
		"id":         "demo-cus-1",
		"email":      "demo-one@example.com",
		"first_name": "Demo",
		"created_at": day(2),
	})
	add(enums.RawEntityCustomers, "demo-cus-2", types.JSONMap{
		"id":         "demo-cus-2",
		"email":      "demo-two@example.com",
		"first_name": "Demo",
		"created_at": day(40),
	})

	// Spend rising against flat revenue keeps the efficiency rules busy.
	add(enums.RawEntitySpend, "demo-spend-meta-cur", types.JSONMap{
		"date":          day(2),
		"campaign_id":   "demo-cmp-meta",
		"campaign_name": "Demo Prospecting",
		"spend":         "900.00",
		"impressions":   float64(42000),
		"clicks":        float64(1300),
		"currency":      "USD",
	})
	add(enums.RawEntitySpend, "demo-spend-meta-prev", types.JSONMap{
		"date":          day(9),
		"campaign_id":   "demo-cmp-meta",
		"campaign_name": "Demo Prospecting",
		"spend":         "600.00",
		"impressions":   float64(40000),
		"clicks":        float64(1250),
		"currency":      "USD",
	})
	add(enums.RawEntitySpend, "demo-spend-google-cur", types.JSONMap{
		"date":          day(3),
		"campaign_id":   "demo-cmp-google",
		"campaign_name": "Demo Brand",
		"spend":         "300.00",
		"impressions":   float64(15000),
		"clicks":        float64(700),
		"currency":      "USD",
	})

	add(enums.RawEntityTraffic, "demo-traffic-cur", types.JSONMap{
		"date":              day(2),
		"channel":           string(enums.ChannelGoogle),
		"sessions":          float64(4200),
		"product_views":     float64(1600),
		"cart_additions":    float64(420),
		"checkouts_started": float64(210),
		"purchases":         float64(90),
	})
	add(enums.RawEntityTraffic, "demo-traffic-prev", types.JSONMap{
		"date":              day(9),
		"channel":           string(enums.ChannelGoogle),
		"sessions":          float64(5200),
		"product_views":     float64(2100),
		"cart_additions":    float64(520),
		"checkouts_started": float64(260),
		"purchases":         float64(120),
	})

	add(enums.RawEntityEmail, "demo-email-1", types.JSONMap{
		"date":          day(3),
		"campaign_id":   "demo-email-1",
		"campaign_name": "Demo Weekly",
		"sends":         float64(8000),
		"opens":         float64(2600),
		"clicks":        float64(350),
		"revenue":       "420.00",
	})

	add(enums.RawEntityCharges, "demo-chg-1", types.JSONMap{
		"id":             "demo-chg-1",
		"order_id":       "demo-ord-1",
		"payment_method": "card",
		"status":         "succeeded",
	})

	return batch
}
