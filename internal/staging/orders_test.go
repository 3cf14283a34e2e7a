package staging

import (
	"testing"

	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
	"github.com/angelmondragon/pulsecheck-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func rawRecord(source string, entity enums.RawEntity, body map[string]any) models.RawRecord {
	return models.RawRecord{
		ID:      uuid.New(),
		Source:  source,
		Entity:  entity,
		Payload: types.JSONMap(body),
	}
}

func TestNormalizeOrderGraphShape(t *testing.T) {
	record := rawRecord("shopify", enums.RawEntityOrders, map[string]any{
		"legacyResourceId": "98765",
		"createdAt":        "2025-07-01T10:30:00Z",
		"currencyCode":     "USD",
		"totalPriceSet":     map[string]any{"shopMoney": map[string]any{"amount": "120.00"}},
		"totalDiscountsSet": map[string]any{"shopMoney": map[string]any{"amount": "20.00"}},
		"customer": map[string]any{
			"legacyResourceId": "c-1",
			"email":            "a@b.com",
			"numberOfOrders":   float64(3),
		},
		"customerJourneySummary": map[string]any{
			"lastVisit": map[string]any{
				"utmParameters": map[string]any{"source": "google", "medium": "cpc"},
				"landingPage":   "/products/x?utm_source=google&utm_medium=cpc",
			},
		},
		"lineItems": map[string]any{
			"nodes": []any{
				map[string]any{"sku": "SKU-1", "title": "Widget", "quantity": float64(2), "originalUnitPriceSet": map[string]any{"shopMoney": map[string]any{"amount": "60.00"}}},
			},
		},
	})

	order, err := normalizeOrder(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.OrderID != "98765" {
		t.Fatalf("expected order id 98765, got %q", order.OrderID)
	}
	if !order.RevenueNet.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("expected net 100.00, got %s", order.RevenueNet)
	}
	if order.ChannelRaw != enums.ChannelGoogle {
		t.Fatalf("expected google attribution, got %s", order.ChannelRaw)
	}
	if order.IsNewCustomer {
		t.Fatal("three prior orders is not a new customer")
	}
	if len(order.LineItems) != 1 || order.LineItems[0].Quantity != 2 {
		t.Fatalf("unexpected line items: %+v", order.LineItems)
	}
}

func TestNormalizeOrderLegacyShape(t *testing.T) {
	record := rawRecord("shopify", enums.RawEntityOrders, map[string]any{
		"id":              float64(12345),
		"created_at":      "2025-07-01T08:00:00Z",
		"total_price":     "89.99",
		"total_discounts": "10.00",
		"total_refunds":   "5.00",
		"landing_site":    "/?utm_source=klaviyo&utm_medium=email",
		"customer": map[string]any{
			"id":           float64(777),
			"orders_count": float64(1),
		},
	})

	order, err := normalizeOrder(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.OrderID != "12345" {
		t.Fatalf("expected numeric id coerced to string, got %q", order.OrderID)
	}
	if !order.RevenueNet.Equal(decimal.RequireFromString("74.99")) {
		t.Fatalf("expected net 74.99, got %s", order.RevenueNet)
	}
	if order.ChannelRaw != enums.ChannelEmail {
		t.Fatalf("expected email attribution, got %s", order.ChannelRaw)
	}
	if !order.IsNewCustomer {
		t.Fatal("orders_count of 1 marks a new customer")
	}
	if order.Currency != "USD" {
		t.Fatalf("expected USD default, got %q", order.Currency)
	}
}

func TestNormalizeOrderDemoShape(t *testing.T) {
	record := rawRecord("demo", enums.RawEntityOrders, map[string]any{
		"order_id": "demo-1",
		"date":     "2025-07-01",
		"revenue":  float64(50),
		"channel":  "meta",
	})

	order, err := normalizeOrder(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ChannelRaw != enums.ChannelMeta {
		t.Fatalf("expected explicit channel slug to win, got %s", order.ChannelRaw)
	}
	if !order.RevenueNet.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected net 50, got %s", order.RevenueNet)
	}
}

func TestNormalizeOrderRejectsMissingFields(t *testing.T) {
	noID := rawRecord("shopify", enums.RawEntityOrders, map[string]any{"created_at": "2025-07-01"})
	if _, err := normalizeOrder(noID); err == nil {
		t.Fatal("expected error for order without id")
	}
	noDate := rawRecord("shopify", enums.RawEntityOrders, map[string]any{"id": "1"})
	if _, err := normalizeOrder(noDate); err == nil {
		t.Fatal("expected error for order without date")
	}
	badDate := rawRecord("shopify", enums.RawEntityOrders, map[string]any{"id": "1", "created_at": "soon"})
	if _, err := normalizeOrder(badDate); err == nil {
		t.Fatal("expected error for unparsable date")
	}
}
