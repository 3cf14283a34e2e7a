package staging

import (
	"fmt"

	"github.com/angelmondragon/pulsecheck-backend/internal/attribution"
	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
	"github.com/angelmondragon/pulsecheck-backend/pkg/types"
)

// normalizeOrder reconciles one raw order record into the canonical staging
// shape. Net revenue is always recomputed from gross, discounts and refunds.
func normalizeOrder(record models.RawRecord) (*models.StagingOrder, error) {
	p := payload(record.Payload)

	orderID := p.stringField("legacyResourceId", "id", "order_id")
	if orderID == "" {
		return nil, fmt.Errorf("order record %s has no order id", record.ID)
	}

	orderDate, err := p.timeField("createdAt", "created_at", "date")
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}

	gross := p.decimalField("totalPriceSet.shopMoney.amount", "total_price", "revenue")
	discounts := p.decimalField("totalDiscountsSet.shopMoney.amount", "total_discounts", "discounts")
	refunds := p.decimalField("totalRefundedSet.shopMoney.amount", "total_refunds", "refunds")

	currency := p.stringField("currencyCode", "currency")
	if currency == "" {
		currency = "USD"
	}

	order := &models.StagingOrder{
		OrderID:       orderID,
		OrderDate:     orderDate,
		CustomerID:    p.stringField("customer.legacyResourceId", "customer.id", "customer_id"),
		Email:         p.stringField("customer.email", "email", "contact_email", "customer_email"),
		RevenueGross:  gross,
		Discounts:     discounts,
		Refunds:       refunds,
		RevenueNet:    gross.Sub(discounts).Sub(refunds),
		Currency:      currency,
		ChannelRaw:    resolveOrderChannel(p, record.Source),
		Region:        p.stringField("shippingAddress.provinceCode", "billing_address.province_code", "shipping_address.province_code", "region"),
		IsNewCustomer: isNewCustomer(p),
		LineItems:     normalizeLineItems(p),
	}
	return order, nil
}

// resolveOrderChannel attributes the order to a channel. A structured
// last-visit attribution object is the richest signal and wins over UTM
// parameters parsed from the raw landing URL. Demo payloads may carry the slug
// directly.
func resolveOrderChannel(p payload, source string) enums.Channel {
	if explicit := p.stringField("channel"); explicit != "" {
		if channel, err := enums.ParseChannel(explicit); err == nil {
			return channel
		}
	}

	input := attribution.Input{
		SourceName:     p.stringField("sourceName", "source_name"),
		ShopSource:     source,
		ShopSourceType: p.stringField("source_identifier", "sourceType"),
	}

	if lastVisit := p.mapField("customerJourneySummary.lastVisit"); lastVisit != nil {
		input.UTMSource = lastVisit.stringField("utmParameters.source")
		input.UTMMedium = lastVisit.stringField("utmParameters.medium")
		input.ReferringSite = lastVisit.stringField("referrerUrl")
		params := landingParams(lastVisit.stringField("landingPage"))
		input.GCLID = params.Get("gclid")
		input.FBCLID = params.Get("fbclid")
		return attribution.Resolve(input)
	}

	params := landingParams(p.stringField("landing_site", "landing_site_ref"))
	input.UTMSource = params.Get("utm_source")
	input.UTMMedium = params.Get("utm_medium")
	input.GCLID = params.Get("gclid")
	input.FBCLID = params.Get("fbclid")
	input.ReferringSite = p.stringField("referring_site")
	return attribution.Resolve(input)
}

func isNewCustomer(p payload) bool {
	if explicit, ok := p.boolField("new_customer", "is_new_customer"); ok {
		return explicit
	}
	if count, found := p.first("customer.numberOfOrders", "customer.orders_count"); found {
		return intValue(count) == 1
	}
	return false
}

func normalizeLineItems(p payload) types.OrderLineItems {
	raw := p.sliceField("lineItems.nodes", "line_items", "items")
	if len(raw) == 0 {
		return nil
	}
	items := make(types.OrderLineItems, 0, len(raw))
	for _, entry := range raw {
		node, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		item := payload(node)
		quantity := item.intField("quantity", "qty")
		if quantity == 0 {
			quantity = 1
		}
		items = append(items, types.OrderLineItem{
			ProductID: item.stringField("product.legacyResourceId", "product_id"),
			SKU:       item.stringField("sku"),
			Title:     item.stringField("title", "name"),
			Quantity:  int(quantity),
			UnitPrice: item.decimalField("originalUnitPriceSet.shopMoney.amount", "price", "unit_price"),
		})
	}
	if len(items) == 0 {
		return nil
	}
	return items
}
