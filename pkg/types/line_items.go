package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// OrderLineItem is one normalized line of a staged order.
type OrderLineItem struct {
	ProductID string          `json:"product_id,omitempty"`
	SKU       string          `json:"sku,omitempty"`
	Title     string          `json:"title,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderLineItems stores a list of line items inside a JSONB column.
type OrderLineItems []OrderLineItem

// Value serializes the line items to JSON.
func (l OrderLineItems) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan decodes JSONB into the line item list.
func (l *OrderLineItems) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded OrderLineItems
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*l = decoded
	return nil
}
