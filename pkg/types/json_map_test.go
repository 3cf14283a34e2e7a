package types

import (
	"database/sql/driver"
	"testing"
)

// The field value (not a pointer) is what gorm hands to the driver, so the
// value type itself must satisfy driver.Valuer.
var _ driver.Valuer = JSONMap{}

func TestJSONMapValueAndScan(t *testing.T) {
	payload := JSONMap{
		"id":          "ord-1",
		"total_price": "120.50",
		"customer":    map[string]any{"id": "cus-1"},
	}

	val, err := payload.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if _, ok := val.([]byte); !ok {
		t.Fatalf("expected JSON bytes, got %T", val)
	}

	var decoded JSONMap
	if err := decoded.Scan(val); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if decoded["total_price"] != "120.50" {
		t.Fatalf("expected total_price to survive the round trip, got %v", decoded["total_price"])
	}
	nested, ok := decoded["customer"].(map[string]any)
	if !ok || nested["id"] != "cus-1" {
		t.Fatalf("expected nested object to survive, got %v", decoded["customer"])
	}
}

func TestJSONMapNilHandling(t *testing.T) {
	var payload JSONMap
	val, err := payload.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if val != nil {
		t.Fatalf("nil map should produce a NULL column, got %v", val)
	}

	decoded := JSONMap{"stale": true}
	if err := decoded.Scan(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded != nil {
		t.Fatalf("scanning NULL should clear the map, got %v", decoded)
	}
}

func TestJSONMapScanString(t *testing.T) {
	var decoded JSONMap
	if err := decoded.Scan(`{"source":"shopify"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded["source"] != "shopify" {
		t.Fatalf("expected string input to decode, got %v", decoded)
	}

	if err := decoded.Scan(42); err == nil {
		t.Fatal("expected unsupported column type to error")
	}
}
