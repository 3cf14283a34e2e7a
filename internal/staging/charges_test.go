package staging

import (
	"testing"

	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
)

func TestNormalizeChargeStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		body map[string]any
		want enums.PaymentStatus
	}{
		{"succeeded", map[string]any{"status": "succeeded"}, enums.PaymentStatusPaid},
		{"captured", map[string]any{"status": "captured"}, enums.PaymentStatusPaid},
		{"refunded flag wins", map[string]any{"status": "succeeded", "refunded": true}, enums.PaymentStatusRefunded},
		{"failed", map[string]any{"status": "failed"}, enums.PaymentStatusFailed},
		{"canceled", map[string]any{"status": "canceled"}, enums.PaymentStatusFailed},
		{"unknown defaults pending", map[string]any{"status": "requires_action"}, enums.PaymentStatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := tc.body
			body["metadata"] = map[string]any{"order_id": "o-1"}
			update, ok := normalizeCharge(rawRecord("stripe", enums.RawEntityCharges, body))
			if !ok {
				t.Fatal("expected charge with order reference to normalize")
			}
			if update.status != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, update.status)
			}
		})
	}
}

func TestNormalizeChargeWithoutOrderReference(t *testing.T) {
	record := rawRecord("stripe", enums.RawEntityCharges, map[string]any{"status": "succeeded"})
	if _, ok := normalizeCharge(record); ok {
		t.Fatal("expected charge without order reference to be dropped")
	}
}

func TestNormalizeChargeMethodFallback(t *testing.T) {
	record := rawRecord("stripe", enums.RawEntityCharges, map[string]any{
		"metadata": map[string]any{"order_id": "o-2"},
		"status":   "succeeded",
	})
	update, ok := normalizeCharge(record)
	if !ok {
		t.Fatal("expected charge to normalize")
	}
	if update.method != "unknown" {
		t.Fatalf("expected unknown method fallback, got %q", update.method)
	}
}
