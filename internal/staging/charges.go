package staging

import (
	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
)

// chargeUpdate is the payment data a provider charge contributes to a staged
// order.
type chargeUpdate struct {
	orderID string
	method  string
	status  enums.PaymentStatus
}

// normalizeCharge extracts the order reference and payment state from a raw
// charge record. Charges without an order reference return ok=false; orders
// and charges are not guaranteed to correspond 1:1, so that is not an error.
func normalizeCharge(record models.RawRecord) (chargeUpdate, bool) {
	p := payload(record.Payload)

	orderID := p.stringField("metadata.order_id", "metadata.orderId", "order_id")
	if orderID == "" {
		return chargeUpdate{}, false
	}

	method := p.stringField("payment_method_details.type", "paymentMethod.type", "payment_method", "method")
	if method == "" {
		method = "unknown"
	}

	return chargeUpdate{
		orderID: orderID,
		method:  method,
		status:  chargeStatus(p),
	}, true
}

func chargeStatus(p payload) enums.PaymentStatus {
	if refunded, ok := p.boolField("refunded"); ok && refunded {
		return enums.PaymentStatusRefunded
	}
	switch p.stringField("status") {
	case "succeeded", "paid", "COMPLETED", "captured":
		return enums.PaymentStatusPaid
	case "refunded", "REFUNDED":
		return enums.PaymentStatusRefunded
	case "failed", "canceled", "FAILED", "CANCELED":
		return enums.PaymentStatusFailed
	default:
		return enums.PaymentStatusPending
	}
}
