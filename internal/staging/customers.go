package staging

import (
	"fmt"

	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
)

// normalizeCustomer reconciles one raw customer record into the canonical
// staging shape.
func normalizeCustomer(record models.RawRecord) (*models.StagingCustomer, error) {
	p := payload(record.Payload)

	customerID := p.stringField("legacyResourceId", "id", "customer_id")
	if customerID == "" {
		return nil, fmt.Errorf("customer record %s has no customer id", record.ID)
	}

	customer := &models.StagingCustomer{
		CustomerID:  customerID,
		Email:       p.stringField("email", "emailAddress.emailAddress", "customer_email"),
		FirstName:   p.stringField("firstName", "first_name"),
		LastName:    p.stringField("lastName", "last_name"),
		OrdersCount: int(p.intField("numberOfOrders", "orders_count", "orders")),
		TotalSpent:  p.decimalField("amountSpent.amount", "total_spent", "total_spend"),
		Region:      p.stringField("defaultAddress.provinceCode", "default_address.province_code", "region"),
	}

	if raw, ok := p.first("first_order_at", "firstOrderAt"); ok {
		if parsed, err := timeValue(raw); err == nil {
			customer.FirstOrderAt = &parsed
		}
	}

	return customer, nil
}
