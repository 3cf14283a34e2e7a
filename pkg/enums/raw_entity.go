package enums

import "fmt"

// RawEntity is the logical entity a raw record belongs to.
type RawEntity string

const (
	RawEntityOrders    RawEntity = "orders"
	RawEntityCustomers RawEntity = "customers"
	RawEntitySpend     RawEntity = "spend"
	RawEntityTraffic   RawEntity = "traffic"
	RawEntityEmail     RawEntity = "email"
	RawEntityCharges   RawEntity = "charges"
)

var validRawEntities = []RawEntity{
	RawEntityOrders,
	RawEntityCustomers,
	RawEntitySpend,
	RawEntityTraffic,
	RawEntityEmail,
	RawEntityCharges,
}

// IsValid reports whether the value matches the canonical raw entity enum.
func (r RawEntity) IsValid() bool {
	for _, candidate := range validRawEntities {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRawEntity converts the raw string to RawEntity.
func ParseRawEntity(value string) (RawEntity, error) {
	for _, candidate := range validRawEntities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid raw entity %q", value)
}
