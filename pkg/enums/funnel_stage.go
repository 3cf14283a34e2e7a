package enums

import "fmt"

// FunnelStage names one conversion step of the purchase funnel.
type FunnelStage string

const (
	FunnelStageSessionToPDP       FunnelStage = "session_pdp"
	FunnelStagePDPToCart          FunnelStage = "pdp_cart"
	FunnelStageCartToCheckout     FunnelStage = "cart_checkout"
	FunnelStageCheckoutToPurchase FunnelStage = "checkout_purchase"
)

var validFunnelStages = []FunnelStage{
	FunnelStageSessionToPDP,
	FunnelStagePDPToCart,
	FunnelStageCartToCheckout,
	FunnelStageCheckoutToPurchase,
}

// IsValid reports whether the value matches the canonical funnel stage enum.
func (f FunnelStage) IsValid() bool {
	for _, candidate := range validFunnelStages {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFunnelStage converts the raw string to FunnelStage.
func ParseFunnelStage(value string) (FunnelStage, error) {
	for _, candidate := range validFunnelStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid funnel stage %q", value)
}
