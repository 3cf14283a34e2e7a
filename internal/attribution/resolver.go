package attribution

import (
	"strings"

	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
)

// Input captures the order/traffic metadata available for channel attribution.
// All fields are optional except SourceName; empty strings mean "not present".
type Input struct {
	SourceName     string
	UTMSource      string
	UTMMedium      string
	ReferringSite  string
	GCLID          string
	FBCLID         string
	ShopSource     string
	ShopSourceType string
}

var paidSearchMediums = map[string]bool{
	"cpc":      true,
	"ppc":      true,
	"paid":     true,
	"shopping": true,
}

var organicSearchMediums = map[string]bool{
	"organic":  true,
	"":         true,
	"surfaces": true,
}

// Resolve maps order/traffic metadata to a canonical channel slug. Precedence is
// fixed: platform click ids beat UTM parameters, which beat the referrer, which
// beats the source name. The function is pure and total.
func Resolve(in Input) enums.Channel {
	// A click identifier is the strongest signal and overrides a
	// contradicting referrer or UTM source.
	if strings.TrimSpace(in.GCLID) != "" {
		return enums.ChannelGoogle
	}
	if strings.TrimSpace(in.FBCLID) != "" {
		return enums.ChannelMeta
	}

	utmSource := strings.ToLower(strings.TrimSpace(in.UTMSource))
	utmMedium := strings.ToLower(strings.TrimSpace(in.UTMMedium))

	if utmSource != "" {
		if containsAny(utmSource, "facebook", "fb", "instagram", "ig") {
			return enums.ChannelMeta
		}
		if strings.Contains(utmSource, "google") {
			if paidSearchMediums[utmMedium] {
				return enums.ChannelGoogle
			}
			if organicSearchMediums[utmMedium] {
				return enums.ChannelOrganic
			}
		}
		if containsAny(utmSource, "klaviyo", "mailchimp") || utmMedium == "email" {
			return enums.ChannelEmail
		}
		if strings.Contains(utmSource, "affiliate") || utmMedium == "referral" {
			return enums.ChannelAffiliate
		}
		return enums.ChannelOther
	}
	if utmMedium == "email" {
		return enums.ChannelEmail
	}

	referrer := strings.ToLower(strings.TrimSpace(in.ReferringSite))
	if referrer != "" {
		if containsAny(referrer, "facebook.", "instagram.") {
			return enums.ChannelMeta
		}
		if strings.Contains(referrer, "google.") {
			if utmMedium == "cpc" {
				return enums.ChannelGoogle
			}
			return enums.ChannelOrganic
		}
	}

	for _, name := range []string{in.SourceName, in.ShopSource, in.ShopSourceType} {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "pos", "shopify_draft_order":
			return enums.ChannelDirect
		}
	}

	return enums.ChannelDirect
}

// ResolveChannelGroup maps an analytics platform's channel-group label (for
// example "Paid Social") to the canonical slug set. Unmatched labels map to
// other.
func ResolveChannelGroup(label string) enums.Channel {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return enums.ChannelOther
	}

	switch {
	case strings.Contains(normalized, "email"):
		return enums.ChannelEmail
	case containsAny(normalized, "affiliate", "referral"):
		return enums.ChannelAffiliate
	case strings.Contains(normalized, "social"):
		return enums.ChannelMeta
	case containsAny(normalized, "paid search", "paid shopping", "ppc", "sem", "cross-network"):
		return enums.ChannelGoogle
	case strings.Contains(normalized, "organic"):
		return enums.ChannelOrganic
	case strings.Contains(normalized, "direct"):
		return enums.ChannelDirect
	default:
		return enums.ChannelOther
	}
}

func containsAny(value string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(value, needle) {
			return true
		}
	}
	return false
}
