package enums

import "fmt"

// Channel is the canonical marketing channel slug assigned by attribution.
type Channel string

const (
	ChannelMeta      Channel = "meta"
	ChannelGoogle    Channel = "google"
	ChannelOrganic   Channel = "organic"
	ChannelEmail     Channel = "email"
	ChannelAffiliate Channel = "affiliate"
	ChannelDirect    Channel = "direct"
	ChannelOther     Channel = "other"
)

var validChannels = []Channel{
	ChannelMeta,
	ChannelGoogle,
	ChannelOrganic,
	ChannelEmail,
	ChannelAffiliate,
	ChannelDirect,
	ChannelOther,
}

// IsValid reports whether the value matches the canonical channel enum.
func (c Channel) IsValid() bool {
	for _, candidate := range validChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChannel converts the raw string to Channel.
func ParseChannel(value string) (Channel, error) {
	for _, candidate := range validChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid channel %q", value)
}
