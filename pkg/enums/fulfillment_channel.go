package enums

import "fmt"

// FulfillmentChannel describes how a competitor offer ships.
type FulfillmentChannel string

const (
	FulfillmentChannelPlatform FulfillmentChannel = "platform"
	FulfillmentChannelMerchant FulfillmentChannel = "merchant"
	FulfillmentChannelLeadTime FulfillmentChannel = "lead_time"
	FulfillmentChannelUnknown  FulfillmentChannel = "unknown"
)

var validFulfillmentChannels = []FulfillmentChannel{
	FulfillmentChannelPlatform,
	FulfillmentChannelMerchant,
	FulfillmentChannelLeadTime,
	FulfillmentChannelUnknown,
}

// IsValid reports whether the value matches the canonical channel enum.
func (c FulfillmentChannel) IsValid() bool {
	for _, candidate := range validFulfillmentChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseFulfillmentChannel converts raw input into FulfillmentChannel.
func ParseFulfillmentChannel(value string) (FulfillmentChannel, error) {
	for _, candidate := range validFulfillmentChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment channel %q", value)
}
