package enums

import "fmt"

// Marketplace identifies a supported sales channel.
type Marketplace string

const (
	MarketplaceAmazon   Marketplace = "amazon"
	MarketplaceTakealot Marketplace = "takealot"
)

var validMarketplaces = []Marketplace{
	MarketplaceAmazon,
	MarketplaceTakealot,
}

// IsValid reports whether the value matches a supported marketplace.
func (m Marketplace) IsValid() bool {
	for _, candidate := range validMarketplaces {
		if candidate == m {
			return true
		}
	}
	return false
}

// Marketplaces returns every supported marketplace.
func Marketplaces() []Marketplace {
	out := make([]Marketplace, len(validMarketplaces))
	copy(out, validMarketplaces)
	return out
}

// ParseMarketplace converts raw input into Marketplace.
func ParseMarketplace(value string) (Marketplace, error) {
	for _, candidate := range validMarketplaces {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid marketplace %q", value)
}
