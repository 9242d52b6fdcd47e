package enums

import "fmt"

// BuyBoxStatus maps to the buybox_status enum in Postgres.
type BuyBoxStatus string

const (
	BuyBoxStatusOwned    BuyBoxStatus = "owned"
	BuyBoxStatusNotOwned BuyBoxStatus = "not_owned"
	BuyBoxStatusShared   BuyBoxStatus = "shared"
	BuyBoxStatusNoBuyBox BuyBoxStatus = "no_buy_box"
	BuyBoxStatusUnknown  BuyBoxStatus = "unknown"
)

var validBuyBoxStatuses = []BuyBoxStatus{
	BuyBoxStatusOwned,
	BuyBoxStatusNotOwned,
	BuyBoxStatusShared,
	BuyBoxStatusNoBuyBox,
	BuyBoxStatusUnknown,
}

// IsValid reports whether the value matches the canonical buy box status enum.
func (s BuyBoxStatus) IsValid() bool {
	for _, candidate := range validBuyBoxStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsWinning reports whether the status counts toward the rolling win rate.
func (s BuyBoxStatus) IsWinning() bool {
	return s == BuyBoxStatusOwned || s == BuyBoxStatusShared
}

// ParseBuyBoxStatus converts raw input into BuyBoxStatus.
func ParseBuyBoxStatus(value string) (BuyBoxStatus, error) {
	for _, candidate := range validBuyBoxStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid buy box status %q", value)
}
