package enums

import "fmt"

// CreditReason maps to the credit_reason enum in Postgres.
type CreditReason string

const (
	CreditReasonPriceUpdate CreditReason = "price_update"
	CreditReasonBuyBoxCheck CreditReason = "buybox_check"
	CreditReasonTopUp       CreditReason = "top_up"
	CreditReasonAdjustment  CreditReason = "adjustment"
)

var validCreditReasons = []CreditReason{
	CreditReasonPriceUpdate,
	CreditReasonBuyBoxCheck,
	CreditReasonTopUp,
	CreditReasonAdjustment,
}

// IsValid reports whether the value matches the canonical credit reason enum.
func (r CreditReason) IsValid() bool {
	for _, candidate := range validCreditReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseCreditReason converts raw input into CreditReason.
func ParseCreditReason(value string) (CreditReason, error) {
	for _, candidate := range validCreditReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid credit reason %q", value)
}
