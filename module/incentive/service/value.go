package service

import (
	"fmt"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
)

// CalculateValue returns the peso value of an incentive applied to a base
// order or trip amount.
func CalculateValue(base, amount float64, t domain.AmountType) (float64, error) {
	if base < 0 {
		return 0, fmt.Errorf("%w: base amount must not be negative", domain.ErrInvalidQuery)
	}
	switch t {
	case domain.AmountPercentage:
		return base * amount / 100, nil
	case domain.AmountFixed:
		return amount, nil
	default:
		return 0, fmt.Errorf("%w: unknown amount type %q", domain.ErrInvalidQuery, t)
	}
}
