// Package types - Pricing rules
package types

import (
	"github.com/shopspring/decimal"

	"appstore-pricing/internal/errors"
)

// Rule pins the target item's price to a fixed percentage discount below
// the source item's price, per territory
type Rule struct {
	// SourceItemID is the item whose resolved prices drive the discount
	SourceItemID ItemID `json:"sourceIapId"`

	// TargetItemID is the item whose prices are updated
	TargetItemID ItemID `json:"targetIapId"`

	// DiscountPercent is strictly within (0, 100)
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

// Validate checks the rule is well formed
func (r Rule) Validate() error {
	if r.SourceItemID == "" {
		return errors.Input("rule is missing sourceIapId")
	}
	if r.TargetItemID == "" {
		return errors.Input("rule is missing targetIapId")
	}
	if !r.DiscountPercent.IsPositive() || r.DiscountPercent.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return errors.Newf(errors.TypeInput,
			"discountPercent must be between 0 and 100 (exclusive), got %s", r.DiscountPercent)
	}
	return nil
}

// Multiplier returns (1 - DiscountPercent/100)
func (r Rule) Multiplier() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(r.DiscountPercent.Div(decimal.NewFromInt(100)))
}
