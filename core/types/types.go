// Package types defines the shared domain types for price reconciliation.
package types

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ItemID identifies a catalog item (an in-app purchase or subscription)
type ItemID string

// Territory is a storefront-defined market code (e.g. "USA", "GBR").
// A territory scopes both the currency and the tier ladder.
type Territory string

// PricePoint is one legal, storefront-defined price for an item in a
// territory's currency
type PricePoint struct {
	// ID is the storefront identifier of the price point, required for writes
	ID string `json:"id"`

	// Territory the price point belongs to
	Territory Territory `json:"territory"`

	// Amount is the customer price in the territory's currency
	Amount decimal.Decimal `json:"amount"`
}

// Ladder is the ordered set of legal price points for one item in one
// territory, ascending by amount
type Ladder []PricePoint

// Sort orders the ladder ascending by amount
func (l Ladder) Sort() {
	sort.Slice(l, func(i, j int) bool {
		return l[i].Amount.LessThan(l[j].Amount)
	})
}

// CurrentPrice is the resolved price for an (item, territory) pair
type CurrentPrice struct {
	// Territory the price applies to
	Territory Territory `json:"territory"`

	// Amount is the customer price
	Amount decimal.Decimal `json:"amount"`

	// Manual reports whether the price is an explicit manual override
	// rather than a storefront-calculated one
	Manual bool `json:"manual"`
}

// PriceSet maps territory to the resolved current price for one item
type PriceSet map[Territory]CurrentPrice

// Territories returns the territories in the set in sorted order
func (s PriceSet) Territories() []Territory {
	out := make([]Territory, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
