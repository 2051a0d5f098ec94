// Package reconcile implements the discount reconciliation engine.
//
// For one territory it computes the ideal discounted price from the source
// item's resolved price, maps it onto the nearest legal tier of the target
// item's ladder, and decides whether the storefront needs a change. The
// computation is pure and deterministic: identical inputs always produce
// the identical decision, so territories can be reconciled concurrently.
package reconcile

import (
	"github.com/shopspring/decimal"

	"appstore-pricing/core/types"
)

// idealPlaces is the rounding precision of the ideal price. One decimal
// place finer than any storefront customer price, so a chosen tier is an
// exact match only when the discount ratio truly holds in that territory.
const idealPlaces = 3

// Input is everything needed to decide one territory
type Input struct {
	// Territory being reconciled
	Territory types.Territory

	// Source is the source item's resolved price in the territory
	Source decimal.Decimal

	// Ladder is the target item's tier ladder for the territory,
	// ascending by amount and never empty
	Ladder types.Ladder

	// Current is the target item's current resolved price in the
	// territory, nil when the target has no price there yet
	Current *types.CurrentPrice
}

// Ideal computes the discounted price for a source amount, rounded
// half-to-even to keep the bias balanced across hundreds of territories.
func Ideal(source decimal.Decimal, rule types.Rule) decimal.Decimal {
	return source.Mul(rule.Multiplier()).RoundBank(idealPlaces)
}

// ClosestTier selects the ladder tier nearest to the ideal amount.
// When two tiers are equidistant the lower one wins, so the result never
// overcharges relative to the ideal discount.
func ClosestTier(ladder types.Ladder, ideal decimal.Decimal) types.PricePoint {
	best := ladder[0]
	bestDiff := ladder[0].Amount.Sub(ideal).Abs()

	for _, point := range ladder[1:] {
		diff := point.Amount.Sub(ideal).Abs()
		if diff.LessThan(bestDiff) {
			best = point
			bestDiff = diff
		}
	}
	return best
}

// Decide reconciles one territory under the rule's discount
func Decide(rule types.Rule, in Input) types.TerritoryDecision {
	ideal := Ideal(in.Source, rule)
	chosen := ClosestTier(in.Ladder, ideal)

	changed := true
	if in.Current != nil && in.Current.Amount.Equal(chosen.Amount) {
		changed = false
	}

	return types.TerritoryDecision{
		Territory:    in.Territory,
		SourceAmount: in.Source,
		IdealAmount:  ideal,
		Chosen:       chosen,
		ExactMatch:   chosen.Amount.Equal(ideal),
		Changed:      changed,
	}
}
