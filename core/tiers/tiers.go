// Package tiers looks up the legal price-point ladder for an item in a
// territory.
package tiers

import (
	"context"

	"appstore-pricing/core/types"
	"appstore-pricing/internal/errors"
)

// LadderSource reads per-territory price points from the storefront
type LadderSource interface {
	// PricePoints returns every legal price point for the item in the
	// territory, in any order
	PricePoints(ctx context.Context, item types.ItemID, territory types.Territory) ([]types.PricePoint, error)
}

// Lookup returns ordered tier ladders. Ladders are item- and
// territory-specific; two items never share one.
type Lookup struct {
	source LadderSource
}

// New creates a lookup over a ladder source
func New(source LadderSource) *Lookup {
	return &Lookup{source: source}
}

// Ladder returns the item's ladder for the territory, ascending by amount.
// An empty or unavailable ladder is reported as a TIER_LOOKUP_UNAVAILABLE
// error; callers skip the territory rather than failing the rule.
// Credential rejections and exhausted transport retries pass through
// untouched: they are rule-fatal, not per-territory conditions.
func (l *Lookup) Ladder(ctx context.Context, item types.ItemID, territory types.Territory) (types.Ladder, error) {
	points, err := l.source.PricePoints(ctx, item, territory)
	if err != nil {
		if errors.IsType(err, errors.TypeAuthorization) || errors.IsType(err, errors.TypeTransient) {
			return nil, err
		}
		return nil, errors.TierLookup(string(territory), err)
	}
	if len(points) == 0 {
		return nil, errors.TierLookup(string(territory), nil)
	}

	ladder := types.Ladder(points)
	ladder.Sort()
	return ladder, nil
}
