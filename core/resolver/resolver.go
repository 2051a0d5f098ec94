// Package resolver resolves an item's authoritative current price in every
// territory the storefront lists for it.
package resolver

import (
	"context"

	"go.uber.org/zap"

	"appstore-pricing/core/types"
	"appstore-pricing/internal/errors"
	"appstore-pricing/internal/logging"
)

// Schedule identifies an item's storefront price schedule
type Schedule struct {
	// ID is the schedule resource identifier
	ID string

	// BaseTerritory anchors the schedule (required for writes)
	BaseTerritory types.Territory
}

// PriceReader reads an item's price data from the storefront
type PriceReader interface {
	// PriceSchedule returns the item's current price schedule
	PriceSchedule(ctx context.Context, item types.ItemID) (Schedule, error)

	// AutomaticPrices returns the storefront-calculated price per territory
	AutomaticPrices(ctx context.Context, scheduleID string) (map[types.Territory]types.CurrentPrice, error)

	// ManualPrices returns the explicit manual price per territory
	ManualPrices(ctx context.Context, scheduleID string) (map[types.Territory]types.CurrentPrice, error)
}

// Resolver merges automatic and manual prices into the resolved set
type Resolver struct {
	reader PriceReader
}

// New creates a resolver over a price reader
func New(reader PriceReader) *Resolver {
	return &Resolver{reader: reader}
}

// Resolve returns the item's schedule and its resolved price per territory.
// Manual overrides win per territory; a territory with neither an automatic
// nor a manual price is absent from the result.
func (r *Resolver) Resolve(ctx context.Context, item types.ItemID) (Schedule, types.PriceSet, error) {
	schedule, err := r.reader.PriceSchedule(ctx, item)
	if err != nil {
		return Schedule{}, nil, err
	}

	automatic, err := r.reader.AutomaticPrices(ctx, schedule.ID)
	if err != nil {
		return Schedule{}, nil, errors.Wrapf(errors.TypeInternal, err,
			"fetching automatic prices for item %s", item)
	}

	manual, err := r.reader.ManualPrices(ctx, schedule.ID)
	if err != nil {
		return Schedule{}, nil, errors.Wrapf(errors.TypeInternal, err,
			"fetching manual prices for item %s", item)
	}

	resolved := make(types.PriceSet, len(automatic)+len(manual))
	for territory, price := range automatic {
		price.Manual = false
		resolved[territory] = price
	}
	for territory, price := range manual {
		price.Manual = true
		resolved[territory] = price
	}

	logging.Debug("resolved prices",
		zap.String("item", string(item)),
		zap.Int("automatic", len(automatic)),
		zap.Int("manual", len(manual)),
		zap.Int("resolved", len(resolved)))

	return schedule, resolved, nil
}
