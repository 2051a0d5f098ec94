// Package plan collects territory decisions into a single atomic batch
// update and renders the per-territory report.
package plan

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"appstore-pricing/core/types"
	"appstore-pricing/internal/errors"
	"appstore-pricing/internal/logging"
)

// BatchWriter submits a full-replacement manual price schedule to the
// storefront. The call is all-or-nothing: the storefront never observes a
// partially-updated schedule.
type BatchWriter interface {
	ApplyPrices(ctx context.Context, plan *types.UpdatePlan) error
}

// Build assembles the write payload for a rule. Only territories with a
// detected change are included, so an unchanged schedule produces an empty
// plan and no write at all on repeat runs.
func Build(target types.ItemID, base types.Territory, decisions []types.TerritoryDecision) *types.UpdatePlan {
	changed := make([]types.TerritoryDecision, 0, len(decisions))
	for _, d := range decisions {
		if d.Changed {
			changed = append(changed, d)
		}
	}
	sort.Slice(changed, func(i, j int) bool {
		return changed[i].Territory < changed[j].Territory
	})

	return &types.UpdatePlan{
		ItemID:        target,
		BaseTerritory: base,
		Decisions:     changed,
	}
}

// Planner gates the write step behind the run mode
type Planner struct {
	writer BatchWriter
	dryRun bool
}

// NewPlanner creates a planner. Under dry-run every read and computation
// still happens; only the write is withheld.
func NewPlanner(writer BatchWriter, dryRun bool) *Planner {
	return &Planner{writer: writer, dryRun: dryRun}
}

// Apply submits the plan unless it is empty or the planner is in dry-run
// mode. It returns whether a write was issued. A rejected write is not
// retried; the storefront call is atomic and retrying would be ambiguous.
func (p *Planner) Apply(ctx context.Context, plan *types.UpdatePlan) (bool, error) {
	if plan.Empty() {
		logging.Info("no territories changed, skipping write",
			zap.String("item", string(plan.ItemID)))
		return false, nil
	}

	if p.dryRun {
		logging.Info("dry run, withholding write",
			zap.String("item", string(plan.ItemID)),
			zap.Int("territories", len(plan.Decisions)))
		return false, nil
	}

	if err := p.writer.ApplyPrices(ctx, plan); err != nil {
		return false, errors.BatchWrite(string(plan.ItemID), err)
	}

	logging.Info("applied batch price update",
		zap.String("item", string(plan.ItemID)),
		zap.Int("territories", len(plan.Decisions)))
	return true, nil
}
