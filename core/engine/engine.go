// Package engine runs the per-rule reconciliation pipeline: resolve source
// prices, fetch the target's ladder per territory, reconcile, plan, report,
// write. Rules are independent; one rule's failure never blocks another.
package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"appstore-pricing/core/plan"
	"appstore-pricing/core/reconcile"
	"appstore-pricing/core/resolver"
	"appstore-pricing/core/tiers"
	"appstore-pricing/core/types"
	"appstore-pricing/core/ui"
	"appstore-pricing/internal/errors"
	"appstore-pricing/internal/logging"
)

// Engine wires the pipeline components for an invocation
type Engine struct {
	resolver    *resolver.Resolver
	tiers       *tiers.Lookup
	planner     *plan.Planner
	out         *ui.Writer
	concurrency int
}

// New creates an engine. Concurrency caps parallel tier-ladder lookups
// within a rule; values below 1 mean sequential.
func New(res *resolver.Resolver, lookup *tiers.Lookup, planner *plan.Planner, out *ui.Writer, concurrency int) *Engine {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Engine{
		resolver:    res,
		tiers:       lookup,
		planner:     planner,
		out:         out,
		concurrency: concurrency,
	}
}

// territoryResult is the slot for one territory's outcome. Slots are
// written by index, so the fan-out needs no locking around decisions.
type territoryResult struct {
	decision *types.TerritoryDecision
	skipped  *types.SkippedTerritory
}

// RunRule processes one rule end to end. The returned outcome carries the
// decisions, skips, plan, and any rule-level failure.
func (e *Engine) RunRule(ctx context.Context, rule types.Rule) *types.RuleOutcome {
	outcome := &types.RuleOutcome{
		Rule:  rule,
		RunID: uuid.NewString(),
	}

	log := logging.With(
		zap.String("run_id", outcome.RunID),
		zap.String("source", string(rule.SourceItemID)),
		zap.String("target", string(rule.TargetItemID)))
	log.Info("processing rule", zap.String("discount", rule.DiscountPercent.String()+"%"))

	srcSchedule, srcPrices, err := e.resolver.Resolve(ctx, rule.SourceItemID)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	if len(srcPrices) == 0 {
		outcome.Err = errors.Newf(errors.TypeUnknownItem,
			"item %s has no prices in any territory", rule.SourceItemID)
		return outcome
	}

	// The target's current prices drive change detection. A target the
	// storefront has no schedule for yet may be a first-time set: every
	// decided territory counts as changed. Whether the item exists at all
	// is settled by the ladder lookups below.
	targetPrices := types.PriceSet{}
	targetUnknown := false
	if _, prices, err := e.resolver.Resolve(ctx, rule.TargetItemID); err != nil {
		if !errors.IsType(err, errors.TypeUnknownItem) {
			outcome.Err = err
			return outcome
		}
		targetUnknown = true
		log.Warn("target has no price schedule yet, treating all territories as new")
	} else {
		targetPrices = prices
	}

	territories := srcPrices.Territories()
	results := make([]territoryResult, len(territories))

	var mu sync.Mutex
	bar := e.out.NewProgressBar(len(territories), "  reconciling")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, territory := range territories {
		i, territory := i, territory
		g.Go(func() error {
			err := e.reconcileTerritory(gctx, rule, territory, srcPrices[territory], targetPrices, &results[i])
			mu.Lock()
			bar.Increment()
			mu.Unlock()
			return err
		})
	}
	err = g.Wait()
	bar.Done()
	if err != nil {
		outcome.Err = err
		return outcome
	}

	for _, r := range results {
		if r.decision != nil {
			outcome.Decisions = append(outcome.Decisions, *r.decision)
		}
		if r.skipped != nil {
			outcome.Skipped = append(outcome.Skipped, *r.skipped)
		}
	}

	// A target without a schedule is only a first-time set if it has at
	// least one ladder. No schedule and no ladders anywhere means the
	// item itself does not exist.
	if targetUnknown && len(outcome.Decisions) == 0 {
		outcome.Err = errors.Newf(errors.TypeUnknownItem,
			"item %s has no price schedule and no price points in any territory", rule.TargetItemID)
		return outcome
	}

	outcome.Plan = plan.Build(rule.TargetItemID, srcSchedule.BaseTerritory, outcome.Decisions)
	outcome.Applied, outcome.Err = e.planner.Apply(ctx, outcome.Plan)
	return outcome
}

// reconcileTerritory decides one territory into its result slot. A missing
// ladder marks the territory skipped and never fails the rule.
func (e *Engine) reconcileTerritory(
	ctx context.Context,
	rule types.Rule,
	territory types.Territory,
	source types.CurrentPrice,
	targetPrices types.PriceSet,
	slot *territoryResult,
) error {
	ladder, err := e.tiers.Ladder(ctx, rule.TargetItemID, territory)
	if err != nil {
		if errors.IsType(err, errors.TypeTierLookup) {
			slot.skipped = &types.SkippedTerritory{
				Territory: territory,
				Reason:    "no-ladder",
			}
			return nil
		}
		return err
	}

	var current *types.CurrentPrice
	if cp, ok := targetPrices[territory]; ok {
		current = &cp
	}

	decision := reconcile.Decide(rule, reconcile.Input{
		Territory: territory,
		Source:    source.Amount,
		Ladder:    ladder,
		Current:   current,
	})
	slot.decision = &decision
	return nil
}

// Run processes every rule in order, rendering each report as it
// completes. An authorization failure aborts the remaining rules since it
// would recur for every one of them.
func (e *Engine) Run(ctx context.Context, rules []types.Rule) []*types.RuleOutcome {
	outcomes := make([]*types.RuleOutcome, 0, len(rules))

	for _, rule := range rules {
		outcome := e.RunRule(ctx, rule)
		outcomes = append(outcomes, outcome)

		plan.RenderReport(e.out, outcome)
		if outcome.Failed() {
			e.out.Error("rule [%s] → [%s] failed: %v",
				rule.SourceItemID, rule.TargetItemID, outcome.Err)
		} else if outcome.Applied {
			e.out.Success("item %s updated for %d territories",
				rule.TargetItemID, len(outcome.Plan.Decisions))
		}

		if errors.IsType(outcome.Err, errors.TypeAuthorization) {
			e.out.Error("credential rejected, aborting remaining rules")
			break
		}
	}

	return outcomes
}
