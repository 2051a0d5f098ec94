// Package plan - Per-territory report rendering
package plan

import (
	"sort"

	"appstore-pricing/core/types"
	"appstore-pricing/core/ui"
)

// RenderReport writes the per-territory table for one rule. The report is
// identical between dry-run and live runs; it is the audit artifact of
// what the run acted on (or would have).
func RenderReport(w *ui.Writer, outcome *types.RuleOutcome) {
	w.Println("Rule: [%s] → [%s]  discount=%s%%",
		outcome.Rule.SourceItemID, outcome.Rule.TargetItemID, outcome.Rule.DiscountPercent)

	decisions := make([]types.TerritoryDecision, len(outcome.Decisions))
	copy(decisions, outcome.Decisions)
	sort.Slice(decisions, func(i, j int) bool {
		return decisions[i].Territory < decisions[j].Territory
	})

	table := w.NewTable("Territory", "Source", "Ideal", "Chosen", "Flag")
	changed := 0
	for _, d := range decisions {
		flag := ""
		if !d.ExactMatch {
			flag = "!"
		}
		if d.Changed {
			changed++
		}
		table.AddRow(
			string(d.Territory),
			d.SourceAmount.StringFixed(2),
			d.IdealAmount.String(),
			d.Chosen.Amount.StringFixed(2),
			flag,
		)
	}
	table.Render()

	skipped := make([]types.SkippedTerritory, len(outcome.Skipped))
	copy(skipped, outcome.Skipped)
	sort.Slice(skipped, func(i, j int) bool {
		return skipped[i].Territory < skipped[j].Territory
	})
	for _, s := range skipped {
		w.Warning("%s skipped: %s", s.Territory, s.Reason)
	}

	w.Println("%d territories decided, %d changed, %d skipped",
		len(decisions), changed, len(skipped))
}
