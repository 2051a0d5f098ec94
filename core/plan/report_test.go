package plan

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"appstore-pricing/core/types"
	"appstore-pricing/core/ui"
)

// TestRenderReportRows verifies flagged and unflagged rows, skip warnings,
// and the summary line
func TestRenderReportRows(t *testing.T) {
	outcome := &types.RuleOutcome{
		Rule: types.Rule{
			SourceItemID:    "src",
			TargetItemID:    "tgt",
			DiscountPercent: decimal.RequireFromString("10"),
		},
		Decisions: []types.TerritoryDecision{
			{
				Territory:    "USA",
				SourceAmount: decimal.RequireFromString("9.99"),
				IdealAmount:  decimal.RequireFromString("8.991"),
				Chosen:       types.PricePoint{ID: "pp1", Territory: "USA", Amount: decimal.RequireFromString("8.99")},
				ExactMatch:   false,
				Changed:      true,
			},
			{
				Territory:    "GBR",
				SourceAmount: decimal.RequireFromString("100.00"),
				IdealAmount:  decimal.RequireFromString("90"),
				Chosen:       types.PricePoint{ID: "pp2", Territory: "GBR", Amount: decimal.RequireFromString("90.00")},
				ExactMatch:   true,
				Changed:      false,
			},
		},
		Skipped: []types.SkippedTerritory{
			{Territory: "XKX", Reason: "no-ladder"},
		},
	}

	var buf bytes.Buffer
	RenderReport(ui.NewWriter(&buf, true), outcome)
	out := buf.String()

	for _, want := range []string{
		"Rule: [src] → [tgt]  discount=10%",
		"USA",
		"8.991",
		"8.99",
		"!",
		"GBR",
		"XKX skipped: no-ladder",
		"2 territories decided, 1 changed, 1 skipped",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	// GBR hit the ideal exactly; its row carries no flag.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "GBR") && strings.Contains(line, "!") {
			t.Errorf("exact-match row must not be flagged: %q", line)
		}
	}
}

// TestRenderReportDeterministic verifies identical outcomes render
// byte-identically regardless of decision order
func TestRenderReportDeterministic(t *testing.T) {
	a := types.TerritoryDecision{
		Territory:    "AAA",
		SourceAmount: decimal.RequireFromString("1.99"),
		IdealAmount:  decimal.RequireFromString("1.791"),
		Chosen:       types.PricePoint{ID: "p1", Territory: "AAA", Amount: decimal.RequireFromString("1.79")},
	}
	b := types.TerritoryDecision{
		Territory:    "BBB",
		SourceAmount: decimal.RequireFromString("2.99"),
		IdealAmount:  decimal.RequireFromString("2.691"),
		Chosen:       types.PricePoint{ID: "p2", Territory: "BBB", Amount: decimal.RequireFromString("2.69")},
	}
	rule := types.Rule{SourceItemID: "s", TargetItemID: "t", DiscountPercent: decimal.RequireFromString("10")}

	var first, second bytes.Buffer
	RenderReport(ui.NewWriter(&first, true), &types.RuleOutcome{Rule: rule, Decisions: []types.TerritoryDecision{a, b}})
	RenderReport(ui.NewWriter(&second, true), &types.RuleOutcome{Rule: rule, Decisions: []types.TerritoryDecision{b, a}})

	if first.String() != second.String() {
		t.Errorf("report depends on decision order:\n%s\nvs\n%s", first.String(), second.String())
	}
}
