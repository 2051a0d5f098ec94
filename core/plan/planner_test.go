package plan

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"appstore-pricing/core/types"
	"appstore-pricing/internal/errors"
)

type fakeWriter struct {
	calls int
	last  *types.UpdatePlan
	err   error
}

func (f *fakeWriter) ApplyPrices(ctx context.Context, plan *types.UpdatePlan) error {
	f.calls++
	f.last = plan
	return f.err
}

func decision(territory string, chosen string, changed bool) types.TerritoryDecision {
	amount := decimal.RequireFromString(chosen)
	return types.TerritoryDecision{
		Territory:    types.Territory(territory),
		SourceAmount: amount,
		IdealAmount:  amount,
		Chosen:       types.PricePoint{ID: "pp-" + territory, Territory: types.Territory(territory), Amount: amount},
		ExactMatch:   true,
		Changed:      changed,
	}
}

// TestBuildChangedOnly verifies unchanged territories stay out of the
// write payload and the payload is ordered by territory
func TestBuildChangedOnly(t *testing.T) {
	plan := Build("tgt", "USA", []types.TerritoryDecision{
		decision("JPN", "1200", true),
		decision("USA", "9.99", false),
		decision("DEU", "8.99", true),
	})

	if len(plan.Decisions) != 2 {
		t.Fatalf("expected 2 changed territories, got %d", len(plan.Decisions))
	}
	if plan.Decisions[0].Territory != "DEU" || plan.Decisions[1].Territory != "JPN" {
		t.Errorf("expected [DEU JPN], got %v", plan.Decisions)
	}
	if plan.ItemID != "tgt" || plan.BaseTerritory != "USA" {
		t.Errorf("unexpected plan identity: %+v", plan)
	}
}

// TestApplyDryRun verifies dry-run issues zero write calls
func TestApplyDryRun(t *testing.T) {
	writer := &fakeWriter{}
	planner := NewPlanner(writer, true)

	plan := Build("tgt", "USA", []types.TerritoryDecision{decision("USA", "9.99", true)})
	applied, err := planner.Apply(context.Background(), plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied {
		t.Error("dry-run must not report an applied write")
	}
	if writer.calls != 0 {
		t.Errorf("dry-run issued %d write calls", writer.calls)
	}
}

// TestApplyLive verifies a live run submits the plan once
func TestApplyLive(t *testing.T) {
	writer := &fakeWriter{}
	planner := NewPlanner(writer, false)

	plan := Build("tgt", "USA", []types.TerritoryDecision{decision("USA", "9.99", true)})
	applied, err := planner.Apply(context.Background(), plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !applied {
		t.Error("expected the plan to be applied")
	}
	if writer.calls != 1 {
		t.Errorf("expected 1 write call, got %d", writer.calls)
	}
	if writer.last.ItemID != "tgt" {
		t.Errorf("unexpected plan submitted: %+v", writer.last)
	}
}

// TestApplyEmptyPlan verifies a fully idempotent run writes nothing even
// in live mode
func TestApplyEmptyPlan(t *testing.T) {
	writer := &fakeWriter{}
	planner := NewPlanner(writer, false)

	plan := Build("tgt", "USA", []types.TerritoryDecision{decision("USA", "9.99", false)})
	applied, err := planner.Apply(context.Background(), plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied || writer.calls != 0 {
		t.Errorf("empty plan must not write (applied=%v, calls=%d)", applied, writer.calls)
	}
}

// TestApplyRejectedWrite verifies a rejected batch surfaces as
// BATCH_WRITE_REJECTED and is not retried
func TestApplyRejectedWrite(t *testing.T) {
	writer := &fakeWriter{err: errors.Transient("503", nil)}
	planner := NewPlanner(writer, false)

	plan := Build("tgt", "USA", []types.TerritoryDecision{decision("USA", "9.99", true)})
	applied, err := planner.Apply(context.Background(), plan)
	if err == nil {
		t.Fatal("expected error")
	}
	if applied {
		t.Error("rejected write must not report applied")
	}
	if !errors.IsType(err, errors.TypeBatchWrite) {
		t.Errorf("expected BATCH_WRITE_REJECTED, got %v", err)
	}
	if writer.calls != 1 {
		t.Errorf("rejected write must not be retried, got %d calls", writer.calls)
	}
}
