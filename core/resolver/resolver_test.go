package resolver

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"appstore-pricing/core/types"
	"appstore-pricing/internal/errors"
)

type fakeReader struct {
	schedule  Schedule
	automatic map[types.Territory]types.CurrentPrice
	manual    map[types.Territory]types.CurrentPrice
	err       error
}

func (f *fakeReader) PriceSchedule(ctx context.Context, item types.ItemID) (Schedule, error) {
	if f.err != nil {
		return Schedule{}, f.err
	}
	return f.schedule, nil
}

func (f *fakeReader) AutomaticPrices(ctx context.Context, scheduleID string) (map[types.Territory]types.CurrentPrice, error) {
	return f.automatic, nil
}

func (f *fakeReader) ManualPrices(ctx context.Context, scheduleID string) (map[types.Territory]types.CurrentPrice, error) {
	return f.manual, nil
}

func price(territory, amount string) types.CurrentPrice {
	return types.CurrentPrice{
		Territory: types.Territory(territory),
		Amount:    decimal.RequireFromString(amount),
	}
}

// TestResolveManualWins verifies manual overrides take precedence per
// territory, automatic prices fill the rest, and territories with neither
// are absent
func TestResolveManualWins(t *testing.T) {
	reader := &fakeReader{
		schedule: Schedule{ID: "sched-1", BaseTerritory: "USA"},
		automatic: map[types.Territory]types.CurrentPrice{
			"USA": price("USA", "9.99"),
			"GBR": price("GBR", "8.99"),
			"JPN": price("JPN", "1200"),
		},
		manual: map[types.Territory]types.CurrentPrice{
			"GBR": price("GBR", "7.49"),
		},
	}

	schedule, resolved, err := New(reader).Resolve(context.Background(), "item-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if schedule.ID != "sched-1" || schedule.BaseTerritory != "USA" {
		t.Errorf("unexpected schedule: %+v", schedule)
	}
	if len(resolved) != 3 {
		t.Fatalf("expected 3 territories, got %d", len(resolved))
	}

	if got := resolved["GBR"]; !got.Amount.Equal(decimal.RequireFromString("7.49")) || !got.Manual {
		t.Errorf("expected manual 7.49 for GBR, got %+v", got)
	}
	if got := resolved["USA"]; !got.Amount.Equal(decimal.RequireFromString("9.99")) || got.Manual {
		t.Errorf("expected automatic 9.99 for USA, got %+v", got)
	}
	if _, ok := resolved["DEU"]; ok {
		t.Error("territory with neither price should be absent")
	}
}

// TestResolveEmptySets verifies an item priced nowhere resolves to an
// empty set rather than an error
func TestResolveEmptySets(t *testing.T) {
	reader := &fakeReader{
		schedule:  Schedule{ID: "sched-2", BaseTerritory: "USA"},
		automatic: map[types.Territory]types.CurrentPrice{},
		manual:    map[types.Territory]types.CurrentPrice{},
	}

	_, resolved, err := New(reader).Resolve(context.Background(), "item-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved) != 0 {
		t.Errorf("expected empty set, got %d entries", len(resolved))
	}
}

// TestResolveUnknownItem verifies the schedule error passes through with
// its kind intact
func TestResolveUnknownItem(t *testing.T) {
	reader := &fakeReader{err: errors.UnknownItem("missing")}

	_, _, err := New(reader).Resolve(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.IsType(err, errors.TypeUnknownItem) {
		t.Errorf("expected UNKNOWN_ITEM, got %v", err)
	}
}
