package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"appstore-pricing/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadJSON verifies the JSON rules format parses and validates
func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "rules.json", `[
		{"sourceIapId": "1001", "targetIapId": "1002", "discountPercent": 30},
		{"sourceIapId": "2001", "targetIapId": "2002", "discountPercent": 12.5}
	]`)

	rules, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].SourceItemID != "1001" || rules[0].TargetItemID != "1002" {
		t.Errorf("unexpected rule: %+v", rules[0])
	}
	if !rules[1].DiscountPercent.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("expected discount 12.5, got %s", rules[1].DiscountPercent)
	}
}

// TestLoadHCL verifies the HCL rules format parses and validates
func TestLoadHCL(t *testing.T) {
	path := writeFile(t, "rules.hcl", `
rule {
  source           = "1001"
  target           = "1002"
  discount_percent = 30
}

rule {
  source           = "2001"
  target           = "2002"
  discount_percent = 12.5
}
`)

	rules, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if !rules[0].DiscountPercent.Equal(decimal.RequireFromString("30")) {
		t.Errorf("expected discount 30, got %s", rules[0].DiscountPercent)
	}
}

// TestLoadValidation covers the rejection cases
func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "empty rules list",
			content: `[]`,
		},
		{
			name:    "zero discount",
			content: `[{"sourceIapId": "1", "targetIapId": "2", "discountPercent": 0}]`,
		},
		{
			name:    "full discount",
			content: `[{"sourceIapId": "1", "targetIapId": "2", "discountPercent": 100}]`,
		},
		{
			name:    "negative discount",
			content: `[{"sourceIapId": "1", "targetIapId": "2", "discountPercent": -5}]`,
		},
		{
			name:    "missing source",
			content: `[{"targetIapId": "2", "discountPercent": 10}]`,
		},
		{
			name:    "missing target",
			content: `[{"sourceIapId": "1", "discountPercent": 10}]`,
		},
		{
			name:    "malformed json",
			content: `{not json`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "rules.json", tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsType(err, errors.TypeInput) {
				t.Errorf("expected INPUT_ERROR, got %v", err)
			}
		})
	}
}

// TestLoadMissingFile verifies a missing rules file is an input error
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected INPUT_ERROR, got %v", err)
	}
}
