// Package rules loads and validates the pricing rules file.
// Rules may be written as a JSON array (the original exchange format) or
// as HCL rule blocks.
package rules

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/shopspring/decimal"

	"appstore-pricing/core/types"
	"appstore-pricing/internal/errors"
)

// hclRule is the HCL surface of a rule block
type hclRule struct {
	Source          string  `hcl:"source"`
	Target          string  `hcl:"target"`
	DiscountPercent float64 `hcl:"discount_percent"`
}

// hclFile is the root HCL document
type hclFile struct {
	Rules []hclRule `hcl:"rule,block"`
}

// Load reads the rules file at path and validates every rule.
// The format is chosen by extension: .hcl for HCL, anything else JSON.
func Load(path string) ([]types.Rule, error) {
	var (
		rules []types.Rule
		err   error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		rules, err = loadHCL(path)
	default:
		rules, err = loadJSON(path)
	}
	if err != nil {
		return nil, err
	}

	if len(rules) == 0 {
		return nil, errors.Input("no pricing rules defined: " + path)
	}

	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, errors.Wrapf(errors.TypeInput, err, "rule %d is invalid", i+1)
		}
	}

	return rules, nil
}

func loadJSON(path string) ([]types.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, "cannot read rules file", err)
	}

	var rules []types.Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, errors.Wrap(errors.TypeInput, "cannot parse rules file", err)
	}
	return rules, nil
}

func loadHCL(path string) ([]types.Rule, error) {
	var doc hclFile
	if err := hclsimple.DecodeFile(path, nil, &doc); err != nil {
		return nil, errors.Wrap(errors.TypeInput, "cannot parse rules file", err)
	}

	rules := make([]types.Rule, 0, len(doc.Rules))
	for _, r := range doc.Rules {
		rules = append(rules, types.Rule{
			SourceItemID:    types.ItemID(r.Source),
			TargetItemID:    types.ItemID(r.Target),
			DiscountPercent: decimal.NewFromFloat(r.DiscountPercent),
		})
	}
	return rules, nil
}
