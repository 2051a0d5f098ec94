// Package types - Reconciliation decisions
package types

import (
	"github.com/shopspring/decimal"
)

// TerritoryDecision is the outcome of reconciling one territory.
// It exists only for the duration of one rule's run.
type TerritoryDecision struct {
	// Territory the decision applies to
	Territory Territory `json:"territory"`

	// SourceAmount is the source item's resolved price
	SourceAmount decimal.Decimal `json:"source_amount"`

	// IdealAmount is the discounted price before tier mapping
	IdealAmount decimal.Decimal `json:"ideal_amount"`

	// Chosen is the selected legal tier, always a member of the target's
	// ladder for the territory
	Chosen PricePoint `json:"chosen"`

	// ExactMatch reports whether the chosen tier equals the ideal amount
	ExactMatch bool `json:"exact_match"`

	// Changed reports whether the chosen tier differs from the target's
	// current resolved price
	Changed bool `json:"changed"`
}

// SkippedTerritory records a territory the rule could not decide
type SkippedTerritory struct {
	// Territory that was skipped
	Territory Territory `json:"territory"`

	// Reason is a short machine-friendly cause (e.g. "no-ladder")
	Reason string `json:"reason"`
}

// UpdatePlan is the batch of manual prices to submit for one rule,
// atomically, or to withhold under dry-run
type UpdatePlan struct {
	// ItemID is the target item being updated
	ItemID ItemID `json:"item_id"`

	// BaseTerritory anchors the storefront price schedule
	BaseTerritory Territory `json:"base_territory"`

	// Decisions are the territories included in the write payload
	Decisions []TerritoryDecision `json:"decisions"`
}

// Empty reports whether the plan has nothing to write
func (p *UpdatePlan) Empty() bool {
	return p == nil || len(p.Decisions) == 0
}

// RuleOutcome aggregates one rule's run for reporting
type RuleOutcome struct {
	// Rule that was processed
	Rule Rule `json:"rule"`

	// RunID correlates report rows and log lines for this rule
	RunID string `json:"run_id"`

	// Decisions for every successfully reconciled territory
	Decisions []TerritoryDecision `json:"decisions"`

	// Skipped territories with reasons
	Skipped []SkippedTerritory `json:"skipped,omitempty"`

	// Plan is the write payload (nil when nothing changed)
	Plan *UpdatePlan `json:"plan,omitempty"`

	// Applied reports whether the plan was submitted to the storefront
	Applied bool `json:"applied"`

	// Err is the rule-level failure, nil on success
	Err error `json:"-"`
}

// Failed reports whether the rule failed
func (o *RuleOutcome) Failed() bool {
	return o.Err != nil
}
