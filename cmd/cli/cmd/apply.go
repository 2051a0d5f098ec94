// Package cmd - CLI command: appstore-pricing apply
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"appstore-pricing/adapters/appstore"
	"appstore-pricing/core/engine"
	"appstore-pricing/core/plan"
	"appstore-pricing/core/resolver"
	"appstore-pricing/core/rules"
	"appstore-pricing/core/tiers"
	"appstore-pricing/core/ui"
	"appstore-pricing/internal/config"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Reconcile discounted prices across all territories",
	Long: `Process every rule in the pricing rules file.

For each rule the source item's resolved price is read in every territory,
the discount is applied locally, and the closest legal tier of the target
item's ladder is selected. Territories that need a change are submitted as
one atomic batch of manual prices.

Under --dry-run every read and computation still happens and the identical
report is printed, but no write is issued.`,
	RunE: runApply,
}

var (
	applyRules       string
	applyDryRun      bool
	applyTimeout     time.Duration
	applyConcurrency int
	applyNoColor     bool
)

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVarP(&applyRules, "rules", "r", "", "pricing rules file (.json or .hcl)")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "compute and report, but write nothing")
	applyCmd.Flags().DurationVar(&applyTimeout, "timeout", 0, "timeout for the whole run (default from config)")
	applyCmd.Flags().IntVar(&applyConcurrency, "concurrency", 0, "parallel tier lookups per rule (default from config)")
	applyCmd.Flags().BoolVar(&applyNoColor, "no-color", false, "disable colored output")
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	rulesPath := cfg.Rules.Path
	if applyRules != "" {
		rulesPath = applyRules
	}
	dryRun := cfg.Run.DryRun || applyDryRun
	concurrency := cfg.Run.Concurrency
	if applyConcurrency > 0 {
		concurrency = applyConcurrency
	}
	timeout := time.Duration(cfg.Run.TimeoutMinutes) * time.Minute
	if applyTimeout > 0 {
		timeout = applyTimeout
	}

	ruleSet, err := rules.Load(rulesPath)
	if err != nil {
		return err
	}

	api, err := buildPriceAPI(cfg)
	if err != nil {
		return err
	}

	out := ui.NewWriter(os.Stdout, applyNoColor)
	if dryRun {
		out.Header("DRY RUN mode — no changes will be made")
	}

	eng := engine.New(
		resolver.New(api),
		tiers.New(api),
		plan.NewPlanner(api, dryRun),
		out,
		concurrency,
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	outcomes := eng.Run(ctx, ruleSet)

	failed := 0
	for _, o := range outcomes {
		if o.Failed() {
			failed++
		}
	}

	out.Println("")
	if failed > 0 {
		return fmt.Errorf("%d of %d rule(s) failed", failed, len(ruleSet))
	}
	if dryRun {
		out.Success("DRY RUN — all %d rule(s) reconciled, nothing written", len(ruleSet))
	} else {
		out.Success("All %d rule(s) applied successfully", len(ruleSet))
	}
	return nil
}

// buildPriceAPI wires the storefront adapter from configuration
func buildPriceAPI(cfg *config.Config) (*appstore.PriceAPI, error) {
	key, err := cfg.ResolvePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("API private key not configured (set APPLE_PRIVATE_KEY): %w", err)
	}

	tokens, err := appstore.NewTokenSource(cfg.API.KeyID, cfg.API.IssuerID, key)
	if err != nil {
		return nil, err
	}

	client := appstore.NewClient(tokens, appstore.Config{
		BaseURL:            cfg.API.BaseURL,
		RequestTimeout:     time.Duration(cfg.API.RequestTimeoutSeconds) * time.Second,
		MaxRetries:         cfg.API.MaxRetries,
		RateLimitPerSecond: cfg.API.RateLimitPerSecond,
	})
	return appstore.NewPriceAPI(client), nil
}
