// Package cmd - CLI command: appstore-pricing rules check
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"appstore-pricing/core/rules"
	"appstore-pricing/core/ui"
	"appstore-pricing/internal/config"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Pricing rules file commands",
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the pricing rules file",
	RunE:  runRulesCheck,
}

var checkRules string

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesCheckCmd)

	rulesCheckCmd.Flags().StringVarP(&checkRules, "rules", "r", "", "pricing rules file (.json or .hcl)")
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	path := config.Get().Rules.Path
	if checkRules != "" {
		path = checkRules
	}

	ruleSet, err := rules.Load(path)
	if err != nil {
		return err
	}

	out := ui.NewWriter(os.Stdout, false)
	table := out.NewTable("Source", "Target", "Discount")
	for _, r := range ruleSet {
		table.AddRow(string(r.SourceItemID), string(r.TargetItemID), r.DiscountPercent.String()+"%")
	}
	table.Render()
	out.Success("%d rule(s) valid", len(ruleSet))
	return nil
}
