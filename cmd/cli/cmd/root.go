// Package cmd provides the CLI commands for appstore-pricing.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"appstore-pricing/internal/config"
	"appstore-pricing/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "appstore-pricing",
	Short: "Keep discounted item prices aligned across storefront territories",
	Long: `appstore-pricing pins one catalog item's price to a fixed percentage
discount below another item's price, in every App Store territory.

Each territory has its own currency and its own ladder of legal price
tiers, so the discount is applied per territory against the source item's
local price and mapped onto the closest legal tier.

Examples:
  appstore-pricing apply --rules pricing-rules.json --dry-run
  appstore-pricing apply --rules pricing-rules.hcl
  appstore-pricing rules check --rules pricing-rules.json`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.appstore-pricing.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	cfg, err := config.Load(configFilePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("appstore-pricing version 0.1.0")
	},
}
