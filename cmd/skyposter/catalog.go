package main

import (
	"fmt"

	"github.com/abdulachik/skyposter/internal/app"
	"github.com/abdulachik/skyposter/internal/config"
	"github.com/spf13/cobra"
)

var (
	catalogDryRun  bool
	catalogAccount string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Post a catalog product",
	Long: `Pick a Gumroad product that has not been posted since the ledger was last
cleared, post its thumbnail with a short description and record it.

When every product has been posted the ledger is cleared and the cycle starts
over.`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogDryRun, "dry-run", false, "Show what would be posted without posting or touching the ledger")
	catalogCmd.Flags().StringVar(&catalogAccount, "account", "trackly", "Account to post as")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(func(c *config.Config) error {
		if catalogDryRun {
			return c.ValidateForCatalogListing()
		}
		return c.ValidateForCatalog(catalogAccount)
	})
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.Runner(catalogDryRun).RunCatalog(ctx, catalogAccount)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	printOutcome(out)
	return nil
}
