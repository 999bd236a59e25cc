package main

import (
	"fmt"

	"github.com/abdulachik/skyposter/internal/app"
	"github.com/abdulachik/skyposter/internal/config"
	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect or clear the catalog ledger",
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List posted product ids",
	Args:  cobra.NoArgs,
	RunE:  runLedgerShow,
}

var ledgerResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget every posted product",
	Args:  cobra.NoArgs,
	RunE:  runLedgerReset,
}

func init() {
	ledgerCmd.AddCommand(ledgerShowCmd, ledgerResetCmd)
	rootCmd.AddCommand(ledgerCmd)
}

func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig((*config.Config).ValidateForLedger)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg)
}

func runLedgerShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ids, err := a.Ledger().IDs(cmd.Context())
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	fmt.Printf("Ledger (%s): %d posted\n", a.Config.LedgerBackend, len(ids))
	for _, id := range ids {
		fmt.Printf("  %s\n", id)
	}
	return nil
}

func runLedgerReset(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Ledger().Reset(cmd.Context()); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}

	fmt.Println("Ledger cleared.")
	return nil
}
