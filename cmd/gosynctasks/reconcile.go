package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gosynctasks/backend/astridsync"
	"gosynctasks/backend/sqlite"
	"gosynctasks/internal/config"
	"gosynctasks/reconcile"
	"gosynctasks/reconcile/defaults"
	"gosynctasks/reconcile/report"
	"gosynctasks/internal/syncrun"
)

// newReconcileCmd creates the 'reconcile' command, which drives the
// provider-mapped two-way sync engine (reconcile.Reconciler via
// internal/syncrun.Driver) against one of cfg.Providers.
func newReconcileCmd() *cobra.Command {
	var providerName string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile local tasks with a provider's remote API",
		Long: `Run the two-way reconciliation engine against a configured provider.

reconcile keeps a persisted local<->remote id mapping per task and
merges field changes on both sides. Provider endpoints are configured
under "providers" in the config file; use --provider to pick one
other than default_provider.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()

			providerCfg, err := cfg.GetProvider(providerName)
			if err != nil {
				return err
			}

			adapter, err := astridsync.New(providerCfg)
			if err != nil {
				return fmt.Errorf("failed to initialize provider %q: %w", providerCfg.Name, err)
			}

			store, err := sqlite.Open(sqlite.Config{})
			if err != nil {
				return fmt.Errorf("failed to open local store: %w", err)
			}
			defer store.Close()

			var reporter reconcile.Reporter
			if cfg.Preferences.BackgroundMode {
				reporter = report.NewBackground(providerCfg.Name, cfg.Preferences.SuppressSummaryDialog)
			} else {
				reporter = report.NewForeground(providerCfg.Name, cfg.Preferences.SuppressSummaryDialog)
			}

			reconciler := reconcile.NewReconciler(store, store, store, adapter, reporter, nil)
			reconciler.NewBlankTask = defaults.Bind(cfg.Preferences)

			driver := syncrun.NewDriver(reconciler)

			ctx := context.Background()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			outcome, err := driver.Run(ctx, adapter.ProviderID())
			if err != nil {
				return fmt.Errorf("reconcile with %s failed: %w", providerCfg.Name, err)
			}

			if summary := reconcile.FormatSummary(providerCfg.Name, outcome.Stats, outcome.Log); summary != "" {
				fmt.Println(summary)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "provider name from config (defaults to default_provider)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "abort the run after this long (0 = no timeout)")

	return cmd
}
