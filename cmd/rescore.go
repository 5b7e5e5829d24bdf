package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/funnel-cli/internal/model"
	"github.com/sells-group/funnel-cli/internal/store"
)

var (
	rescoreLimit       int
	rescoreConcurrency int
	rescoreRate        float64
)

var rescoreCmd = &cobra.Command{
	Use:   "rescore",
	Short: "Rescore every lead with the current config",
	Long: `Reloads the scoring configuration and rescores all leads in the store.
Per-lead failures are logged and skipped; the batch always runs to
completion and reports how many leads succeeded and failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		engine, err := initEngine()
		if err != nil {
			return err
		}

		leads, err := st.ListLeads(ctx, store.LeadFilter{Limit: rescoreLimit})
		if err != nil {
			return err
		}

		ptrs := make([]*model.Lead, len(leads))
		for i := range leads {
			ptrs[i] = &leads[i]
		}

		concurrency := rescoreConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Rescore.MaxConcurrent
		}
		rate := rescoreRate
		if rate <= 0 {
			rate = cfg.Rescore.SavesPerSecond
		}

		result, err := engine.RescoreAll(ctx, ptrs, concurrency, rate,
			func(ctx context.Context, lead *model.Lead) error {
				return st.SaveLead(ctx, lead)
			})
		if err != nil {
			return err
		}

		fmt.Printf("rescored %d leads, %d failed\n", result.Scored, result.Failed)
		return nil
	},
}

func init() {
	rescoreCmd.Flags().IntVar(&rescoreLimit, "limit", 0, "max leads to rescore (0=all up to store default)")
	rescoreCmd.Flags().IntVar(&rescoreConcurrency, "concurrency", 0, "concurrent workers (0=config default)")
	rescoreCmd.Flags().Float64Var(&rescoreRate, "rate", 0, "max saves per second (0=config default)")
	rootCmd.AddCommand(rescoreCmd)
}
