package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/funnel-cli/internal/model"
	"github.com/sells-group/funnel-cli/internal/scoring"
	"github.com/sells-group/funnel-cli/internal/store"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Adjust pain weights from closed and lost deals",
	Long: `Compares which pain signals fired in closed versus lost deals and
nudges the corresponding weights in the scoring config file. Requires
at least one closed deal; otherwise nothing changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		closed, err := st.ListLeads(ctx, store.LeadFilter{Outcome: model.LeadOutcomeClosed})
		if err != nil {
			return err
		}
		lost, err := st.ListLeads(ctx, store.LeadFilter{Outcome: model.LeadOutcomeLost})
		if err != nil {
			return err
		}

		historical := make([]*model.Lead, 0, len(closed)+len(lost))
		for i := range closed {
			historical = append(historical, &closed[i])
		}
		for i := range lost {
			historical = append(historical, &lost[i])
		}

		opt, err := scoring.NewOptimizer(cfg.Scoring.ConfigPath)
		if err != nil {
			return err
		}
		adjustments, err := opt.LearnFromOutcomes(historical)
		if err != nil {
			return err
		}
		if len(adjustments) == 0 {
			fmt.Println("no adjustments made")
			return nil
		}
		for feature, delta := range adjustments {
			fmt.Printf("%s: %s\n", feature, delta)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
}
