package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/funnel-cli/internal/funnel"
)

var summaryDays int

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the conversion funnel report",
	Long: `Reports current lead counts per canonical stage, entries into each
stage within the window, and stage-to-stage conversion rates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		days := summaryDays
		if days <= 0 {
			days = cfg.Funnel.SummaryWindowDays
		}

		summary, err := funnel.NewService(st).ConversionFunnelSummary(ctx, days)
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}

func init() {
	summaryCmd.Flags().IntVar(&summaryDays, "days", 0, "window in days (default from config, clamped 1-365)")
	rootCmd.AddCommand(summaryCmd)
}
