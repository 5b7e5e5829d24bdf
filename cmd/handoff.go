package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/funnel-cli/internal/funnel"
)

var (
	handoffTo   string
	handoffNote string
)

var handoffCmd = &cobra.Command{
	Use:   "handoff LEAD_ID",
	Short: "Complete the sales-to-delivery handoff for a won lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		event, err := funnel.NewService(st).CreateHandoff(ctx, args[0], handoffTo, stageActor, handoffNote)
		if err != nil {
			return err
		}
		return printJSON(event)
	},
}

func init() {
	handoffCmd.Flags().StringVar(&handoffTo, "to", "", "user taking over the account")
	handoffCmd.Flags().StringVar(&handoffNote, "note", "", "handoff note for the ledger")
	handoffCmd.Flags().StringVar(&stageActor, "actor", "", "who is making the change (default system)")
	rootCmd.AddCommand(handoffCmd)
}
