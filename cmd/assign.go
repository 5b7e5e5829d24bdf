package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/funnel-cli/internal/funnel"
)

var assignReason string

var assignCmd = &cobra.Command{
	Use:   "assign LEAD_ID OWNER_USER_ID",
	Short: "Reassign a lead to a new owner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		result, err := funnel.NewService(st).ReassignLeadOwner(ctx, args[0], args[1], stageActor, assignReason)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	assignCmd.Flags().StringVar(&stageActor, "actor", "", "who is making the change (default system)")
	assignCmd.Flags().StringVar(&assignReason, "reason", "", "why ownership is changing")
	rootCmd.AddCommand(assignCmd)
}
