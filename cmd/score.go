package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/funnel-cli/internal/funnel"
)

var scoreSave bool

var scoreCmd = &cobra.Command{
	Use:   "score LEAD_ID",
	Short: "Score a single lead",
	Long: `Runs the full scoring pass on one lead: ICP fit, behavioral heat,
tier and heat-status classification, and the recommended next action.
Prints the scored lead as JSON. With --save the result is written back
to the store.`,
	Args: cobra.ExactArgs(1),
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

		lead, err := st.GetLead(ctx, args[0])
		if err != nil {
			return err
		}

		engine.ScoreLead(lead)
		svc := funnel.NewService(st)
		svc.EnsureLeadDefaults(lead)

		if scoreSave {
			if err := st.SaveLead(ctx, lead); err != nil {
				return err
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(lead); err != nil {
			return err
		}
		if !scoreSave {
			fmt.Fprintln(os.Stderr, "dry run, pass --save to persist")
		}
		return nil
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreSave, "save", false, "persist the scored lead")
	rootCmd.AddCommand(scoreCmd)
}
