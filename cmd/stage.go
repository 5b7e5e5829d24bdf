package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/funnel-cli/internal/funnel"
	"github.com/sells-group/funnel-cli/internal/model"
)

var (
	stageActor        string
	stageReason       string
	stageSource       string
	stageNoSyncLegacy bool
	historyLimit      int
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Manage canonical funnel stages",
}

var stageSetCmd = &cobra.Command{
	Use:   "set LEAD_ID STAGE",
	Short: "Move a lead to a canonical stage",
	Long: `Transitions a lead to the given canonical stage, recomputes its SLA
and next-action deadlines, and records the transition on the event
ledger. Setting the current stage records a no-op event and leaves the
lead untouched.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		sync := !stageNoSyncLegacy
		event, err := funnel.NewService(st).TransitionLeadStage(ctx, args[0], args[1], funnel.TransitionRequest{
			Actor:      stageActor,
			Reason:     stageReason,
			Source:     model.EventSource(stageSource),
			SyncLegacy: &sync,
		})
		if err != nil {
			return err
		}
		return printJSON(event)
	},
}

var stageOppCmd = &cobra.Command{
	Use:   "opp OPPORTUNITY_ID STAGE",
	Short: "Move an opportunity to a canonical stage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		event, err := funnel.NewService(st).TransitionOpportunityStage(ctx, args[0], args[1], funnel.TransitionRequest{
			Actor:  stageActor,
			Reason: stageReason,
			Source: model.EventSource(stageSource),
		})
		if err != nil {
			return err
		}
		return printJSON(event)
	},
}

var stageHistoryCmd = &cobra.Command{
	Use:   "history ENTITY_TYPE ENTITY_ID",
	Short: "Show the stage event ledger for a lead or opportunity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		entityType := model.EntityType(args[0])
		if entityType != model.EntityLead && entityType != model.EntityOpportunity {
			return eris.Errorf("entity type must be %q or %q", model.EntityLead, model.EntityOpportunity)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := funnel.NewService(st).StageHistory(ctx, entityType, args[1], historyLimit)
		if err != nil {
			return err
		}
		return printJSON(events)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	for _, c := range []*cobra.Command{stageSetCmd, stageOppCmd} {
		c.Flags().StringVar(&stageActor, "actor", "", "who is making the change (default system)")
		c.Flags().StringVar(&stageReason, "reason", "", "why the stage is changing")
		c.Flags().StringVar(&stageSource, "source", "manual", "event source (manual, auto-rule, assignment, handoff)")
	}
	stageSetCmd.Flags().BoolVar(&stageNoSyncLegacy, "no-sync-legacy", false, "leave legacy status and stage fields untouched")
	stageHistoryCmd.Flags().IntVar(&historyLimit, "limit", 50, "max events to show")

	stageCmd.AddCommand(stageSetCmd)
	stageCmd.AddCommand(stageOppCmd)
	stageCmd.AddCommand(stageHistoryCmd)
	rootCmd.AddCommand(stageCmd)
}
