package main

import (
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/funnel-cli/internal/intent"
)

var (
	intentProvider string
	intentPayload  string
	intentSave     bool
)

var intentCmd = &cobra.Command{
	Use:   "intent LEAD_ID",
	Short: "Attach normalized buyer-intent data to a lead",
	Long: `Reads a raw intent payload (JSON file or stdin with -), normalizes it
to the provider-agnostic shape, and attaches it to the lead so the next
scoring pass picks it up.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var raw []byte
		var err error
		if intentPayload == "-" {
			raw, err = io.ReadAll(os.Stdin)
		} else {
			raw, err = os.ReadFile(intentPayload)
		}
		if err != nil {
			return eris.Wrap(err, "read intent payload")
		}

		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			return eris.Wrap(err, "parse intent payload")
		}

		sig := intent.Normalize(intentProvider, payload)

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

		lead.SetDetail(engine.Config().Rules.Intent.DetailKey, sig.Detail())
		zap.L().Info("intent attached",
			zap.String("lead_id", lead.ID),
			zap.String("provider", sig.Provider),
			zap.String("level", sig.IntentLevel))

		if intentSave {
			if err := st.SaveLead(ctx, lead); err != nil {
				return err
			}
		}
		return printJSON(sig)
	},
}

func init() {
	intentCmd.Flags().StringVar(&intentProvider, "provider", "", "intent provider (bombora, 6sense, mock)")
	intentCmd.Flags().StringVar(&intentPayload, "payload", "-", "payload JSON file, - for stdin")
	intentCmd.Flags().BoolVar(&intentSave, "save", true, "persist the updated lead")
	rootCmd.AddCommand(intentCmd)
}
