package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/funnel-cli/internal/funnel"
	"github.com/sells-group/funnel-cli/internal/model"
	"github.com/sells-group/funnel-cli/internal/scoring"
)

var importScore bool

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import leads from a JSON file",
	Long: `Reads a JSON array of leads and creates them in the store. Canonical
funnel fields are backfilled for records that lack them. With --score
each lead is scored on the way in.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}
		var leads []model.Lead
		if err := json.Unmarshal(raw, &leads); err != nil {
			return eris.Wrapf(err, "parse %s", args[0])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		var engine *scoring.Engine
		if importScore {
			engine, err = initEngine()
			if err != nil {
				return err
			}
		}

		svc := funnel.NewService(st)
		imported := 0
		for i := range leads {
			lead := &leads[i]
			if engine != nil {
				engine.ScoreLead(lead)
			}
			svc.EnsureLeadDefaults(lead)
			if err := st.CreateLead(ctx, lead); err != nil {
				zap.L().Warn("import failed", zap.String("lead_id", lead.ID), zap.Error(err))
				continue
			}
			imported++
		}

		fmt.Printf("imported %d of %d leads\n", imported, len(leads))
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importScore, "score", false, "score leads during import")
	rootCmd.AddCommand(importCmd)
}
