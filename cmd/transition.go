package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spigell/talentbridge/internal/logger"
	"go.uber.org/zap"
)

var transitionCmd = &cobra.Command{
	Use:   "transition <seeker-id>",
	Short: "Compare a seeker with a target occupation for a career change",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		d := mustDeps(ctx, needs{store: true, ai: true})
		defer d.close()

		seekerID := mustUUID(d.logger, "seeker id", args[0])

		uri, err := resolveOccupation(ctx, cmd, d.service, d.logger)
		if err != nil {
			d.logger.Fatal("choosing an occupation", zap.Error(err))
		}

		report, err := d.service.Transition(ctx, seekerID, uri)
		if err != nil {
			d.logger.Fatal("analysing the transition",
				zap.String(logger.FieldSeeker, args[0]),
				zap.String(logger.FieldOccupation, uri),
				zap.Error(err),
			)
		}

		if err := printJSON(report); err != nil {
			d.logger.Fatal("printing the transition", zap.Error(err))
		}
	},
}

func init() {
	addOccupationFlags(transitionCmd)
	rootCmd.AddCommand(transitionCmd)
}
