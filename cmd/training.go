package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var trainingCmd = &cobra.Command{
	Use:   "training",
	Short: "Find training programs for missing skills of an occupation",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		d := mustDeps(ctx, needs{})
		defer d.close()

		occupation, _ := cmd.Flags().GetString("occupation")
		skills, _ := cmd.Flags().GetStringArray("skill")

		assistant, err := newAssistant(ctx, d.config.AI, d.logger)
		if err != nil {
			d.logger.Fatal("creating the ai assistant", zap.Error(err))
		}
		if assistant == nil {
			d.logger.Fatal("training search needs the ai assistant (set ai.enabled)")
		}

		finder, err := newTrainer(d.config.Training, assistant, d.logger)
		if err != nil {
			d.logger.Fatal("creating the training search", zap.Error(err))
		}

		programs, err := finder.Find(ctx, occupation, skills)
		if err != nil {
			d.logger.Fatal("finding training programs", zap.Error(err))
		}
		d.logger.Info("found training programs", zap.String("occupation", occupation), zap.Int("count", len(programs)))

		if err := printJSON(programs); err != nil {
			d.logger.Fatal("printing training programs", zap.Error(err))
		}
	},
}

func init() {
	trainingCmd.Flags().String("occupation", "", "occupation title the skills are for")
	trainingCmd.Flags().StringArray("skill", nil, "a missing skill title, may be repeated")
	_ = trainingCmd.MarkFlagRequired("occupation")
	_ = trainingCmd.MarkFlagRequired("skill")

	rootCmd.AddCommand(trainingCmd)
}
