package cmd

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spigell/talentbridge/internal/logger"
	"github.com/spigell/talentbridge/internal/store"
	"github.com/spigell/talentbridge/internal/talent"
	"go.uber.org/zap"
)

var matchCmd = &cobra.Command{
	Use:   "match <seeker-id> <posting-id>",
	Short: "Score a seeker against a posting and explain the gaps",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		d := mustDeps(ctx, needs{store: true, ai: true})
		defer d.close()

		seekerID := mustUUID(d.logger, "seeker id", args[0])
		postingID := mustUUID(d.logger, "posting id", args[1])
		refresh, _ := cmd.Flags().GetBool("refresh")

		report, err := d.service.Match(ctx, seekerID, postingID, talent.MatchOptions{Refresh: refresh})
		if err != nil {
			d.logger.Fatal("matching", append(logger.MatchFields(args[0], args[1]), zap.Error(err))...)
		}

		if err := printJSON(report); err != nil {
			d.logger.Fatal("printing the match", zap.Error(err))
		}
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List stored matches, best first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		d := mustDeps(cmd.Context(), needs{store: true})
		defer d.close()

		filter, err := matchFilter(cmd)
		if err != nil {
			d.logger.Fatal("parsing filters", zap.Error(err))
		}

		matches, err := d.service.Matches(cmd.Context(), filter)
		if err != nil {
			d.logger.Fatal("listing matches", zap.Error(err))
		}
		d.logger.Info("listing matches", zap.Int("count", len(matches)))

		if err := printJSON(matches); err != nil {
			d.logger.Fatal("printing matches", zap.Error(err))
		}
	},
}

func init() {
	matchCmd.Flags().Bool("refresh", false, "recompute the score even when a stored match exists")

	matchesCmd.Flags().String("seeker", "", "only matches of this seeker id")
	matchesCmd.Flags().String("posting", "", "only matches of this posting id")

	rootCmd.AddCommand(matchCmd, matchesCmd)
}

func matchFilter(cmd *cobra.Command) (store.MatchFilter, error) {
	var filter store.MatchFilter

	for flag, dst := range map[string]**uuid.UUID{
		"seeker":  &filter.SeekerID,
		"posting": &filter.PostingID,
	} {
		raw, _ := cmd.Flags().GetString(flag)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		*dst = &id
	}

	return filter, nil
}
