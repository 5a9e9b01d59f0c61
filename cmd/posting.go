package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spigell/talentbridge/internal/logger"
	"github.com/spigell/talentbridge/internal/talent"
	"go.uber.org/zap"
)

var postingCmd = &cobra.Command{
	Use:   "posting",
	Short: "Manage job postings",
}

var postingCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a posting from an ESCO occupation",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		d := mustDeps(ctx, needs{store: true, ai: true})
		defer d.close()

		uri, err := resolveOccupation(ctx, cmd, d.service, d.logger)
		if err != nil {
			d.logger.Fatal("choosing an occupation", zap.Error(err))
		}

		company, _ := cmd.Flags().GetString("company")
		email, _ := cmd.Flags().GetString("email")

		posting, err := d.service.CreatePosting(ctx, talent.PostingRequest{
			Company:       company,
			Email:         email,
			OccupationURI: uri,
		})
		if err != nil {
			d.logger.Fatal("creating the posting", zap.String(logger.FieldOccupation, uri), zap.Error(err))
		}

		if err := printJSON(posting); err != nil {
			d.logger.Fatal("printing the posting", zap.Error(err))
		}
	},
}

var postingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List postings",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		d := mustDeps(cmd.Context(), needs{store: true})
		defer d.close()

		postings, err := d.service.Postings(cmd.Context())
		if err != nil {
			d.logger.Fatal("listing postings", zap.Error(err))
		}
		d.logger.Info("listing postings", zap.Int("count", len(postings)))

		if err := printJSON(postings); err != nil {
			d.logger.Fatal("printing postings", zap.Error(err))
		}
	},
}

func init() {
	addOccupationFlags(postingCreateCmd)
	postingCreateCmd.Flags().String("company", "", "company name")
	postingCreateCmd.Flags().String("email", "", "recruiter email, postings with the same email share a recruiter")

	postingCmd.AddCommand(postingCreateCmd, postingListCmd)
	rootCmd.AddCommand(postingCmd)
}
