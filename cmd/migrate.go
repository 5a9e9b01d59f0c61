package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spigell/talentbridge/internal/store"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		d := mustDeps(cmd.Context(), needs{})
		defer d.close()

		if d.config.DatabaseURL == "" {
			d.logger.Fatal("database url is required (set database-url or DATABASE_URL)")
		}

		if err := store.Migrate(d.config.DatabaseURL, d.logger.Named("migrate")); err != nil {
			d.logger.Fatal("migrating the database", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
