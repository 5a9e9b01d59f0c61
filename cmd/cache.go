package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Maintain the local taxonomy cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop expired cache entries",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		d := mustDeps(cmd.Context(), needs{taxonomy: true})
		defer d.close()

		if d.cache == nil {
			d.logger.Info("exiting", zap.String("reason", "taxonomy cache is disabled"))
			return
		}

		removed, err := d.cache.Purge(cmd.Context())
		if err != nil {
			d.logger.Fatal("purging the taxonomy cache", zap.Error(err))
		}
		d.logger.Info("purged the taxonomy cache", zap.String("file", d.config.ESCO.CacheFile), zap.Int64("removed", removed))
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
