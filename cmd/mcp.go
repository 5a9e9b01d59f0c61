package cmd

import (
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spigell/talentbridge/internal/talentserver"
	"go.uber.org/zap"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the talent tools over MCP on stdio",
	Long: `Mcp runs a Model Context Protocol server on stdin/stdout with the tools
parse_cv, search_occupations, create_job_posting, match_seeker_to_job,
list_seekers and list_job_postings. Logs go to stderr.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		d := mustDeps(ctx, needs{store: true, ai: true})
		defer d.close()

		server := talentserver.New(d.service, version, d.logger)
		d.logger.Info("serving mcp on stdio")

		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, ctx.Err()) {
			d.logger.Error("mcp server stopped", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
