package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the ESCO taxonomy",
}

var searchSkillsCmd = &cobra.Command{
	Use:   "skills <text>",
	Short: "Search ESCO skills",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSearch(cmd, "skills", args)
	},
}

var searchOccupationsCmd = &cobra.Command{
	Use:   "occupations <text>",
	Short: "Search ESCO occupations",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSearch(cmd, "occupations", args)
	},
}

func init() {
	searchCmd.AddCommand(searchSkillsCmd, searchOccupationsCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, kind string, args []string) {
	d := mustDeps(cmd.Context(), needs{taxonomy: true})
	defer d.close()

	search := d.esco.SearchSkills
	if kind == "occupations" {
		search = d.esco.SearchOccupations
	}

	text := strings.Join(args, " ")
	concepts, err := search(cmd.Context(), text)
	if err != nil {
		d.logger.Fatal("searching "+kind, zap.String("search", text), zap.Error(err))
	}
	d.logger.Info("found "+kind, zap.String("search", text), zap.Int("count", len(concepts)))

	if err := printJSON(concepts); err != nil {
		d.logger.Fatal("printing search results", zap.Error(err))
	}
}
