package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spigell/talentbridge/internal/logger"
	"github.com/spigell/talentbridge/internal/matching"
	"go.uber.org/zap"
)

// scoreInput is everything the engine needs, so scoring runs without the
// taxonomy or the database.
type scoreInput struct {
	SeekerSkills []matching.SeekerSkill `json:"seekerSkills"`
	JobSkills    []matching.JobSkill    `json:"jobSkills"`
	CoOccurrence matching.CoOccurrence  `json:"coOccurrence"`
	Titles       matching.TitleLookup   `json:"titles"`
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score skill sets given as JSON, offline",
	Long: `Score reads a JSON document with seekerSkills, jobSkills and optionally
coOccurrence and titles, and prints the match result.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		log := newLogger()

		input, _ := cmd.Flags().GetString("input")
		text, err := readInput(input)
		if err != nil {
			log.Fatal("reading the input", zap.String("file", input), zap.Error(err))
		}

		result, err := scoreFrom([]byte(text))
		if err != nil {
			log.Fatal("scoring", zap.Error(err))
		}
		log.Debug("scored", logger.ScoreFields(result.MatchScore, result.SeekerRelevance)...)

		if err := printJSON(result); err != nil {
			log.Fatal("printing the result", zap.Error(err))
		}
	},
}

func init() {
	scoreCmd.Flags().String("input", "-", "a JSON file, - reads stdin")
	rootCmd.AddCommand(scoreCmd)
}

func scoreFrom(data []byte) (*matching.Result, error) {
	var in scoreInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decoding score input: %w", err)
	}

	titles := make(matching.TitleLookup, len(in.Titles)+len(in.SeekerSkills)+len(in.JobSkills))
	for i, s := range in.SeekerSkills {
		in.SeekerSkills[i].Proficiency = matching.ClampProficiency(s.Proficiency)
		titles[s.URI] = s.Title
	}
	for _, s := range in.JobSkills {
		titles[s.URI] = s.Title
	}
	for uri, title := range in.Titles {
		titles[uri] = title
	}

	return matching.Match(in.SeekerSkills, in.JobSkills, in.CoOccurrence, titles), nil
}
