package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spigell/talentbridge/internal/esco"
	"go.uber.org/zap"
)

var errNoOccupation = errors.New("no occupation found")

type occupationSearcher interface {
	SearchOccupations(ctx context.Context, text string) ([]esco.Concept, error)
}

// addOccupationFlags registers the ways a command can name its occupation.
func addOccupationFlags(cmd *cobra.Command) {
	cmd.Flags().String("occupation", "", "ESCO occupation URI")
	cmd.Flags().String("search", "", "search ESCO occupations by text and choose one")
	cmd.Flags().Bool("first", false, "take the first search hit without prompting")
	cmd.MarkFlagsMutuallyExclusive("occupation", "search")
	cmd.MarkFlagsOneRequired("occupation", "search")
}

// resolveOccupation returns the URI given with --occupation, or searches with
// --search and lets the user choose a hit.
func resolveOccupation(ctx context.Context, cmd *cobra.Command, searcher occupationSearcher, log *zap.Logger) (string, error) {
	flags := cmd.Flags()
	uri, _ := flags.GetString("occupation")
	text, _ := flags.GetString("search")
	first, _ := flags.GetBool("first")

	if uri = strings.TrimSpace(uri); uri != "" {
		return uri, nil
	}

	concepts, err := searcher.SearchOccupations(ctx, text)
	if err != nil {
		return "", err
	}
	if len(concepts) == 0 {
		return "", fmt.Errorf("%w for %q", errNoOccupation, text)
	}
	log.Info("found occupations", zap.String("search", text), zap.Int("count", len(concepts)))

	if first || len(concepts) == 1 {
		return concepts[0].URI, nil
	}

	occupationPrompt := promptui.Select{
		Label: "Choose an occupation and press ENTER",
		Items: occupationLabels(concepts),
		Size:  10,
	}

	idx, _, err := occupationPrompt.Run()
	if err != nil {
		return "", err
	}

	return concepts[idx].URI, nil
}

func occupationLabels(concepts []esco.Concept) []string {
	labels := make([]string, 0, len(concepts))
	for _, c := range concepts {
		labels = append(labels, fmt.Sprintf("%s / %s", c.Title, c.URI))
	}
	return labels
}
