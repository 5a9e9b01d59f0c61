package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spigell/talentbridge/internal/ai"
	"github.com/spigell/talentbridge/internal/logger"
	"github.com/spigell/talentbridge/internal/profile"
	"go.uber.org/zap"
)

var seekerCmd = &cobra.Command{
	Use:   "seeker",
	Short: "Manage job seekers",
}

var seekerCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a seeker from a CV and/or manually listed titles and skills",
	Args:  cobra.NoArgs,
	Run:   createSeeker,
}

var seekerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List seekers",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		d := mustDeps(cmd.Context(), needs{store: true})
		defer d.close()

		seekers, err := d.service.Seekers(cmd.Context())
		if err != nil {
			d.logger.Fatal("listing seekers", zap.Error(err))
		}
		d.logger.Info("listing seekers", zap.Int("count", len(seekers)))

		if err := printJSON(seekers); err != nil {
			d.logger.Fatal("printing seekers", zap.Error(err))
		}
	},
}

var seekerShowCmd = &cobra.Command{
	Use:   "show <seeker-id>",
	Short: "Show a seeker with its skill profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		d := mustDeps(cmd.Context(), needs{store: true})
		defer d.close()

		id := mustUUID(d.logger, "seeker id", args[0])
		seeker, err := d.service.Seeker(cmd.Context(), id)
		if err != nil {
			d.logger.Fatal("getting the seeker", zap.String(logger.FieldSeeker, args[0]), zap.Error(err))
		}

		if err := printJSON(seeker); err != nil {
			d.logger.Fatal("printing the seeker", zap.Error(err))
		}
	},
}

func init() {
	seekerCreateCmd.Flags().String("cv", "", "a file with the CV text, - reads stdin")
	seekerCreateCmd.Flags().String("name", "", "seeker name")
	seekerCreateCmd.Flags().String("email", "", "seeker email")
	seekerCreateCmd.Flags().StringArray("title", nil, "a previous job title, may be repeated")
	seekerCreateCmd.Flags().StringArray("skill", nil, "a skill as name[:level] with level 1-5, may be repeated")

	seekerCmd.AddCommand(seekerCreateCmd, seekerListCmd, seekerShowCmd)
	rootCmd.AddCommand(seekerCmd)
}

func createSeeker(cmd *cobra.Command, _ []string) {
	d := mustDeps(cmd.Context(), needs{store: true, ai: true})
	defer d.close()

	flags := cmd.Flags()
	cvFile, _ := flags.GetString("cv")
	name, _ := flags.GetString("name")
	email, _ := flags.GetString("email")
	titles, _ := flags.GetStringArray("title")
	rawSkills, _ := flags.GetStringArray("skill")

	req := profile.Request{Name: name, Email: email, Titles: titles}

	for _, raw := range rawSkills {
		skill, err := parseSkillFlag(raw)
		if err != nil {
			d.logger.Fatal("parsing --skill", zap.Error(err))
		}
		req.Skills = append(req.Skills, skill)
	}

	if cvFile != "" {
		text, err := readInput(cvFile)
		if err != nil {
			d.logger.Fatal("reading the cv", zap.String("file", cvFile), zap.Error(err))
		}
		req.CVText = text
	}

	seeker, err := d.service.CreateSeeker(cmd.Context(), req)
	if err != nil {
		d.logger.Fatal("creating the seeker", zap.Error(err))
	}

	if err := printJSON(seeker); err != nil {
		d.logger.Fatal("printing the seeker", zap.Error(err))
	}
}

// parseSkillFlag reads name[:level]. A suffix that is not a number is part of
// the name, so "c++: advanced" stays a single skill name.
func parseSkillFlag(raw string) (ai.ParsedSkill, error) {
	raw = strings.TrimSpace(raw)

	name, level := raw, 0
	if i := strings.LastIndex(raw, ":"); i > 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(raw[i+1:])); err == nil {
			name, level = strings.TrimSpace(raw[:i]), n
		}
	}

	if name == "" {
		return ai.ParsedSkill{}, fmt.Errorf("skill %q has no name", raw)
	}
	if level < 0 || level > 5 {
		return ai.ParsedSkill{}, fmt.Errorf("skill %q: level must be between 1 and 5", raw)
	}

	return ai.ParsedSkill{Name: name, Proficiency: level}, nil
}

// readInput reads a whole file, or stdin for "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}

	data, err := os.ReadFile(path)
	return string(data), err
}

func mustUUID(log *zap.Logger, what, raw string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		log.Fatal(fmt.Sprintf("parsing %s", what), zap.String("value", raw), zap.Error(err))
	}
	return id
}
