package gemini

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spigell/talentbridge/internal/ai"
	"github.com/spigell/talentbridge/internal/logger"
	"github.com/spigell/talentbridge/internal/matching"
	"github.com/spigell/talentbridge/internal/utils"
	"go.uber.org/zap"
)

const (
	defaultMaxLogLength = 200
	maxTrainingPrograms = 5

	systemParser    = "You extract structured data from documents. You answer with JSON only."
	systemCoach     = "You are a career coach helping people get their next job. You are honest, concrete and encouraging."
	systemRecruiter = "You assist recruiters. You write short, factual candidate and job summaries."
)

//go:embed prompts/*.md
var prompts embed.FS

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Assistant implements ai.Assistant on top of a Gemini generator.
type Assistant struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Assistant = (*Assistant)(nil)

func NewAssistant(generator contentGenerator, maxLogLength int, log *zap.Logger) *Assistant {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Assistant{
		generator: generator,
		logger:    logger.WithFields(log, logger.AIFields("gemini", generator.Model())...),
		maxLogLen: maxLogLength,
	}
}

func (a *Assistant) ParseCV(ctx context.Context, cvText string) (*ai.ParsedCV, error) {
	cvText = strings.TrimSpace(cvText)
	if cvText == "" {
		return nil, fmt.Errorf("cv text is required")
	}

	prompt, err := render("parse_cv.md", map[string]string{"CV_TEXT": cvText})
	if err != nil {
		return nil, err
	}

	raw, err := a.generate(ctx, "parse_cv", systemParser, prompt)
	if err != nil {
		return nil, err
	}

	return parseCV(raw)
}

func (a *Assistant) ExplainGaps(ctx context.Context, matched, missing []string, jobTitle string) (string, error) {
	prompt, err := render("explain_gaps.md", map[string]string{
		"JOB_TITLE": jobTitle,
		"MATCHED":   joinOrNone(matched),
		"MISSING":   joinOrNone(missing),
	})
	if err != nil {
		return "", err
	}

	return a.generate(ctx, "explain_gaps", systemCoach, prompt)
}

func (a *Assistant) SummarizeCandidate(ctx context.Context, brief ai.CandidateBrief) (string, error) {
	name := strings.TrimSpace(brief.SeekerName)
	if name == "" {
		name = "Anonymous Seeker"
	}

	prompt, err := render("summarize_candidate.md", map[string]string{
		"JOB_TITLE":      brief.JobTitle,
		"SEEKER_NAME":    name,
		"PREVIOUS_ROLES": joinOrNone(brief.PreviousRoles),
		"MATCH_SCORE":    strconv.Itoa(brief.MatchScore),
		"MATCHED":        joinOrNone(brief.MatchedSkills),
		"PARTIAL":        joinOrNone(partialLabels(brief.PartialMatches)),
		"MISSING":        joinOrNone(brief.MissingSkills),
	})
	if err != nil {
		return "", err
	}

	return a.generate(ctx, "summarize_candidate", systemRecruiter, prompt)
}

func (a *Assistant) ExplainTransitionGaps(ctx context.Context, brief ai.TransitionBrief) (string, error) {
	partial := "none"
	if labels := partialLabels(brief.PartialMatches); len(labels) > 0 {
		partial = "- " + strings.Join(labels, "\n- ")
	}

	prompt, err := render("transition_gaps.md", map[string]string{
		"PREVIOUS_ROLES":    joinOrNone(brief.PreviousRoles),
		"TARGET_OCCUPATION": brief.TargetOccupation,
		"MATCHED":           joinOrNone(brief.MatchedSkills),
		"OPTIONAL_MATCHED":  joinOrNone(brief.OptionalMatched),
		"PARTIAL":           partial,
		"MISSING":           joinOrNone(brief.MissingSkills),
		"SEEKER_RELEVANCE":  strconv.Itoa(brief.SeekerRelevance),
	})
	if err != nil {
		return "", err
	}

	return a.generate(ctx, "explain_transition_gaps", systemCoach, prompt)
}

func (a *Assistant) GenerateJobDescription(ctx context.Context, title string, essential, optional []string) (string, error) {
	prompt, err := render("job_description.md", map[string]string{
		"JOB_TITLE": title,
		"ESSENTIAL": joinOrNone(essential),
		"OPTIONAL":  joinOrNone(optional),
	})
	if err != nil {
		return "", err
	}

	return a.generate(ctx, "generate_job_description", systemRecruiter, prompt)
}

func (a *Assistant) ExtractTrainingPrograms(ctx context.Context, occupation string, skills []string, results []ai.SearchResult) ([]ai.TrainingProgram, error) {
	if len(results) == 0 {
		return []ai.TrainingProgram{}, nil
	}

	var listing strings.Builder
	for i, r := range results {
		if i > 0 {
			listing.WriteString("\n\n")
		}
		fmt.Fprintf(&listing, "%d. %q - %s\n   %s", i+1, r.Title, r.URL, r.Description)
	}

	prompt, err := render("training_programs.md", map[string]string{
		"OCCUPATION": occupation,
		"SKILLS":     strings.Join(skills, ", "),
		"RESULTS":    listing.String(),
	})
	if err != nil {
		return nil, err
	}

	raw, err := a.generate(ctx, "extract_training_programs", systemParser, prompt)
	if err != nil {
		return nil, err
	}

	return parseTrainingPrograms(raw)
}

func (a *Assistant) generate(ctx context.Context, task, system, prompt string) (string, error) {
	a.logger.Debug("gemini generate content request",
		zap.String("task", task),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, system, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", task, err)
	}

	a.logger.Debug("gemini generate content response",
		zap.String("task", task),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return raw, nil
}

func render(name string, values map[string]string) (string, error) {
	template, err := prompts.ReadFile("prompts/" + name)
	if err != nil {
		return "", fmt.Errorf("loading prompt %s: %w", name, err)
	}

	prompt := string(template)
	for key, value := range values {
		prompt = strings.ReplaceAll(prompt, "{{"+key+"}}", value)
	}
	return prompt, nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func partialLabels(matches []matching.FuzzyTitle) []string {
	labels := make([]string, 0, len(matches))
	for _, m := range matches {
		labels = append(labels, fmt.Sprintf("%s relates to %s (%s, %.2f)", m.SeekerTitle, m.JobTitle, m.Type, m.Similarity))
	}
	return labels
}

func parseCV(raw string) (*ai.ParsedCV, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("parse gemini cv response: %w", err)
	}

	parsed := &ai.ParsedCV{
		JobTitles: utils.UniqueStrings(coerceStrings(data["jobTitles"])),
		Education: utils.UniqueStrings(coerceStrings(data["education"])),
		RawSkills: []ai.ParsedSkill{},
	}

	items, _ := data["rawSkills"].([]any)
	for _, item := range items {
		var skill ai.ParsedSkill
		switch val := item.(type) {
		case string:
			skill.Name = strings.TrimSpace(val)
		case map[string]any:
			skill.Name = coerceString(val["name"])
			if level := coerceFloat(val["proficiency"]); !math.IsNaN(level) {
				skill.Proficiency = int(math.Round(level))
			}
		}
		if skill.Name != "" {
			parsed.RawSkills = append(parsed.RawSkills, skill)
		}
	}

	return parsed, nil
}

func parseTrainingPrograms(raw string) ([]ai.TrainingProgram, error) {
	var items []map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &items); err != nil {
		return nil, fmt.Errorf("parse gemini training response: %w", err)
	}

	programs := make([]ai.TrainingProgram, 0, len(items))
	for _, item := range items {
		program := ai.TrainingProgram{
			Name:           coerceString(item["name"]),
			Institution:    coerceString(item["institution"]),
			Cost:           coerceString(item["cost"]),
			Duration:       coerceString(item["duration"]),
			URL:            coerceString(item["url"]),
			RelevantSkills: coerceStrings(item["relevantSkills"]),
		}
		if program.Name == "" {
			continue
		}
		if program.Cost == "" {
			program.Cost = "Contact for pricing"
		}
		if program.Duration == "" {
			program.Duration = "Varies"
		}
		programs = append(programs, program)
		if len(programs) == maxTrainingPrograms {
			break
		}
	}

	return programs, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	}
	return []string{}
}
