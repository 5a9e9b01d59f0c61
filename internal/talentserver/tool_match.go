package talentserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spigell/talentbridge/internal/logger"
	"github.com/spigell/talentbridge/internal/talent"
	"go.uber.org/zap"
)

type MatchInput struct {
	SeekerProfileID string `json:"seekerProfileId" jsonschema:"Seeker id returned by parse_cv or list_seekers"`
	JobPostingID    string `json:"jobPostingId" jsonschema:"Posting id returned by create_job_posting or list_job_postings"`
	Refresh         bool   `json:"refresh,omitempty" jsonschema:"Recompute the score even when a stored match exists"`
}

type PartialMatch struct {
	SeekerSkill string  `json:"seekerSkill"`
	JobSkill    string  `json:"jobSkill"`
	Similarity  float64 `json:"similarity"`
}

type MatchOutput struct {
	MatchID          string         `json:"matchId"`
	SeekerName       string         `json:"seekerName"`
	JobTitle         string         `json:"jobTitle"`
	MatchScore       int            `json:"matchScore"`
	SeekerRelevance  int            `json:"seekerRelevance"`
	MatchedSkills    []string       `json:"matchedSkills"`
	MissingSkills    []string       `json:"missingSkills"`
	PartialMatches   []PartialMatch `json:"partialMatches"`
	Coaching         string         `json:"coaching"`
	RecruiterSummary string         `json:"recruiterSummary"`
	Reused           bool           `json:"reused"`
}

func (t *tools) registerMatch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "match_seeker_to_job",
		Description: "Score a job seeker against a job posting. Returns the 0-100 match score, matched and missing essential skills, partial matches, coaching for the seeker and a summary for the recruiter. A stored match is reused unless refresh is set.",
	}, t.match)
}

func (t *tools) match(ctx context.Context, _ *mcp.CallToolRequest, input MatchInput) (*mcp.CallToolResult, *MatchOutput, error) {
	seekerID, err := parseID("seekerProfileId", input.SeekerProfileID)
	if err != nil {
		return nil, nil, err
	}
	postingID, err := parseID("jobPostingId", input.JobPostingID)
	if err != nil {
		return nil, nil, err
	}

	report, err := t.svc.Match(ctx, seekerID, postingID, talent.MatchOptions{Refresh: input.Refresh})
	if err != nil {
		t.logger.Warn("match_seeker_to_job failed",
			append(logger.MatchFields(input.SeekerProfileID, input.JobPostingID), zap.Error(err))...)
		return nil, nil, err
	}

	result := report.Result
	out := &MatchOutput{
		MatchID:          report.ID.String(),
		SeekerName:       report.SeekerName,
		JobTitle:         report.JobTitle,
		MatchScore:       result.MatchScore,
		SeekerRelevance:  result.SeekerRelevance,
		MatchedSkills:    nonNil(result.MatchedTitles),
		MissingSkills:    nonNil(result.MissingTitles),
		PartialMatches:   make([]PartialMatch, 0, len(result.FuzzyTitles)),
		Coaching:         report.Coaching,
		RecruiterSummary: report.Summary,
		Reused:           report.Reused,
	}
	for _, f := range result.FuzzyTitles {
		out.PartialMatches = append(out.PartialMatches, PartialMatch{
			SeekerSkill: f.SeekerTitle,
			JobSkill:    f.JobTitle,
			Similarity:  f.Similarity,
		})
	}
	return nil, out, nil
}
