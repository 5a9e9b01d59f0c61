package talentserver

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spigell/talentbridge/internal/logger"
	"github.com/spigell/talentbridge/internal/profile"
	"go.uber.org/zap"
)

type ParseCVInput struct {
	Name   string `json:"name,omitempty" jsonschema:"Full name of the job seeker"`
	Email  string `json:"email,omitempty" jsonschema:"Email address of the job seeker"`
	CVText string `json:"cvText" jsonschema:"Full text of the CV or resume"`
}

type ParseCVOutput struct {
	SeekerProfileID string   `json:"seekerProfileId"`
	Name            string   `json:"name"`
	JobTitles       []string `json:"jobTitles"`
	Education       []string `json:"education"`
	TotalSkills     int      `json:"totalSkills"`
}

type ListSeekersInput struct{}

type SeekerSummary struct {
	SeekerProfileID string   `json:"seekerProfileId"`
	Name            string   `json:"name"`
	JobTitles       []string `json:"jobTitles"`
	SkillCount      int      `json:"skillCount"`
	CreatedAt       string   `json:"createdAt"`
}

type ListSeekersOutput struct {
	Seekers []SeekerSummary `json:"seekers"`
}

func (t *tools) registerSeekers(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_cv",
		Description: "Parse CV text into a job seeker profile. Job titles and skills are mapped to the ESCO taxonomy and stored. Returns the new seekerProfileId for matching.",
	}, t.parseCV)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_seekers",
		Description: "List stored job seeker profiles, newest first.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.listSeekers)
}

func (t *tools) parseCV(ctx context.Context, _ *mcp.CallToolRequest, input ParseCVInput) (*mcp.CallToolResult, *ParseCVOutput, error) {
	seeker, err := t.svc.CreateSeeker(ctx, profile.Request{
		Name:   input.Name,
		Email:  input.Email,
		CVText: input.CVText,
	})
	if err != nil {
		t.logger.Warn("parse_cv failed", zap.Error(err))
		return nil, nil, err
	}
	t.logger.Info("seeker created", logger.MatchFields(seeker.ID.String(), "")...)

	return nil, &ParseCVOutput{
		SeekerProfileID: seeker.ID.String(),
		Name:            seeker.Name,
		JobTitles:       nonNil(seeker.JobTitles),
		Education:       nonNil(seeker.Education),
		TotalSkills:     len(seeker.Skills),
	}, nil
}

func (t *tools) listSeekers(ctx context.Context, _ *mcp.CallToolRequest, _ ListSeekersInput) (*mcp.CallToolResult, *ListSeekersOutput, error) {
	seekers, err := t.svc.Seekers(ctx)
	if err != nil {
		return nil, nil, err
	}

	out := &ListSeekersOutput{Seekers: make([]SeekerSummary, 0, len(seekers))}
	for _, s := range seekers {
		out.Seekers = append(out.Seekers, SeekerSummary{
			SeekerProfileID: s.ID.String(),
			Name:            s.Name,
			JobTitles:       nonNil(s.JobTitles),
			SkillCount:      len(s.Skills),
			CreatedAt:       s.CreatedAt.Format(time.RFC3339),
		})
	}
	return nil, out, nil
}
