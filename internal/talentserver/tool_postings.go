package talentserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spigell/talentbridge/internal/logger"
	"github.com/spigell/talentbridge/internal/talent"
	"go.uber.org/zap"
)

type SearchOccupationsInput struct {
	Query string `json:"query" jsonschema:"Free text job title, for example data analyst"`
}

type Occupation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type SearchOccupationsOutput struct {
	Occupations []Occupation `json:"occupations"`
}

type CreateJobPostingInput struct {
	OccupationURI string `json:"occupationUri" jsonschema:"ESCO occupation URI, as returned by search_occupations"`
	Company       string `json:"company,omitempty" jsonschema:"Hiring company name"`
	Email         string `json:"email,omitempty" jsonschema:"Recruiter email address"`
}

type CreateJobPostingOutput struct {
	JobPostingID    string   `json:"jobPostingId"`
	Title           string   `json:"title"`
	EssentialSkills []string `json:"essentialSkills"`
	OptionalSkills  []string `json:"optionalSkills"`
	TotalSkills     int      `json:"totalSkills"`
}

type ListJobPostingsInput struct{}

type PostingSummary struct {
	JobPostingID    string `json:"jobPostingId"`
	Title           string `json:"title"`
	Company         string `json:"company"`
	EssentialSkills int    `json:"essentialSkills"`
	OptionalSkills  int    `json:"optionalSkills"`
	CreatedAt       string `json:"createdAt"`
}

type ListJobPostingsOutput struct {
	Postings []PostingSummary `json:"postings"`
}

func (t *tools) registerPostings(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_occupations",
		Description: "Search ESCO occupations by job title. Returns occupation URIs usable with create_job_posting.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.searchOccupations)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_job_posting",
		Description: "Create a job posting from an ESCO occupation. The occupation's essential and optional skills become the posting requirements.",
	}, t.createJobPosting)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_job_postings",
		Description: "List stored job postings, newest first.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.listJobPostings)
}

func (t *tools) searchOccupations(ctx context.Context, _ *mcp.CallToolRequest, input SearchOccupationsInput) (*mcp.CallToolResult, *SearchOccupationsOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, nil, errors.New("query is required")
	}

	concepts, err := t.svc.SearchOccupations(ctx, query)
	if err != nil {
		t.logger.Warn("search_occupations failed", zap.String("search", query), zap.Error(err))
		return nil, nil, err
	}

	out := &SearchOccupationsOutput{Occupations: make([]Occupation, 0, len(concepts))}
	for _, c := range concepts {
		out.Occupations = append(out.Occupations, Occupation{URI: c.URI, Title: c.Title})
	}
	return nil, out, nil
}

func (t *tools) createJobPosting(ctx context.Context, _ *mcp.CallToolRequest, input CreateJobPostingInput) (*mcp.CallToolResult, *CreateJobPostingOutput, error) {
	posting, err := t.svc.CreatePosting(ctx, talent.PostingRequest{
		Company:       input.Company,
		Email:         input.Email,
		OccupationURI: input.OccupationURI,
	})
	if err != nil {
		t.logger.Warn("create_job_posting failed",
			append(logger.StringFields(logger.StringField{Key: logger.FieldOccupation, Value: input.OccupationURI}), zap.Error(err))...)
		return nil, nil, err
	}

	out := &CreateJobPostingOutput{
		JobPostingID:    posting.ID.String(),
		Title:           posting.Title,
		EssentialSkills: []string{},
		OptionalSkills:  []string{},
		TotalSkills:     len(posting.Skills),
	}
	for _, s := range posting.Skills {
		if s.Essential {
			out.EssentialSkills = append(out.EssentialSkills, s.Title)
		} else {
			out.OptionalSkills = append(out.OptionalSkills, s.Title)
		}
	}
	return nil, out, nil
}

func (t *tools) listJobPostings(ctx context.Context, _ *mcp.CallToolRequest, _ ListJobPostingsInput) (*mcp.CallToolResult, *ListJobPostingsOutput, error) {
	postings, err := t.svc.Postings(ctx)
	if err != nil {
		return nil, nil, err
	}

	out := &ListJobPostingsOutput{Postings: make([]PostingSummary, 0, len(postings))}
	for _, p := range postings {
		summary := PostingSummary{
			JobPostingID: p.ID.String(),
			Title:        p.Title,
			Company:      p.Company,
			CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		}
		for _, s := range p.Skills {
			if s.Essential {
				summary.EssentialSkills++
			} else {
				summary.OptionalSkills++
			}
		}
		out.Postings = append(out.Postings, summary)
	}
	return nil, out, nil
}
