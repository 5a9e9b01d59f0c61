// Package ai describes the text generation tasks the application delegates to
// a language model.
package ai

import (
	"context"

	"github.com/spigell/talentbridge/internal/matching"
)

// ParsedSkill is a skill named in a CV. Proficiency is 1-5, or 0 when the CV
// gives no hint.
type ParsedSkill struct {
	Name        string `json:"name"`
	Proficiency int    `json:"proficiency,omitempty"`
}

type ParsedCV struct {
	JobTitles []string      `json:"jobTitles"`
	Education []string      `json:"education"`
	RawSkills []ParsedSkill `json:"rawSkills"`
}

// CandidateBrief is what a recruiter summary is written from.
type CandidateBrief struct {
	SeekerName     string
	PreviousRoles  []string
	JobTitle       string
	MatchScore     int
	MatchedSkills  []string
	MissingSkills  []string
	PartialMatches []matching.FuzzyTitle
}

// TransitionBrief is what career change coaching is written from.
type TransitionBrief struct {
	PreviousRoles    []string
	TargetOccupation string
	MatchedSkills    []string
	MissingSkills    []string
	PartialMatches   []matching.FuzzyTitle
	OptionalMatched  []string
	SeekerRelevance  int
}

type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type TrainingProgram struct {
	Name           string   `json:"name"`
	Institution    string   `json:"institution"`
	Cost           string   `json:"cost"`
	Duration       string   `json:"duration"`
	URL            string   `json:"url"`
	RelevantSkills []string `json:"relevantSkills"`
}

type Assistant interface {
	ParseCV(ctx context.Context, cvText string) (*ParsedCV, error)
	ExplainGaps(ctx context.Context, matched, missing []string, jobTitle string) (string, error)
	SummarizeCandidate(ctx context.Context, brief CandidateBrief) (string, error)
	ExplainTransitionGaps(ctx context.Context, brief TransitionBrief) (string, error)
	GenerateJobDescription(ctx context.Context, title string, essential, optional []string) (string, error)
	ExtractTrainingPrograms(ctx context.Context, occupation string, skills []string, results []SearchResult) ([]TrainingProgram, error)
}
