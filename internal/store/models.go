package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/spigell/talentbridge/internal/matching"
)

const (
	RoleSeeker    = "seeker"
	RoleRecruiter = "recruiter"
)

type Seeker struct {
	ID        uuid.UUID              `json:"id"`
	UserID    uuid.UUID              `json:"userId"`
	Name      string                 `json:"name"`
	Email     string                 `json:"email"`
	CVText    string                 `json:"cvText,omitempty"`
	JobTitles []string               `json:"jobTitles"`
	Education []string               `json:"education"`
	Skills    []matching.SeekerSkill `json:"skills"`
	CreatedAt time.Time              `json:"createdAt"`
}

// NewSeeker holds what is needed to create a seeker with its user.
type NewSeeker struct {
	Name      string
	Email     string
	CVText    string
	JobTitles []string
	Education []string
	Skills    []matching.SeekerSkill
}

type Recruiter struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type PostingSkill struct {
	matching.JobSkill
	SkillType string `json:"skillType,omitempty"`
}

type Posting struct {
	ID            uuid.UUID      `json:"id"`
	RecruiterID   uuid.UUID      `json:"recruiterId"`
	Company       string         `json:"company,omitempty"`
	Title         string         `json:"title"`
	OccupationURI string         `json:"escoOccupationUri"`
	Description   string         `json:"description,omitempty"`
	Skills        []PostingSkill `json:"skills"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// JobSkills returns the skills in the form the matching engine consumes.
func (p *Posting) JobSkills() []matching.JobSkill {
	skills := make([]matching.JobSkill, 0, len(p.Skills))
	for _, s := range p.Skills {
		skills = append(skills, s.JobSkill)
	}
	return skills
}

type NewPosting struct {
	Title         string
	OccupationURI string
	Skills        []PostingSkill
}

type Match struct {
	ID        uuid.UUID        `json:"id"`
	SeekerID  uuid.UUID        `json:"seekerId"`
	PostingID uuid.UUID        `json:"postingId"`
	Result    *matching.Result `json:"result"`
	Coaching  string           `json:"coaching,omitempty"`
	Summary   string           `json:"summary,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// MatchFilter narrows ListMatches. Nil fields match everything.
type MatchFilter struct {
	SeekerID  *uuid.UUID
	PostingID *uuid.UUID
}
