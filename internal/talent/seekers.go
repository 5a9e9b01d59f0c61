package talent

import (
	"context"
	"fmt"

	"github.com/spigell/talentbridge/internal/ai"
	"github.com/spigell/talentbridge/internal/esco"
	"github.com/spigell/talentbridge/internal/logger"
	"github.com/spigell/talentbridge/internal/profile"
	"github.com/spigell/talentbridge/internal/store"
	"go.uber.org/zap"
)

// CreateSeeker parses the CV, maps it onto the taxonomy and stores the seeker.
// Manually listed titles and skills are added to whatever the CV yields.
func (s *Service) CreateSeeker(ctx context.Context, req profile.Request) (*store.Seeker, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cv := req.ManualCV()
	if req.CVText != "" {
		if s.assistant == nil {
			return nil, fmt.Errorf("parsing cv: %w", ErrNoAssistant)
		}

		parsed, err := s.assistant.ParseCV(ctx, req.CVText)
		if err != nil {
			return nil, fmt.Errorf("parsing cv: %w", err)
		}
		cv = profile.Merge(parsed, cv)
	}

	skills, err := s.profiles.Build(ctx, cv)
	if err != nil {
		return nil, fmt.Errorf("building skill profile: %w", err)
	}

	in := store.NewSeeker{
		Name:      req.Name,
		Email:     req.Email,
		CVText:    req.CVText,
		JobTitles: cv.JobTitles,
		Education: cv.Education,
		Skills:    skills,
	}
	if in.Name == "" {
		in.Name = anonymousSeeker
	}
	if in.Email == "" {
		in.Email = s.placeholderEmail("seeker")
	}

	seeker, err := s.store.CreateSeeker(ctx, in)
	if err != nil {
		return nil, err
	}

	s.logger.Info("seeker created",
		zap.String(logger.FieldSeeker, seeker.ID.String()),
		zap.Int("skills", len(seeker.Skills)),
	)
	return seeker, nil
}

// PostingRequest is the input for creating a job posting from a taxonomy
// occupation.
type PostingRequest struct {
	Company       string `json:"company" validate:"omitempty,max=200"`
	Email         string `json:"email" validate:"omitempty,email"`
	OccupationURI string `json:"occupationUri" validate:"required,url"`
}

// CreatePosting copies the skills of an occupation into a new posting owned
// by the recruiter behind the email, then asks the assistant for a job
// description.
func (s *Service) CreatePosting(ctx context.Context, req PostingRequest) (*store.Posting, error) {
	if err := profile.Struct(&req); err != nil {
		return nil, err
	}

	occupation, err := s.taxonomy.GetOccupation(ctx, req.OccupationURI)
	if err != nil {
		return nil, fmt.Errorf("loading occupation: %w", err)
	}

	email := req.Email
	if email == "" {
		email = s.placeholderEmail("recruiter")
	}
	name := req.Company
	if name == "" {
		name = anonymousRecruiter
	}

	recruiter, err := s.store.FindOrCreateRecruiter(ctx, email, name, req.Company)
	if err != nil {
		return nil, err
	}

	posting, err := s.store.CreatePosting(ctx, recruiter, store.NewPosting{
		Title:         occupation.Title,
		OccupationURI: occupation.URI,
		Skills:        postingSkills(occupation),
	})
	if err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String(logger.FieldPosting, posting.ID.String()))
	log.Info("posting created",
		zap.String(logger.FieldOccupation, occupation.URI),
		zap.Int("skills", len(posting.Skills)),
	)

	description := s.generate(ctx, "generate_job_description", func(ctx context.Context, a ai.Assistant) (string, error) {
		return a.GenerateJobDescription(ctx, occupation.Title, skillTitles(occupation.EssentialSkills), skillTitles(occupation.OptionalSkills))
	})
	if description == "" {
		return posting, nil
	}

	if err := s.store.SetPostingDescription(ctx, posting.ID, description); err != nil {
		log.Warn("saving job description failed", zap.Error(err))
		return posting, nil
	}
	posting.Description = description

	return posting, nil
}

func postingSkills(occupation *esco.Occupation) []store.PostingSkill {
	skills := make([]store.PostingSkill, 0, len(occupation.EssentialSkills)+len(occupation.OptionalSkills))
	for _, s := range occupation.EssentialSkills {
		skills = append(skills, postingSkill(s, true))
	}
	for _, s := range occupation.OptionalSkills {
		skills = append(skills, postingSkill(s, false))
	}
	return skills
}

func postingSkill(s esco.Skill, essential bool) store.PostingSkill {
	ps := store.PostingSkill{SkillType: s.SkillType}
	ps.URI = s.URI
	ps.Title = s.Title
	ps.Essential = essential
	return ps
}

func skillTitles(skills []esco.Skill) []string {
	titles := make([]string, 0, len(skills))
	for _, s := range skills {
		titles = append(titles, s.Title)
	}
	return titles
}
