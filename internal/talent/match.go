package talent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spigell/talentbridge/internal/ai"
	"github.com/spigell/talentbridge/internal/esco"
	"github.com/spigell/talentbridge/internal/logger"
	"github.com/spigell/talentbridge/internal/matching"
	"github.com/spigell/talentbridge/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type MatchOptions struct {
	// Refresh recomputes the score even when a stored result exists.
	Refresh bool
}

// MatchReport is a stored match with the names it was computed for.
type MatchReport struct {
	*store.Match
	SeekerName string `json:"seekerName"`
	JobTitle   string `json:"jobTitle"`
	Reused     bool   `json:"reused"`
}

// Match scores a seeker against a posting. A result already stored for the
// pair is reused unless opts.Refresh is set. Coaching for the seeker and a
// summary for the recruiter are written when they are missing.
func (s *Service) Match(ctx context.Context, seekerID, postingID uuid.UUID, opts MatchOptions) (*MatchReport, error) {
	seeker, posting, err := s.loadPair(ctx, seekerID, postingID)
	if err != nil {
		return nil, err
	}

	log := logger.WithFields(s.logger, logger.MatchFields(seekerID.String(), postingID.String())...)

	existing, err := s.store.GetMatch(ctx, seekerID, postingID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		existing = nil
	case err != nil:
		return nil, err
	}

	report := &MatchReport{SeekerName: seeker.Name, JobTitle: posting.Title}

	if existing != nil && !opts.Refresh {
		report.Reused = true
		if existing.Coaching != "" && existing.Summary != "" {
			report.Match = existing
			log.Info("reusing stored match", logger.ScoreFields(existing.Result.MatchScore, existing.Result.SeekerRelevance)...)
			return report, nil
		}
	}

	var (
		result *matching.Result
		stored matchTexts
	)
	if report.Reused {
		result = existing.Result
		stored = matchTexts{coaching: existing.Coaching, summary: existing.Summary}
	} else {
		result, err = s.score(ctx, seeker.Skills, posting.JobSkills(), titleLookup(seeker.Skills, posting.JobSkills()))
		if err != nil {
			return nil, err
		}
	}

	texts := s.fillMatchTexts(ctx, seeker, posting.Title, result, stored)

	saved, err := s.store.SaveMatch(ctx, &store.Match{
		SeekerID:  seekerID,
		PostingID: postingID,
		Result:    result,
		Coaching:  texts.coaching,
		Summary:   texts.summary,
	})
	if err != nil {
		return nil, err
	}
	report.Match = saved

	log.Info("match computed", logger.ScoreFields(result.MatchScore, result.SeekerRelevance)...)
	return report, nil
}

func (s *Service) loadPair(ctx context.Context, seekerID, postingID uuid.UUID) (*store.Seeker, *store.Posting, error) {
	var (
		seeker  *store.Seeker
		posting *store.Posting
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		seeker, err = s.Seeker(gctx, seekerID)
		return err
	})
	g.Go(func() error {
		var err error
		posting, err = s.Posting(gctx, postingID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return seeker, posting, nil
}

// score resolves co-occurrence between the two skill sets and runs the engine.
func (s *Service) score(ctx context.Context, seekerSkills []matching.SeekerSkill, jobSkills []matching.JobSkill, titles matching.TitleLookup) (*matching.Result, error) {
	co, err := s.taxonomy.BatchCoOccurrence(ctx, seekerURIs(seekerSkills), jobURIs(jobSkills))
	if err != nil {
		return nil, fmt.Errorf("resolving skill co-occurrence: %w", err)
	}

	return matching.Match(seekerSkills, jobSkills, co, titles), nil
}

type matchTexts struct {
	coaching string
	summary  string
}

// fillMatchTexts generates whichever of the two texts is still empty. Texts
// already present are kept, so a failed regeneration never erases them.
func (s *Service) fillMatchTexts(ctx context.Context, seeker *store.Seeker, jobTitle string, result *matching.Result, texts matchTexts) matchTexts {
	g, gctx := errgroup.WithContext(ctx)
	if texts.coaching == "" {
		g.Go(func() error {
			texts.coaching = s.generate(gctx, "explain_gaps", func(ctx context.Context, a ai.Assistant) (string, error) {
				return a.ExplainGaps(ctx, result.MatchedTitles, result.MissingTitles, jobTitle)
			})
			return nil
		})
	}
	if texts.summary == "" {
		g.Go(func() error {
			texts.summary = s.generate(gctx, "summarize_candidate", func(ctx context.Context, a ai.Assistant) (string, error) {
				return a.SummarizeCandidate(ctx, ai.CandidateBrief{
					SeekerName:     seeker.Name,
					PreviousRoles:  seeker.JobTitles,
					JobTitle:       jobTitle,
					MatchScore:     result.MatchScore,
					MatchedSkills:  result.MatchedTitles,
					MissingSkills:  result.MissingTitles,
					PartialMatches: result.FuzzyTitles,
				})
			})
			return nil
		})
	}
	_ = g.Wait()

	return texts
}

// TransitionReport is the outcome of comparing a seeker with a target
// occupation. It is never stored.
type TransitionReport struct {
	*matching.Result
	Coaching        string `json:"coaching,omitempty"`
	OccupationURI   string `json:"occupationUri"`
	OccupationTitle string `json:"occupationTitle"`
	SeekerName      string `json:"seekerName"`
}

// Transition scores a seeker against every essential and optional skill of
// an occupation and writes career change coaching.
func (s *Service) Transition(ctx context.Context, seekerID uuid.UUID, occupationURI string) (*TransitionReport, error) {
	var (
		seeker     *store.Seeker
		occupation *esco.Occupation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		seeker, err = s.Seeker(gctx, seekerID)
		return err
	})
	g.Go(func() error {
		var err error
		occupation, err = s.taxonomy.GetOccupation(gctx, occupationURI)
		if err != nil {
			return fmt.Errorf("loading occupation: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	jobSkills := make([]matching.JobSkill, 0, len(occupation.EssentialSkills)+len(occupation.OptionalSkills))
	for _, ps := range postingSkills(occupation) {
		jobSkills = append(jobSkills, ps.JobSkill)
	}

	result, err := s.score(ctx, seeker.Skills, jobSkills, titleLookup(seeker.Skills, jobSkills))
	if err != nil {
		return nil, err
	}

	coaching := s.generate(ctx, "explain_transition_gaps", func(ctx context.Context, a ai.Assistant) (string, error) {
		return a.ExplainTransitionGaps(ctx, ai.TransitionBrief{
			PreviousRoles:    seeker.JobTitles,
			TargetOccupation: occupation.Title,
			MatchedSkills:    result.MatchedTitles,
			MissingSkills:    result.MissingTitles,
			PartialMatches:   result.FuzzyTitles,
			OptionalMatched:  result.OptionalMatchedTitles,
			SeekerRelevance:  result.SeekerRelevance,
		})
	})

	fields := logger.MatchFields(seekerID.String(), "")
	fields = append(fields, zap.String(logger.FieldOccupation, occupation.URI))
	fields = append(fields, logger.ScoreFields(result.MatchScore, result.SeekerRelevance)...)
	s.logger.Info("transition analysed", fields...)

	return &TransitionReport{
		Result:          result,
		Coaching:        coaching,
		OccupationURI:   occupation.URI,
		OccupationTitle: occupation.Title,
		SeekerName:      seeker.Name,
	}, nil
}

// titleLookup maps URIs to titles. Job titles win over seeker titles.
func titleLookup(seekerSkills []matching.SeekerSkill, jobSkills []matching.JobSkill) matching.TitleLookup {
	titles := make(matching.TitleLookup, len(seekerSkills)+len(jobSkills))
	for _, s := range seekerSkills {
		titles[s.URI] = s.Title
	}
	for _, s := range jobSkills {
		titles[s.URI] = s.Title
	}
	return titles
}

func seekerURIs(skills []matching.SeekerSkill) []string {
	uris := make([]string, 0, len(skills))
	for _, s := range skills {
		uris = append(uris, s.URI)
	}
	return uris
}

func jobURIs(skills []matching.JobSkill) []string {
	uris := make([]string, 0, len(skills))
	for _, s := range skills {
		uris = append(uris, s.URI)
	}
	return uris
}
