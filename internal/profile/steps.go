package profile

import (
	"context"
	"fmt"

	"github.com/spigell/talentbridge/internal/esco"
	"github.com/spigell/talentbridge/internal/matching"
	"github.com/spigell/talentbridge/internal/utils"
)

type explicitStep struct {
	taxonomy Taxonomy
}

// NewExplicit maps every raw CV skill to its best ESCO skill.
func NewExplicit(taxonomy Taxonomy) Step {
	return &explicitStep{taxonomy: taxonomy}
}

func (s *explicitStep) Name() string { return "explicit" }

func (s *explicitStep) Apply(ctx context.Context, p *Profile) (Report, error) {
	initial := len(p.Skills)

	for _, raw := range p.CV.RawSkills {
		hits, err := s.taxonomy.SearchSkills(ctx, raw.Name)
		if err != nil {
			return Report{}, fmt.Errorf("searching skill %q: %w", raw.Name, err)
		}
		if len(hits) == 0 {
			continue
		}

		p.Skills = append(p.Skills, matching.SeekerSkill{
			URI:         hits[0].URI,
			Title:       hits[0].Title,
			Proficiency: raw.Proficiency,
			Source:      matching.SourceExplicit,
		})
	}

	left := len(p.Skills)
	return Report{Initial: initial, Added: left - initial, Left: left}, nil
}

type inferredStep struct {
	taxonomy Taxonomy
}

// NewInferred expands each previous job title into the skills of its best
// matching occupation.
func NewInferred(taxonomy Taxonomy) Step {
	return &inferredStep{taxonomy: taxonomy}
}

func (s *inferredStep) Name() string { return "inferred" }

func (s *inferredStep) Apply(ctx context.Context, p *Profile) (Report, error) {
	initial := len(p.Skills)

	for _, title := range utils.UniqueStrings(p.CV.JobTitles) {
		hits, err := s.taxonomy.SearchOccupations(ctx, title)
		if err != nil {
			return Report{}, fmt.Errorf("searching occupation %q: %w", title, err)
		}
		if len(hits) == 0 {
			continue
		}

		occupation, err := s.taxonomy.GetOccupation(ctx, hits[0].URI)
		if err != nil {
			return Report{}, fmt.Errorf("loading occupation %s: %w", hits[0].URI, err)
		}

		for _, group := range [][]esco.Skill{occupation.EssentialSkills, occupation.OptionalSkills} {
			for _, skill := range group {
				p.Skills = append(p.Skills, matching.SeekerSkill{
					URI:    skill.URI,
					Title:  skill.Title,
					Source: matching.SourceInferred,
				})
			}
		}
	}

	left := len(p.Skills)
	return Report{Initial: initial, Added: left - initial, Left: left}, nil
}

type dedupeStep struct{}

// NewDedupe keeps one skill per URI. An explicit skill replaces an earlier
// inferred one in place, otherwise the first occurrence stays.
func NewDedupe() Step {
	return dedupeStep{}
}

func (dedupeStep) Name() string { return "dedupe" }

func (dedupeStep) Apply(_ context.Context, p *Profile) (Report, error) {
	initial := len(p.Skills)

	index := make(map[string]int, initial)
	kept := make([]matching.SeekerSkill, 0, initial)
	for _, skill := range p.Skills {
		i, ok := index[skill.URI]
		if !ok {
			index[skill.URI] = len(kept)
			kept = append(kept, skill)
			continue
		}
		if kept[i].Source != matching.SourceExplicit && skill.Source == matching.SourceExplicit {
			kept[i] = skill
		}
	}

	p.Skills = kept
	return Report{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

type normalizeStep struct{}

// NewNormalize drops skills without a URI and clamps proficiency to the
// supported range.
func NewNormalize() Step {
	return normalizeStep{}
}

func (normalizeStep) Name() string { return "normalize" }

func (normalizeStep) Apply(_ context.Context, p *Profile) (Report, error) {
	initial := len(p.Skills)

	kept := p.Skills[:0]
	for _, skill := range p.Skills {
		if skill.URI == "" {
			continue
		}
		skill.Proficiency = matching.ClampProficiency(skill.Proficiency)
		if skill.Title == "" {
			skill.Title = skill.URI
		}
		kept = append(kept, skill)
	}

	p.Skills = kept
	return Report{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}
