package matching

import "math"

const (
	essentialWeight = 0.80
	optionalWeight  = 0.15
	bonusWeight     = 0.05

	maxProficiencyBonus = 0.05
)

// Match scores the seeker's skills against the job's skills.
//
// Essential and optional skills are scored in two independent passes over the
// same seeker pool, so one seeker skill may fuzzily satisfy requirements in
// both passes. Match has no side effects and never fails: empty inputs give
// zero scores.
func Match(seekerSkills []SeekerSkill, jobSkills []JobSkill, co CoOccurrence, titles TitleLookup) *Result {
	byURI := make(map[string]SeekerSkill, len(seekerSkills))
	for _, s := range seekerSkills {
		if _, ok := byURI[s.URI]; !ok {
			byURI[s.URI] = s
		}
	}

	var essential, optional []JobSkill
	for _, j := range jobSkills {
		if j.Essential {
			essential = append(essential, j)
		} else {
			optional = append(optional, j)
		}
	}

	ess := scoreSkillSet(essential, seekerSkills, byURI, co)
	opt := scoreSkillSet(optional, seekerSkills, byURI, co)

	essNorm := normalized(ess.total, len(essential))
	optNorm := normalized(opt.total, len(optional))

	required := len(essential) + len(optional)
	bonus := proficiencyBonus(ess.multiplierSum+opt.multiplierSum, ess.matched+opt.matched, required)

	score := int(math.Round(100 * (essNorm*essentialWeight + optNorm*optionalWeight + bonus*bonusWeight)))
	score = max(0, min(100, score))

	relevant := countRelevant(seekerSkills, jobSkills, co)
	relevance := 0
	if len(seekerSkills) > 0 {
		relevance = int(math.Round(100 * float64(relevant) / float64(len(seekerSkills))))
	}

	fuzzy := make([]FuzzyMatch, 0, len(ess.fuzzy)+len(opt.fuzzy))
	fuzzy = append(fuzzy, ess.fuzzy...)
	fuzzy = append(fuzzy, opt.fuzzy...)

	essentialURIs := make(map[string]struct{}, len(essential))
	for _, j := range essential {
		essentialURIs[j.URI] = struct{}{}
	}

	breakdown := ScoreBreakdown{
		EssentialExact:   len(ess.exact),
		OptionalExact:    len(opt.exact),
		ProficiencyBonus: math.Round(bonus*100) / 100,
		MaxPossible:      required,
	}
	for _, f := range fuzzy {
		if _, ok := essentialURIs[f.JobURI]; ok {
			breakdown.EssentialFuzzy++
		} else {
			breakdown.OptionalFuzzy++
		}
	}

	fuzzyTitles := make([]FuzzyTitle, 0, len(fuzzy))
	for _, f := range fuzzy {
		fuzzyTitles = append(fuzzyTitles, FuzzyTitle{
			SeekerTitle: titles.Resolve(f.SeekerURI),
			JobTitle:    titles.Resolve(f.JobURI),
			Similarity:  f.Similarity,
			Type:        f.Type,
		})
	}

	return &Result{
		MatchScore:      score,
		SeekerRelevance: relevance,
		RelevantSkills:  relevant,

		MatchedEssential: ess.exact,
		MissingEssential: ess.missing,
		MatchedOptional:  opt.exact,
		MissingOptional:  opt.missing,
		FuzzyMatches:     fuzzy,

		Breakdown: breakdown,

		MatchedTitles:         titles.ResolveAll(ess.exact),
		MissingTitles:         titles.ResolveAll(ess.missing),
		OptionalMatchedTitles: titles.ResolveAll(opt.exact),
		OptionalMissingTitles: titles.ResolveAll(opt.missing),
		FuzzyTitles:           fuzzyTitles,
	}
}

func normalized(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// proficiencyBonus expresses how far the applied proficiency multipliers
// exceed the 1.0 baseline, per required skill, capped at 5 points.
func proficiencyBonus(multiplierSum float64, matched, required int) float64 {
	bonus := (multiplierSum - float64(matched)) / float64(max(required, 1))
	return max(0, min(maxProficiencyBonus, bonus))
}

// countRelevant counts seeker skills that relate to the job in any way,
// including skills the job never asked for by URI.
func countRelevant(seekerSkills []SeekerSkill, jobSkills []JobSkill, co CoOccurrence) int {
	jobURIs := make(map[string]struct{}, len(jobSkills))
	for _, j := range jobSkills {
		jobURIs[j.URI] = struct{}{}
	}

	count := 0
	for _, s := range seekerSkills {
		if isRelevant(s, jobURIs, jobSkills, co) {
			count++
		}
	}
	return count
}

func isRelevant(s SeekerSkill, jobURIs map[string]struct{}, jobSkills []JobSkill, co CoOccurrence) bool {
	if _, ok := jobURIs[s.URI]; ok {
		return true
	}
	for _, j := range jobSkills {
		if co.Score(s.URI, j.URI) >= CoOccurrenceThreshold {
			return true
		}
	}
	for _, j := range jobSkills {
		if TitleSimilarity(s.Title, j.Title) >= TitleSimilarityThreshold {
			return true
		}
	}
	return false
}
