package matching

const (
	minProficiency     = 1
	maxProficiency     = 5
	defaultProficiency = 3
)

// proficiencyMultipliers is indexed by proficiency-1; level 3 is the baseline.
var proficiencyMultipliers = [maxProficiency]float64{0.70, 0.85, 1.00, 1.10, 1.15}

func sourceMultiplier(s Source) float64 {
	switch s {
	case SourceExplicit:
		return 1.0
	case SourceInferred:
		return 0.85
	default:
		return 1.0
	}
}

// proficiencyMultiplier clamps out-of-range levels instead of failing.
func proficiencyMultiplier(level int) float64 {
	if level < minProficiency {
		level = minProficiency
	}
	if level > maxProficiency {
		level = maxProficiency
	}
	return proficiencyMultipliers[level-1]
}

// ClampProficiency brings a proficiency into [1, 5]; zero means unset and becomes 3.
func ClampProficiency(level int) int {
	switch {
	case level == 0:
		return defaultProficiency
	case level < minProficiency:
		return minProficiency
	case level > maxProficiency:
		return maxProficiency
	default:
		return level
	}
}

type setScore struct {
	exact   []string
	missing []string
	fuzzy   []FuzzyMatch

	total         float64
	multiplierSum float64
	matched       int
}

// scoreSkillSet scores required skills (all essential or all optional)
// against the seeker's skills.
func scoreSkillSet(required []JobSkill, seekers []SeekerSkill, byURI map[string]SeekerSkill, co CoOccurrence) setScore {
	result := setScore{
		exact:   make([]string, 0, len(required)),
		missing: make([]string, 0),
		fuzzy:   make([]FuzzyMatch, 0),
	}

	for _, job := range required {
		if s, ok := byURI[job.URI]; ok {
			pm := proficiencyMultiplier(s.Proficiency)
			result.total += sourceMultiplier(s.Source) * pm
			result.multiplierSum += pm
			result.matched++
			result.exact = append(result.exact, job.URI)
			continue
		}

		if candidate, ok := bestFuzzyMatch(job, seekers, co); ok {
			pm := proficiencyMultiplier(candidate.seeker.Proficiency)
			result.total += candidate.credit * sourceMultiplier(candidate.seeker.Source) * pm
			result.multiplierSum += pm
			result.matched++
			result.fuzzy = append(result.fuzzy, candidate.match)
			continue
		}

		result.missing = append(result.missing, job.URI)
	}

	return result
}
