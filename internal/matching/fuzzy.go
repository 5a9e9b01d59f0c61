package matching

const (
	// CoOccurrenceThreshold is the minimum raw co-occurrence that counts as related.
	CoOccurrenceThreshold = 0.15
	// TitleSimilarityThreshold is the minimum raw title similarity that counts as related.
	TitleSimilarityThreshold = 0.4

	coOccurrenceCredit    = 0.5
	titleSimilarityCredit = 0.3
)

type fuzzyCandidate struct {
	credit float64
	seeker SeekerSkill
	match  FuzzyMatch
}

// bestFuzzyMatch looks for the seeker skill that best substitutes the job
// skill. Co-occurrence wins a tie against title similarity for the same
// seeker skill, and the earliest seeker skill wins a tie between skills.
func bestFuzzyMatch(job JobSkill, seekers []SeekerSkill, co CoOccurrence) (fuzzyCandidate, bool) {
	var best fuzzyCandidate

	for _, s := range seekers {
		var (
			coCredit, titleCredit float64
		)

		rawCo := co.Score(s.URI, job.URI)
		if rawCo >= CoOccurrenceThreshold {
			coCredit = rawCo * coOccurrenceCredit
		}

		rawTitle := TitleSimilarity(s.Title, job.Title)
		if rawTitle >= TitleSimilarityThreshold {
			titleCredit = rawTitle * titleSimilarityCredit
		}

		credit, raw, kind := coCredit, rawCo, MatchCoOccurrence
		if titleCredit > coCredit {
			credit, raw, kind = titleCredit, rawTitle, MatchTitleSimilarity
		}

		if credit > best.credit {
			best = fuzzyCandidate{
				credit: credit,
				seeker: s,
				match: FuzzyMatch{
					SeekerURI:   s.URI,
					SeekerTitle: s.Title,
					JobURI:      job.URI,
					JobTitle:    job.Title,
					Similarity:  raw,
					Type:        kind,
				},
			}
		}
	}

	return best, best.credit > 0
}
