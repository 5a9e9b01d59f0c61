// Package matching scores one seeker's skill set against one job's required
// skills using exact taxonomy matches and fuzzy proxies.
package matching

import (
	"fmt"
	"strings"
)

// Source tells where a seeker skill came from.
type Source int

const (
	SourceUnknown Source = iota
	SourceExplicit
	SourceInferred
)

func ParseSource(s string) Source {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "explicit":
		return SourceExplicit
	case "inferred":
		return SourceInferred
	default:
		return SourceUnknown
	}
}

func (s Source) String() string {
	switch s {
	case SourceExplicit:
		return "explicit"
	case SourceInferred:
		return "inferred"
	default:
		return "unknown"
	}
}

func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Source) UnmarshalText(text []byte) error {
	*s = ParseSource(string(text))
	return nil
}

// MatchType names the proxy that produced a fuzzy match.
type MatchType int

const (
	MatchCoOccurrence MatchType = iota
	MatchTitleSimilarity
)

func (t MatchType) String() string {
	switch t {
	case MatchCoOccurrence:
		return "co-occurrence"
	case MatchTitleSimilarity:
		return "title-similarity"
	default:
		return fmt.Sprintf("MatchType(%d)", int(t))
	}
}

func (t MatchType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *MatchType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "co-occurrence":
		*t = MatchCoOccurrence
	case "title-similarity":
		*t = MatchTitleSimilarity
	default:
		return fmt.Errorf("unknown match type %q", string(text))
	}
	return nil
}

type SeekerSkill struct {
	URI         string `json:"uri"`
	Title       string `json:"title"`
	Proficiency int    `json:"proficiency"`
	Source      Source `json:"source"`
}

type JobSkill struct {
	URI       string `json:"uri"`
	Title     string `json:"title"`
	Essential bool   `json:"isEssential"`
}

// CoOccurrence holds relatedness scores keyed by seeker skill URI, then job skill URI.
type CoOccurrence map[string]map[string]float64

// Score returns the relatedness of the pair or 0 when it is unknown.
func (c CoOccurrence) Score(seekerURI, jobURI string) float64 {
	if c == nil {
		return 0
	}
	return c[seekerURI][jobURI]
}

// TitleLookup maps taxonomy URIs to display titles.
type TitleLookup map[string]string

// Resolve returns the title for uri, or uri itself when it is unknown.
func (l TitleLookup) Resolve(uri string) string {
	if title, ok := l[uri]; ok && title != "" {
		return title
	}
	return uri
}

func (l TitleLookup) ResolveAll(uris []string) []string {
	titles := make([]string, 0, len(uris))
	for _, uri := range uris {
		titles = append(titles, l.Resolve(uri))
	}
	return titles
}

type FuzzyMatch struct {
	SeekerURI   string    `json:"seekerUri"`
	SeekerTitle string    `json:"seekerTitle"`
	JobURI      string    `json:"jobUri"`
	JobTitle    string    `json:"jobTitle"`
	Similarity  float64   `json:"similarity"`
	Type        MatchType `json:"type"`
}

type ScoreBreakdown struct {
	EssentialExact   int     `json:"essentialExact"`
	EssentialFuzzy   int     `json:"essentialFuzzy"`
	OptionalExact    int     `json:"optionalExact"`
	OptionalFuzzy    int     `json:"optionalFuzzy"`
	ProficiencyBonus float64 `json:"proficiencyBonus"`
	MaxPossible      int     `json:"maxPossible"`
}

// FuzzyTitle is the display form of a FuzzyMatch.
type FuzzyTitle struct {
	SeekerTitle string    `json:"seekerTitle"`
	JobTitle    string    `json:"jobTitle"`
	Similarity  float64   `json:"similarity"`
	Type        MatchType `json:"type"`
}

// Result is the explainable outcome of scoring one seeker against one job.
//
// Fuzzy-matched job skills appear only in FuzzyMatches: they are neither in
// the matched nor in the missing lists.
type Result struct {
	MatchScore      int `json:"matchScore"`
	SeekerRelevance int `json:"seekerRelevance"`
	RelevantSkills  int `json:"relevantSkills"`

	MatchedEssential []string     `json:"matchedEssential"`
	MissingEssential []string     `json:"missingEssential"`
	MatchedOptional  []string     `json:"matchedOptional"`
	MissingOptional  []string     `json:"missingOptional"`
	FuzzyMatches     []FuzzyMatch `json:"fuzzyMatches"`

	Breakdown ScoreBreakdown `json:"scoreBreakdown"`

	MatchedTitles         []string     `json:"matchedTitles"`
	MissingTitles         []string     `json:"missingTitles"`
	OptionalMatchedTitles []string     `json:"optionalMatchedTitles"`
	OptionalMissingTitles []string     `json:"optionalMissingTitles"`
	FuzzyTitles           []FuzzyTitle `json:"fuzzyTitles"`
}
