// Package training finds courses that close skill gaps.
package training

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/talentbridge/internal/ai"
	"github.com/spigell/talentbridge/internal/utils"
	"go.uber.org/zap"
)

const DefaultMaxSkills = 5

type webSearcher interface {
	Search(ctx context.Context, query string) ([]ai.SearchResult, error)
}

type programExtractor interface {
	ExtractTrainingPrograms(ctx context.Context, occupation string, skills []string, results []ai.SearchResult) ([]ai.TrainingProgram, error)
}

// Finder searches the web for programs teaching the missing skills of an
// occupation and lets the assistant pick the actual programs from the hits.
type Finder struct {
	searcher  webSearcher
	extractor programExtractor
	maxSkills int
	logger    *zap.Logger
}

func NewFinder(searcher webSearcher, extractor programExtractor, maxSkills int, logger *zap.Logger) *Finder {
	if maxSkills <= 0 {
		maxSkills = DefaultMaxSkills
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Finder{
		searcher:  searcher,
		extractor: extractor,
		maxSkills: maxSkills,
		logger:    logger,
	}
}

// Find returns up to five programs. Only the first maxSkills missing skills
// are searched for. A failed web search yields no programs.
func (f *Finder) Find(ctx context.Context, occupation string, missingSkills []string) ([]ai.TrainingProgram, error) {
	skills := utils.UniqueStrings(missingSkills)
	if len(skills) > f.maxSkills {
		skills = skills[:f.maxSkills]
	}

	occupation = strings.TrimSpace(occupation)
	if len(skills) == 0 || occupation == "" {
		return []ai.TrainingProgram{}, nil
	}

	query := Query(occupation, skills)
	results, err := f.searcher.Search(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Warn("training search failed", zap.String("query", query), zap.Error(err))
		return []ai.TrainingProgram{}, nil
	}

	f.logger.Debug("training search", zap.String("query", query), zap.Int("results", len(results)))

	if len(results) == 0 || f.extractor == nil {
		return []ai.TrainingProgram{}, nil
	}

	programs, err := f.extractor.ExtractTrainingPrograms(ctx, occupation, skills, results)
	if err != nil {
		return nil, fmt.Errorf("extracting training programs: %w", err)
	}

	return programs, nil
}

func Query(occupation string, skills []string) string {
	return fmt.Sprintf("%s training program course %s", occupation, strings.Join(skills, " "))
}
