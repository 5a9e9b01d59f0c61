// Package profile turns a parsed CV into taxonomy-backed seeker skills.
package profile

import (
	"context"
	"fmt"

	"github.com/spigell/talentbridge/internal/ai"
	"github.com/spigell/talentbridge/internal/esco"
	"github.com/spigell/talentbridge/internal/matching"
	"go.uber.org/zap"
)

// Taxonomy is the part of the ESCO client the builder needs.
type Taxonomy interface {
	SearchSkills(ctx context.Context, text string) ([]esco.Concept, error)
	SearchOccupations(ctx context.Context, text string) ([]esco.Concept, error)
	GetOccupation(ctx context.Context, uri string) (*esco.Occupation, error)
}

// Step is a single stage of building a skill profile.
type Step interface {
	Name() string
	Apply(ctx context.Context, p *Profile) (Report, error)
}

// Profile is the state passed through the steps.
type Profile struct {
	CV     *ai.ParsedCV
	Skills []matching.SeekerSkill
}

// Report describes what a step did to the skill list.
type Report struct {
	Initial int
	Added   int
	Dropped int
	Left    int
}

type Builder struct {
	steps  []Step
	logger *zap.Logger
}

// New returns a builder running the default steps: explicit, inferred,
// dedupe and normalize.
func New(taxonomy Taxonomy, logger *zap.Logger) *Builder {
	return NewWithSteps(logger,
		NewExplicit(taxonomy),
		NewInferred(taxonomy),
		NewDedupe(),
		NewNormalize(),
	)
}

func NewWithSteps(logger *zap.Logger, steps ...Step) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{steps: steps, logger: logger}
}

// Build runs every step over cv and returns the resulting skills.
func (b *Builder) Build(ctx context.Context, cv *ai.ParsedCV) ([]matching.SeekerSkill, error) {
	if cv == nil {
		cv = &ai.ParsedCV{}
	}

	p := &Profile{CV: cv, Skills: []matching.SeekerSkill{}}
	if err := Run(ctx, b.logger, b.steps, p); err != nil {
		return nil, err
	}

	return p.Skills, nil
}

// Run executes the steps sequentially.
func Run(ctx context.Context, logger *zap.Logger, steps []Step, p *Profile) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		info, err := step.Apply(ctx, p)
		if err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Info("profile step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("added", info.Added),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
	}

	return nil
}
