// Package talent wires the taxonomy, the store, the matching engine and the
// AI assistant into the application use cases.
package talent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/talentbridge/internal/ai"
	"github.com/spigell/talentbridge/internal/esco"
	"github.com/spigell/talentbridge/internal/matching"
	"github.com/spigell/talentbridge/internal/profile"
	"github.com/spigell/talentbridge/internal/store"
	"go.uber.org/zap"
)

var (
	ErrSeekerNotFound  = errors.New("seeker not found")
	ErrPostingNotFound = errors.New("posting not found")
	ErrNoAssistant     = errors.New("ai assistant is not configured")
	ErrNoTrainer       = errors.New("training search is not configured")
)

const (
	anonymousSeeker    = "Anonymous Seeker"
	anonymousRecruiter = "Anonymous Recruiter"
	emailDomain        = "talentbridge.local"
)

type Taxonomy interface {
	SearchSkills(ctx context.Context, text string) ([]esco.Concept, error)
	SearchOccupations(ctx context.Context, text string) ([]esco.Concept, error)
	GetOccupation(ctx context.Context, uri string) (*esco.Occupation, error)
	BatchCoOccurrence(ctx context.Context, seekerURIs, jobURIs []string) (matching.CoOccurrence, error)
}

type Store interface {
	CreateSeeker(ctx context.Context, in store.NewSeeker) (*store.Seeker, error)
	GetSeeker(ctx context.Context, id uuid.UUID) (*store.Seeker, error)
	ListSeekers(ctx context.Context) ([]*store.Seeker, error)

	FindOrCreateRecruiter(ctx context.Context, email, name, company string) (*store.Recruiter, error)
	CreatePosting(ctx context.Context, recruiter *store.Recruiter, in store.NewPosting) (*store.Posting, error)
	SetPostingDescription(ctx context.Context, id uuid.UUID, description string) error
	GetPosting(ctx context.Context, id uuid.UUID) (*store.Posting, error)
	ListPostings(ctx context.Context) ([]*store.Posting, error)

	GetMatch(ctx context.Context, seekerID, postingID uuid.UUID) (*store.Match, error)
	SaveMatch(ctx context.Context, m *store.Match) (*store.Match, error)
	ListMatches(ctx context.Context, filter store.MatchFilter) ([]*store.Match, error)
}

type Trainer interface {
	Find(ctx context.Context, occupation string, missingSkills []string) ([]ai.TrainingProgram, error)
}

type Service struct {
	taxonomy  Taxonomy
	store     Store
	assistant ai.Assistant
	trainer   Trainer
	profiles  *profile.Builder
	logger    *zap.Logger
	now       func() time.Time
}

// New builds the service. assistant and trainer may be nil: text generation is
// then skipped and training search is refused.
func New(taxonomy Taxonomy, st Store, assistant ai.Assistant, trainer Trainer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		taxonomy:  taxonomy,
		store:     st,
		assistant: assistant,
		trainer:   trainer,
		profiles:  profile.New(taxonomy, logger),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) placeholderEmail(role string) string {
	return fmt.Sprintf("%s-%d@%s", role, s.now().UnixMilli(), emailDomain)
}

// Seeker returns a stored seeker.
func (s *Service) Seeker(ctx context.Context, id uuid.UUID) (*store.Seeker, error) {
	seeker, err := s.store.GetSeeker(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSeekerNotFound, id)
	}
	return seeker, err
}

func (s *Service) Seekers(ctx context.Context) ([]*store.Seeker, error) {
	return s.store.ListSeekers(ctx)
}

// Posting returns a stored posting.
func (s *Service) Posting(ctx context.Context, id uuid.UUID) (*store.Posting, error) {
	posting, err := s.store.GetPosting(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPostingNotFound, id)
	}
	return posting, err
}

func (s *Service) Postings(ctx context.Context) ([]*store.Posting, error) {
	return s.store.ListPostings(ctx)
}

func (s *Service) Matches(ctx context.Context, filter store.MatchFilter) ([]*store.Match, error) {
	return s.store.ListMatches(ctx, filter)
}

func (s *Service) SearchSkills(ctx context.Context, text string) ([]esco.Concept, error) {
	return s.taxonomy.SearchSkills(ctx, text)
}

func (s *Service) SearchOccupations(ctx context.Context, text string) ([]esco.Concept, error) {
	return s.taxonomy.SearchOccupations(ctx, text)
}

// Training looks up programs teaching the missing skills of occupation.
func (s *Service) Training(ctx context.Context, occupation string, missingSkills []string) ([]ai.TrainingProgram, error) {
	if s.trainer == nil {
		return nil, ErrNoTrainer
	}
	return s.trainer.Find(ctx, occupation, missingSkills)
}

// generate runs a text task and degrades to empty text when it fails.
func (s *Service) generate(ctx context.Context, task string, fn func(context.Context, ai.Assistant) (string, error)) string {
	if s.assistant == nil {
		s.logger.Debug("ai assistant is not configured, skipping", zap.String("task", task))
		return ""
	}

	text, err := fn(ctx, s.assistant)
	if err != nil {
		s.logger.Warn("ai task failed, continuing without it", zap.String("task", task), zap.Error(err))
		return ""
	}

	return text
}
